// internal/repository/snapshot_repo.go
package repository

import (
	"context"

	"networth-ledger/internal/domain"
)

// SnapshotRepository defines the interface for snapshot and line item data operations.
// Callers that touch a snapshot together with its items pass a transaction as q.
type SnapshotRepository interface {
	// CreateSnapshot inserts the snapshot row and sets its ID. Items are not written.
	CreateSnapshot(ctx context.Context, q DBExecutor, snapshot *domain.Snapshot) error
	// GetSnapshotByID retrieves a snapshot without items, or util.ErrSnapshotNotFound.
	GetSnapshotByID(ctx context.Context, q DBExecutor, id int64) (*domain.Snapshot, error)
	// UpdateSnapshotDate changes the date of a snapshot.
	UpdateSnapshotDate(ctx context.Context, q DBExecutor, id int64, date domain.Date) error
	// DeleteSnapshot removes a snapshot row.
	DeleteSnapshot(ctx context.Context, q DBExecutor, id int64) error
	// DeleteSnapshotsByUserID removes every snapshot of a user together with their items.
	DeleteSnapshotsByUserID(ctx context.Context, q DBExecutor, userID int64) error

	// ListSnapshotsByUserID returns one page of a user's snapshots ordered by date DESC, id ASC,
	// with owner username and items loaded, plus the user's total snapshot count.
	ListSnapshotsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Snapshot, int64, error)
	// GetLatestSnapshotByUserID returns the user's most recent snapshot (date DESC, id DESC)
	// with items, or util.ErrSnapshotNotFound when the user has none.
	GetLatestSnapshotByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Snapshot, error)

	// CreateLineItems bulk inserts items. An empty slice is a no-op.
	CreateLineItems(ctx context.Context, q DBExecutor, items []domain.LineItem) error
	// GetLineItemsBySnapshotIDs returns the items of the given snapshots ordered by id.
	GetLineItemsBySnapshotIDs(ctx context.Context, q DBExecutor, snapshotIDs []int64) ([]domain.LineItem, error)
	// DeleteLineItemsBySnapshotID removes all items of a snapshot.
	DeleteLineItemsBySnapshotID(ctx context.Context, q DBExecutor, snapshotID int64) error
}
