// internal/repository/sqlstore/snapshot_store.go
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"networth-ledger/internal/domain"
	"networth-ledger/internal/repository"
	"networth-ledger/internal/util"
)

const snapshotSelect = `SELECT s.id, s.user_id, u.username, s.date, s.created_at, s.updated_at
              FROM snapshots s JOIN users u ON u.id = s.user_id`

// SnapshotRepository implements repository.SnapshotRepository for PostgreSQL and SQLite.
type SnapshotRepository struct{}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository() repository.SnapshotRepository {
	return &SnapshotRepository{}
}

// CreateSnapshot inserts a new snapshot row using the provided DBExecutor.
func (r *SnapshotRepository) CreateSnapshot(ctx context.Context, q repository.DBExecutor, snapshot *domain.Snapshot) error {
	query := q.Rebind(`INSERT INTO snapshots (user_id, date, created_at, updated_at)
              VALUES (?, ?, ?, ?) RETURNING id`)
	err := q.QueryRowContext(ctx, query, snapshot.UserID, snapshot.Date, snapshot.CreatedAt, snapshot.UpdatedAt).Scan(&snapshot.ID)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	return nil
}

// GetSnapshotByID retrieves a snapshot by its ID. Items are not loaded.
func (r *SnapshotRepository) GetSnapshotByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	if err := q.GetContext(ctx, &snapshot, q.Rebind(snapshotSelect+` WHERE s.id = ?`), id); err != nil {
		if isNoRows(err) {
			return nil, util.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot by ID %d: %w", id, err)
	}
	return &snapshot, nil
}

// UpdateSnapshotDate changes the date of a snapshot.
func (r *SnapshotRepository) UpdateSnapshotDate(ctx context.Context, q repository.DBExecutor, id int64, date domain.Date) error {
	query := q.Rebind(`UPDATE snapshots SET date = ?, updated_at = ? WHERE id = ?`)
	result, err := q.ExecContext(ctx, query, date, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update date of snapshot %d: %w", id, err)
	}
	return checkAffected(result, util.ErrSnapshotNotFound)
}

// DeleteSnapshot removes a snapshot row.
func (r *SnapshotRepository) DeleteSnapshot(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM snapshots WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %d: %w", id, err)
	}
	return checkAffected(result, util.ErrSnapshotNotFound)
}

// DeleteSnapshotsByUserID removes all snapshots of a user and their items.
func (r *SnapshotRepository) DeleteSnapshotsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) error {
	itemsQuery := q.Rebind(`DELETE FROM line_items WHERE snapshot_id IN (SELECT id FROM snapshots WHERE user_id = ?)`)
	if _, err := q.ExecContext(ctx, itemsQuery, userID); err != nil {
		return fmt.Errorf("failed to delete line items of user %d: %w", userID, err)
	}
	if _, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM snapshots WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("failed to delete snapshots of user %d: %w", userID, err)
	}
	return nil
}

// ListSnapshotsByUserID returns a page of a user's snapshots with items, and the total count.
func (r *SnapshotRepository) ListSnapshotsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Snapshot, int64, error) {
	snapshots := []domain.Snapshot{}
	query := q.Rebind(snapshotSelect + ` WHERE s.user_id = ? ORDER BY s.date DESC, s.id ASC LIMIT ? OFFSET ?`)
	if err := q.SelectContext(ctx, &snapshots, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list snapshots for user %d: %w", userID, err)
	}

	var total int64
	countQuery := q.Rebind(`SELECT COUNT(*) FROM snapshots WHERE user_id = ?`)
	if err := q.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots for user %d: %w", userID, err)
	}

	if err := r.attachItems(ctx, q, snapshots); err != nil {
		return nil, 0, err
	}
	return snapshots, total, nil
}

// GetLatestSnapshotByUserID returns the most recent snapshot of a user with its items.
func (r *SnapshotRepository) GetLatestSnapshotByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	query := q.Rebind(snapshotSelect + ` WHERE s.user_id = ? ORDER BY s.date DESC, s.id DESC LIMIT 1`)
	if err := q.GetContext(ctx, &snapshot, query, userID); err != nil {
		if isNoRows(err) {
			return nil, util.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot for user %d: %w", userID, err)
	}

	snapshots := []domain.Snapshot{snapshot}
	if err := r.attachItems(ctx, q, snapshots); err != nil {
		return nil, err
	}
	return &snapshots[0], nil
}

// CreateLineItems bulk inserts items using a single statement.
func (r *SnapshotRepository) CreateLineItems(ctx context.Context, q repository.DBExecutor, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO line_items (snapshot_id, name, value, created_at, updated_at)
              VALUES (:snapshot_id, :name, :value, :created_at, :updated_at)`
	if _, err := q.NamedExecContext(ctx, query, items); err != nil {
		return fmt.Errorf("failed to create %d line items: %w", len(items), err)
	}
	return nil
}

// GetLineItemsBySnapshotIDs returns the items of the given snapshots ordered by id.
func (r *SnapshotRepository) GetLineItemsBySnapshotIDs(ctx context.Context, q repository.DBExecutor, snapshotIDs []int64) ([]domain.LineItem, error) {
	items := []domain.LineItem{}
	if len(snapshotIDs) == 0 {
		return items, nil
	}
	query, args, err := sqlx.In(`SELECT id, snapshot_id, name, value, created_at, updated_at
              FROM line_items WHERE snapshot_id IN (?) ORDER BY id`, snapshotIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build line item query: %w", err)
	}
	if err := q.SelectContext(ctx, &items, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	return items, nil
}

// DeleteLineItemsBySnapshotID removes all items of a snapshot.
func (r *SnapshotRepository) DeleteLineItemsBySnapshotID(ctx context.Context, q repository.DBExecutor, snapshotID int64) error {
	if _, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM line_items WHERE snapshot_id = ?`), snapshotID); err != nil {
		return fmt.Errorf("failed to delete line items of snapshot %d: %w", snapshotID, err)
	}
	return nil
}

// attachItems loads the items of all snapshots with one query and assigns them in place.
// Every snapshot ends up with a non-nil Items slice.
func (r *SnapshotRepository) attachItems(ctx context.Context, q repository.DBExecutor, snapshots []domain.Snapshot) error {
	ids := make([]int64, len(snapshots))
	index := make(map[int64]int, len(snapshots))
	for i := range snapshots {
		ids[i] = snapshots[i].ID
		index[snapshots[i].ID] = i
		snapshots[i].Items = []domain.LineItem{}
	}

	items, err := r.GetLineItemsBySnapshotIDs(ctx, q, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		if i, ok := index[item.SnapshotID]; ok {
			snapshots[i].Items = append(snapshots[i].Items, item)
		}
	}
	return nil
}
