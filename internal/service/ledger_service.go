// internal/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"networth-ledger/internal/auth"
	"networth-ledger/internal/domain"
	"networth-ledger/internal/repository"
	"networth-ledger/internal/util"
	"networth-ledger/pkg/db"
)

// Pagination defaults for snapshot listings.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit well inside a 32-bit offset.
	MaxPage = math.MaxInt32 / MaxLimit
)

// ValueScale is the most fractional digits an item value may carry. Together with the
// 16 integer digit bound below it matches the NUMERIC(20, 4) column.
const ValueScale = 4

var maxItemValue = decimal.New(1, 16)

// LineItemInput is one named value supplied by a client.
type LineItemInput struct {
	Name  string
	Value decimal.Decimal
}

// CreateSnapshotInput holds the fields of a new snapshot. Both are required.
type CreateSnapshotInput struct {
	Date  *domain.Date
	Items []LineItemInput
}

// UpdateSnapshotInput holds the fields to change. A nil field is left untouched;
// a non-nil Items replaces every existing item, and an empty list removes them all.
type UpdateSnapshotInput struct {
	Date  *domain.Date
	Items *[]LineItemInput
}

// ListSnapshotsInput selects a page of snapshots. OwnerID is honoured for admins only.
type ListSnapshotsInput struct {
	OwnerID *int64
	Page    int
	Limit   int
}

// SnapshotPage is one page of a snapshot listing.
type SnapshotPage struct {
	Snapshots []domain.Snapshot
	Total     int64
	Page      int
	Limit     int
}

// LedgerService defines the interface for asset snapshot business logic.
type LedgerService interface {
	Create(ctx context.Context, caller auth.Identity, input CreateSnapshotInput) (int64, error)
	List(ctx context.Context, caller auth.Identity, input ListSnapshotsInput) (*SnapshotPage, error)
	Update(ctx context.Context, caller auth.Identity, id int64, input UpdateSnapshotInput) error
	Delete(ctx context.Context, caller auth.Identity, id int64) error
	LastItemNames(ctx context.Context, caller auth.Identity) ([]string, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner   db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor   repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	snapshotRepo repository.SnapshotRepository
	beginTx      db.BeginTxFunc
	commitTx     db.CommitTxFunc
	rollbackTx   db.RollbackTxFunc
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	snapshotRepo repository.SnapshotRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner:   dbBeginner,
		dbExecutor:   dbExecutor,
		snapshotRepo: snapshotRepo,
		beginTx:      beginTx,
		commitTx:     commitTx,
		rollbackTx:   rollbackTx,
	}
}

// Create stores a snapshot owned by the caller together with its items.
func (s *ledgerService) Create(ctx context.Context, caller auth.Identity, input CreateSnapshotInput) (int64, error) {
	if input.Date == nil || input.Date.IsZero() {
		return 0, fmt.Errorf("create snapshot: date is required: %w", util.ErrInvalidInput)
	}
	if len(input.Items) == 0 {
		return 0, fmt.Errorf("create snapshot: at least one item is required: %w", util.ErrInvalidInput)
	}
	if err := validateItems(input.Items); err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return 0, fmt.Errorf("create snapshot: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return 0, fmt.Errorf("create snapshot: transaction controller does not implement DBExecutor")
	}

	snapshot := domain.NewSnapshot(caller.UserID, *input.Date)
	if err := s.snapshotRepo.CreateSnapshot(ctx, txExecutor, snapshot); err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	if err := s.snapshotRepo.CreateLineItems(ctx, txExecutor, buildItems(snapshot.ID, input.Items)); err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return 0, fmt.Errorf("create snapshot: failed to commit transaction: %w", err)
	}
	return snapshot.ID, nil
}

// List returns one page of the snapshots visible to the caller, newest first.
func (s *ledgerService) List(ctx context.Context, caller auth.Identity, input ListSnapshotsInput) (*SnapshotPage, error) {
	page, limit := normalizePage(input.Page, input.Limit)
	owner := auth.ResolveFilter(caller, input.OwnerID)

	snapshots, total, err := s.snapshotRepo.ListSnapshotsByUserID(ctx, s.dbExecutor, owner, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return &SnapshotPage{Snapshots: snapshots, Total: total, Page: page, Limit: limit}, nil
}

// Update changes the date and/or replaces the items of a snapshot the caller may mutate.
func (s *ledgerService) Update(ctx context.Context, caller auth.Identity, id int64, input UpdateSnapshotInput) error {
	if input.Items != nil {
		if err := validateItems(*input.Items); err != nil {
			return fmt.Errorf("update snapshot %d: %w", id, err)
		}
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("update snapshot: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("update snapshot: transaction controller does not implement DBExecutor")
	}

	snapshot, err := s.snapshotRepo.GetSnapshotByID(ctx, txExecutor, id)
	if err != nil {
		return fmt.Errorf("update snapshot %d: %w", id, err)
	}
	if !auth.CanMutate(caller, snapshot.UserID) {
		return fmt.Errorf("update snapshot %d: %w", id, util.ErrForbidden)
	}

	if input.Date != nil && !input.Date.IsZero() {
		if err := s.snapshotRepo.UpdateSnapshotDate(ctx, txExecutor, id, *input.Date); err != nil {
			return fmt.Errorf("update snapshot %d: %w", id, err)
		}
	}
	if input.Items != nil {
		if err := s.snapshotRepo.DeleteLineItemsBySnapshotID(ctx, txExecutor, id); err != nil {
			return fmt.Errorf("update snapshot %d: %w", id, err)
		}
		if err := s.snapshotRepo.CreateLineItems(ctx, txExecutor, buildItems(id, *input.Items)); err != nil {
			return fmt.Errorf("update snapshot %d: %w", id, err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("update snapshot: failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes a snapshot the caller may mutate, with all of its items.
func (s *ledgerService) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("delete snapshot: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("delete snapshot: transaction controller does not implement DBExecutor")
	}

	snapshot, err := s.snapshotRepo.GetSnapshotByID(ctx, txExecutor, id)
	if err != nil {
		return fmt.Errorf("delete snapshot %d: %w", id, err)
	}
	if !auth.CanMutate(caller, snapshot.UserID) {
		return fmt.Errorf("delete snapshot %d: %w", id, util.ErrForbidden)
	}

	if err := s.snapshotRepo.DeleteLineItemsBySnapshotID(ctx, txExecutor, id); err != nil {
		return fmt.Errorf("delete snapshot %d: %w", id, err)
	}
	if err := s.snapshotRepo.DeleteSnapshot(ctx, txExecutor, id); err != nil {
		return fmt.Errorf("delete snapshot %d: %w", id, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("delete snapshot: failed to commit transaction: %w", err)
	}
	return nil
}

// LastItemNames returns the distinct item names of the caller's most recent snapshot,
// used to prefill the next entry form.
func (s *ledgerService) LastItemNames(ctx context.Context, caller auth.Identity) ([]string, error) {
	snapshot, err := s.snapshotRepo.GetLatestSnapshotByUserID(ctx, s.dbExecutor, caller.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSnapshotNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("last item names: %w", err)
	}
	return snapshot.DistinctItemNames(), nil
}

func validateItems(items []LineItemInput) error {
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("item %d has no name: %w", i, util.ErrInvalidInput)
		}
		if !item.Value.Equal(item.Value.Round(ValueScale)) {
			return fmt.Errorf("item %d value %s has more than %d decimal places: %w", i, item.Value, ValueScale, util.ErrInvalidInput)
		}
		if item.Value.Abs().GreaterThanOrEqual(maxItemValue) {
			return fmt.Errorf("item %d value %s is out of range: %w", i, item.Value, util.ErrInvalidInput)
		}
	}
	return nil
}

func buildItems(snapshotID int64, inputs []LineItemInput) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, domain.NewLineItem(snapshotID, strings.TrimSpace(in.Name), in.Value))
	}
	return items
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}
