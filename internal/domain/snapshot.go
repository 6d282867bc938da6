// internal/domain/snapshot.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For exact sums of asset values
)

// Snapshot is a dated record of one user's asset composition.
type Snapshot struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`     // Owner, immutable after creation
	Username  string    `db:"username" json:"username"`  // Owner's username, filled on reads
	Date      Date      `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Items []LineItem `db:"-" json:"items"`
}

// LineItem is one named, valued component of a Snapshot.
type LineItem struct {
	ID         int64           `db:"id" json:"id"`
	SnapshotID int64           `db:"snapshot_id" json:"-"`
	Name       string          `db:"name" json:"name"`
	Value      decimal.Decimal `db:"value" json:"value"`
	CreatedAt  time.Time       `db:"created_at" json:"-"`
	UpdatedAt  time.Time       `db:"updated_at" json:"-"`
}

// NewSnapshot creates a new Snapshot owned by userID.
func NewSnapshot(userID int64, date Date) *Snapshot {
	now := time.Now().UTC()
	return &Snapshot{
		UserID:    userID,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewLineItem creates a LineItem for the given snapshot.
func NewLineItem(snapshotID int64, name string, value decimal.Decimal) LineItem {
	now := time.Now().UTC()
	return LineItem{
		SnapshotID: snapshotID,
		Name:       name,
		Value:      value,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Total is the sum of the snapshot's item values. It is derived on every call and never stored.
func (s *Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Value)
	}
	return total
}

// DistinctItemNames returns the item names in first-seen order without duplicates.
func (s *Snapshot) DistinctItemNames() []string {
	seen := make(map[string]struct{}, len(s.Items))
	names := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		if _, ok := seen[item.Name]; ok {
			continue
		}
		seen[item.Name] = struct{}{}
		names = append(names, item.Name)
	}
	return names
}
