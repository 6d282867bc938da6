// internal/api/types/response.go
package types

import (
	"github.com/shopspring/decimal"

	"networth-ledger/internal/domain"
)

// PaginatedResponse defines a generic structure for paginated API responses.
// T represents the type of data contained in the 'Data' slice.
type PaginatedResponse[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Envelope is the response shape of the user API.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the error shape of the asset API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges an asset mutation.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse acknowledges a new snapshot.
type CreatedResponse struct {
	Message string `json:"message"`
	AssetID int64  `json:"assetId"`
}

// UserRef identifies the owner of a snapshot.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// SnapshotView is a snapshot with its owner and computed total.
type SnapshotView struct {
	domain.Snapshot
	User  UserRef         `json:"user"`
	Total decimal.Decimal `json:"total"`
}

// NewSnapshotView derives the total of s at render time.
func NewSnapshotView(s domain.Snapshot) SnapshotView {
	return SnapshotView{
		Snapshot: s,
		User:     UserRef{ID: s.UserID, Username: s.Username},
		Total:    s.Total(),
	}
}

// ItemTemplate is an item name offered for the next entry, with a blank value.
type ItemTemplate struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LastItemsResponse lists item templates from the caller's latest snapshot.
type LastItemsResponse struct {
	Items []ItemTemplate `json:"items"`
}
