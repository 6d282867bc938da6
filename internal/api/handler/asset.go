// internal/api/handler/asset.go
package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"networth-ledger/internal/api/types"
	"networth-ledger/internal/auth"
	"networth-ledger/internal/domain"
	"networth-ledger/internal/service"
	"networth-ledger/internal/util"
)

// AssetHandler handles HTTP requests related to asset snapshots.
type AssetHandler struct {
	service service.LedgerService
	logger  zerolog.Logger
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(svc service.LedgerService, logger zerolog.Logger) *AssetHandler {
	return &AssetHandler{
		service: svc,
		logger:  logger.With().Str("component", "asset_handler").Logger(),
	}
}

func (h *AssetHandler) respondWithError(w http.ResponseWriter, err error) {
	code, message := errorStatus(h.logger, err)
	respondWithJSON(w, h.logger, code, types.ErrorResponse{Error: message})
}

// ItemValue is a lenient decimal: null, "" or an omitted value mean zero, and numeric
// strings are accepted as well as numbers.
type ItemValue struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *ItemValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		v.Decimal = decimal.Zero
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = bytes.TrimSpace([]byte(s))
		if len(b) == 0 {
			v.Decimal = decimal.Zero
			return nil
		}
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("invalid item value %s", b)
	}
	v.Decimal = d
	return nil
}

// ItemRequest is one line item in a create or update body.
type ItemRequest struct {
	Name  string    `json:"name"`
	Value ItemValue `json:"value"`
}

// CreateAssetRequest represents the request body for creating a snapshot.
type CreateAssetRequest struct {
	Date  *domain.Date  `json:"date"`
	Items []ItemRequest `json:"items"`
}

// UpdateAssetRequest represents the request body for updating a snapshot. Absent fields are kept.
type UpdateAssetRequest struct {
	Date  *domain.Date   `json:"date"`
	Items *[]ItemRequest `json:"items"`
}

func toItemInputs(items []ItemRequest) []service.LineItemInput {
	inputs := make([]service.LineItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, service.LineItemInput{Name: item.Name, Value: item.Value.Decimal})
	}
	return inputs
}

// List handles the snapshot listing request.
// GET /api/asset/list?page=&limit=&userId=
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrUnauthenticated)
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	input := service.ListSnapshotsInput{Page: page, Limit: limit}

	if raw := query.Get("userId"); raw != "" {
		ownerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondWithError(w, fmt.Errorf("userId must be an integer: %w", util.ErrInvalidInput))
			return
		}
		input.OwnerID = &ownerID
	}

	result, err := h.service.List(r.Context(), caller, input)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	views := make([]types.SnapshotView, 0, len(result.Snapshots))
	for _, s := range result.Snapshots {
		views = append(views, types.NewSnapshotView(s))
	}
	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[types.SnapshotView]{
		Data:  views,
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	})
}

// Create handles the snapshot creation request.
// POST /api/asset/create
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrUnauthenticated)
		return
	}

	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, fmt.Errorf("date and items are required: %w", util.ErrInvalidInput))
		return
	}

	id, err := h.service.Create(r.Context(), caller, service.CreateSnapshotInput{
		Date:  req.Date,
		Items: toItemInputs(req.Items),
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, types.CreatedResponse{
		Message: "Asset created successfully",
		AssetID: id,
	})
}

// Update handles the snapshot update request.
// PUT /api/asset/{id}
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrUnauthenticated)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondWithError(w, fmt.Errorf("asset id must be an integer: %w", util.ErrInvalidInput))
		return
	}

	var req UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, fmt.Errorf("malformed request body: %w", util.ErrInvalidInput))
		return
	}

	input := service.UpdateSnapshotInput{Date: req.Date}
	if req.Items != nil {
		items := toItemInputs(*req.Items)
		input.Items = &items
	}
	if err := h.service.Update(r.Context(), caller, id, input); err != nil {
		h.respondWithError(w, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.MessageResponse{Message: "Asset updated successfully"})
}

// Delete handles the snapshot deletion request.
// DELETE /api/asset/{id}
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrUnauthenticated)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondWithError(w, fmt.Errorf("asset id must be an integer: %w", util.ErrInvalidInput))
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.respondWithError(w, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.MessageResponse{Message: "Asset deleted successfully"})
}

// LastItems returns the item names of the caller's latest snapshot as blank templates.
// GET /api/asset/last-items
func (h *AssetHandler) LastItems(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrUnauthenticated)
		return
	}

	names, err := h.service.LastItemNames(r.Context(), caller)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	items := make([]types.ItemTemplate, 0, len(names))
	for _, name := range names {
		items = append(items, types.ItemTemplate{Name: name, Value: ""})
	}
	respondWithJSON(w, h.logger, http.StatusOK, types.LastItemsResponse{Items: items})
}
