// internal/api/handler/user.go
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"networth-ledger/internal/api/types"
	"networth-ledger/internal/domain"
	"networth-ledger/internal/service"
	"networth-ledger/internal/util"
)

// UserHandler handles HTTP requests related to accounts and login.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

func (h *UserHandler) respondWithError(w http.ResponseWriter, err error) {
	code, message := errorStatus(h.logger, err)
	respondWithJSON(w, h.logger, code, types.Envelope{Success: false, Message: message})
}

func (h *UserHandler) respondWithSuccess(w http.ResponseWriter, data interface{}, message string) {
	respondWithJSON(w, h.logger, http.StatusOK, types.Envelope{Success: true, Data: data, Message: message})
}

// decode reads a JSON body into dst, reporting malformed input as util.ErrInvalidInput.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %w", util.ErrInvalidInput)
	}
	return nil
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserRequest represents the request body for creating an account.
type CreateUserRequest struct {
	Username string            `json:"username"`
	Password string            `json:"password"`
	Status   domain.UserStatus `json:"status"`
}

// UpdateUserRequest represents the request body for updating an account.
// An empty password keeps the current one.
type UpdateUserRequest struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangeStatusRequest represents the request body for enabling or disabling an account.
type ChangeStatusRequest struct {
	ID     int64             `json:"id"`
	Status domain.UserStatus `json:"status"`
}

// DeleteUserRequest represents the request body for deleting an account.
type DeleteUserRequest struct {
	ID int64 `json:"id"`
}

func requireID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("user id is required: %w", util.ErrInvalidInput)
	}
	return nil
}

// Login handles the login request.
// POST /api/user/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if util.IsError(err, util.ErrInvalidCredentials) || util.IsError(err, util.ErrAccountDisabled) {
			h.logger.Info().Str("username", req.Username).Err(err).Msg("login rejected")
		}
		h.respondWithError(w, err)
		return
	}
	h.respondWithSuccess(w, result, "")
}

// List handles the account search request.
// GET /api/user/list?keyword=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Search(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithSuccess(w, users, "")
}

// Create handles the account creation request.
// POST /api/user/create
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.Create(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Status:   req.Status,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithSuccess(w, user, "")
}

// Update handles the account update request.
// POST /api/user/update
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := requireID(req.ID); err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.Update(r.Context(), req.ID, service.UpdateUserInput{Username: req.Username, Password: req.Password}); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithSuccess(w, nil, "User updated")
}

// ChangeStatus handles the account enable/disable request.
// POST /api/user/change-status
func (h *UserHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := requireID(req.ID); err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.ChangeStatus(r.Context(), req.ID, req.Status); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithSuccess(w, nil, "Status updated")
}

// Delete handles the account deletion request.
// POST /api/user/delete
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteUserRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := requireID(req.ID); err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), req.ID); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithSuccess(w, nil, "User deleted")
}
