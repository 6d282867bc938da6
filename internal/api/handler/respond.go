// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"networth-ledger/internal/util"
)

// DefaultTimeout bounds request handling when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// respondWithJSON sends payload as a JSON response.
func respondWithJSON(w http.ResponseWriter, logger zerolog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// errorStatus maps a service error to an HTTP status and a message safe to show the client.
// Unclassified errors are logged and hidden behind a generic 500.
func errorStatus(logger zerolog.Logger, err error) (int, string) {
	switch {
	case util.IsError(err, util.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case util.IsError(err, util.ErrDuplicateEntry):
		return http.StatusBadRequest, "Username already exists"
	case util.IsError(err, util.ErrProtectedAccount):
		return http.StatusBadRequest, util.ErrProtectedAccount.Error()
	case util.IsError(err, util.ErrAccountDisabled):
		return http.StatusBadRequest, util.ErrAccountDisabled.Error()
	case util.IsError(err, util.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case util.IsError(err, util.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case util.IsError(err, util.ErrForbidden):
		return http.StatusForbidden, "Permission denied"
	case util.IsError(err, util.ErrSnapshotNotFound):
		return http.StatusNotFound, "Asset not found"
	case util.IsError(err, util.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case util.IsError(err, util.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	default:
		logger.Error().Err(err).Msg("unhandled service error")
		return http.StatusInternalServerError, "Internal server error"
	}
}
