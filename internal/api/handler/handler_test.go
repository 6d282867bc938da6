// internal/api/handler/handler_test.go
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth-ledger/internal/util"
)

func TestItemValueUnmarshal(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"name":"Cash","value":100}`, "100"},
		{`{"name":"Cash","value":12.5}`, "12.5"},
		{`{"name":"Cash","value":"250.75"}`, "250.75"},
		{`{"name":"Cash","value":""}`, "0"},
		{`{"name":"Cash","value":null}`, "0"},
		{`{"name":"Cash"}`, "0"},
		{`{"name":"Loan","value":-30}`, "-30"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var item ItemRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &item))
			assert.Equal(t, tt.want, item.Value.String())
		})
	}

	var item ItemRequest
	assert.Error(t, json.Unmarshal([]byte(`{"name":"Cash","value":"abc"}`), &item))
	assert.Error(t, json.Unmarshal([]byte(`{"name":"Cash","value":true}`), &item))
}

func TestUpdateRequestDistinguishesAbsentItems(t *testing.T) {
	var absent UpdateAssetRequest
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-01-02"}`), &absent))
	assert.Nil(t, absent.Items)
	assert.Equal(t, "2025-01-02", absent.Date.String())

	var empty UpdateAssetRequest
	require.NoError(t, json.Unmarshal([]byte(`{"items":[]}`), &empty))
	require.NotNil(t, empty.Items)
	assert.Empty(t, *empty.Items)
	assert.Nil(t, empty.Date)
}

func TestErrorStatus(t *testing.T) {
	logger := zerolog.Nop()
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("x: %w", util.ErrInvalidInput), http.StatusBadRequest},
		{util.ErrDuplicateEntry, http.StatusBadRequest},
		{fmt.Errorf("delete user 1: %w", util.ErrProtectedAccount), http.StatusBadRequest},
		{util.ErrAccountDisabled, http.StatusBadRequest},
		{util.ErrUnauthenticated, http.StatusUnauthorized},
		{util.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("update snapshot 3: %w", util.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("update snapshot 3: %w", util.ErrSnapshotNotFound), http.StatusNotFound},
		{util.ErrUserNotFound, http.StatusNotFound},
		{util.ErrNotFound, http.StatusNotFound},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		code, message := errorStatus(logger, tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.NotEmpty(t, message)
	}

	_, message := errorStatus(logger, errors.New("pq: password authentication failed"))
	assert.Equal(t, "Internal server error", message)
}
