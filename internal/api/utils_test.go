package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/tripwise/internal/types"
)

func TestServiceErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"InvalidInput", fmt.Errorf("%w: guests must be at least 1", types.ErrInvalidInput), http.StatusBadRequest, "invalid input: guests must be at least 1"},
		{"InvalidTransition", fmt.Errorf("cancelled is final: %w", types.ErrInvalidTransition), http.StatusBadRequest, "cancelled is final: invalid status transition"},
		{"NotFound", fmt.Errorf("booking 4: %w", types.ErrNotFound), http.StatusNotFound, "Not found"},
		{"Forbidden", types.ErrForbidden, http.StatusForbidden, "Action forbidden"},
		{"Unauthenticated", types.ErrUnauthenticated, http.StatusUnauthorized, "Authentication required"},
		{"Conflict", fmt.Errorf("email taken: %w", types.ErrConflict), http.StatusConflict, "email taken: item already exists or conflict"},
		{"Unknown", errors.New("pq: connection reset"), http.StatusInternalServerError, "Failed to list bookings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			ServiceErrorResponse(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "Failed to list bookings")

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestWriteJSONResponseNoContent(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONResponse(rr, httptest.NewRequest(http.MethodDelete, "/", nil), http.StatusNoContent, map[string]string{"ignored": "x"})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		Days int    `json:"days"`
	}
	tests := []struct {
		body    string
		wantErr string
	}{
		{`{"name":"Siargao","days":3}`, ""},
		{``, "body must not be empty"},
		{`{"name":`, "body contains badly-formed JSON"},
		{`{"days":"three"}`, `body contains incorrect JSON type for field "days"`},
		{`{"nights":2}`, `body contains unknown key "nights"`},
		{`{"days":1}{"days":2}`, "body must only contain a single JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var dst payload
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := DecodeJSONBody(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, payload{Name: "Siargao", Days: 3}, dst)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestIDParam(t *testing.T) {
	r := chi.NewRouter()
	var got int64
	var gotErr error
	r.Get("/islands/{islandID}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = IDParam(r, "islandID")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/islands/12", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(12), got)

	for _, bad := range []string{"0", "-4", "abc"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/islands/"+bad, nil))
		assert.EqualError(t, gotErr, "invalid islandID", bad)
	}
}

func TestVerifyAudience(t *testing.T) {
	assert.True(t, VerifyAudience(nil, ""))
	assert.True(t, VerifyAudience(jwt.ClaimStrings{"web", "tripwise-api"}, "tripwise-api"))
	assert.False(t, VerifyAudience(jwt.ClaimStrings{"web"}, "tripwise-api"))
}
