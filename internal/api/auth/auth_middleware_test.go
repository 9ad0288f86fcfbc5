package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/tripwise/internal/types"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, mutate func(*types.Claims)) string {
	t.Helper()
	now := time.Now()
	claims := &types.Claims{
		UserID: 3,
		Email:  "user@example.com",
		Role:   types.RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testJWT.Issuer,
			Audience:  jwt.ClaimStrings{testJWT.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	if mutate != nil {
		mutate(claims)
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func validToken(t *testing.T, mutate func(*types.Claims)) string {
	return signToken(t, jwt.SigningMethodHS256, []byte(testJWT.SecretKey), mutate)
}

// principalEcho writes the caller found in the request context.
var principalEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p, ok := GetPrincipalFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_ = json.NewEncoder(w).Encode(p)
})

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func bodyError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestAuthenticate(t *testing.T) {
	h := Authenticate(quietLogger, testJWT)(principalEcho)

	t.Run("ValidToken", func(t *testing.T) {
		rec := serve(h, "Bearer "+validToken(t, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var p types.Principal
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, types.Principal{UserID: 3, Role: types.RoleOwner}, p)
	})

	tests := []struct {
		name    string
		header  func(t *testing.T) string
		wantMsg string
	}{
		{"missing header", func(*testing.T) string { return "" }, "Authorization header required"},
		{"wrong scheme", func(t *testing.T) string { return "Token " + validToken(t, nil) }, "Authorization header format must be Bearer {token}"},
		{"malformed", func(*testing.T) string { return "Bearer abc.def" }, "Malformed token"},
		{"expired", func(t *testing.T) string {
			return "Bearer " + validToken(t, func(c *types.Claims) {
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			})
		}, "Token has expired"},
		{"bad signature", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("another-secret"), nil)
		}, "Invalid token signature"},
		{"wrong issuer", func(t *testing.T) string {
			return "Bearer " + validToken(t, func(c *types.Claims) { c.Issuer = "someone-else" })
		}, "Invalid token issuer"},
		{"wrong audience", func(t *testing.T) string {
			return "Bearer " + validToken(t, func(c *types.Claims) { c.Audience = jwt.ClaimStrings{"other-api"} })
		}, "Invalid token audience"},
		{"no expiry", func(t *testing.T) string {
			return "Bearer " + validToken(t, func(c *types.Claims) { c.ExpiresAt = nil })
		}, "Invalid or expired token"},
		{"unknown role", func(t *testing.T) string {
			return "Bearer " + validToken(t, func(c *types.Claims) { c.Role = "superuser" })
		}, "Invalid or expired token"},
		{"algorithm none", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, nil)
		}, "Invalid token signature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.header(t))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.wantMsg, bodyError(t, rec))
		})
	}
}

func TestAuthenticatePanicsWithoutSecret(t *testing.T) {
	cfg := testJWT
	cfg.SecretKey = ""
	assert.Panics(t, func() {
		Authenticate(quietLogger, cfg)
	})
}

func TestOptionalAuthenticate(t *testing.T) {
	h := OptionalAuthenticate(quietLogger, testJWT)(principalEcho)

	assert.Equal(t, http.StatusNoContent, serve(h, "").Code)
	assert.Equal(t, http.StatusNoContent, serve(h, "Bearer garbage").Code)
	assert.Equal(t, http.StatusOK, serve(h, "Bearer "+validToken(t, nil)).Code)
}

func TestRequireRole(t *testing.T) {
	h := Authenticate(quietLogger, testJWT)(RequireRole(quietLogger, types.RoleAdmin)(principalEcho))

	rec := serve(h, "Bearer "+validToken(t, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied for your role", bodyError(t, rec))

	rec = serve(h, "Bearer "+validToken(t, func(c *types.Claims) { c.Role = types.RoleAdmin }))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without Authenticate in front there is no principal at all.
	rec = serve(RequireRole(quietLogger, types.RoleAdmin)(principalEcho), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
