package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"staff_id": 7,
		"email":    "desk@greenpark.it",
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func TestStaffAuthMiddleware(t *testing.T) {
	var seen Staff
	handler := StaffAuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = StaffFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	expired := validClaims("staff")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noExp := validClaims("staff")
	delete(noExp, "exp")

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"wrong key", "Bearer " + sign(t, validClaims("staff"), "other"), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, expired, secret), http.StatusUnauthorized},
		{"no expiry", "Bearer " + sign(t, noExp, secret), http.StatusUnauthorized},
		{"unknown role", "Bearer " + sign(t, validClaims("owner"), secret), http.StatusUnauthorized},
		{"valid", "Bearer " + sign(t, validClaims("staff"), secret), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/reservations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
	assert.Equal(t, Staff{ID: 7, Email: "desk@greenpark.it", Role: "staff"}, seen)
}

func TestRequireAdmin(t *testing.T) {
	handler := StaffAuthMiddleware(secret)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	for role, code := range map[string]int{"staff": http.StatusForbidden, "admin": http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodPut, "/admin/categories/1/capacity", nil)
		req.Header.Set("Authorization", "Bearer "+sign(t, validClaims(role), secret))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, code, rec.Code, role)
	}
}
