package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"greenpark/internal/db"
)

type contextKey struct{}

// Staff is the authenticated staff member behind a request.
type Staff struct {
	ID    int64
	Email string
	Role  db.StaffRole
}

func (s Staff) IsAdmin() bool { return s.Role == db.RoleAdmin }

func WithStaff(ctx context.Context, s Staff) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func StaffFromContext(ctx context.Context) (Staff, bool) {
	s, ok := ctx.Value(contextKey{}).(Staff)
	return s, ok
}

// ParseToken validates an HS256 token issued at login and returns its staff claims.
func ParseToken(tokenString, secret string) (Staff, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Staff{}, err
	}

	id, ok := claims["staff_id"].(float64)
	if !ok {
		return Staff{}, fmt.Errorf("token has no staff_id")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	staff := Staff{ID: int64(id), Email: email, Role: db.StaffRole(role)}
	if staff.Role != db.RoleStaff && staff.Role != db.RoleAdmin {
		return Staff{}, fmt.Errorf("token has unknown role %q", role)
	}
	return staff, nil
}

// StaffAuthMiddleware rejects requests without a valid bearer token.
func StaffAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			staff, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil || secret == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithStaff(r.Context(), staff)))
		})
	}
}

// RequireAdmin must run after StaffAuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staff, ok := StaffFromContext(r.Context())
		if !ok || !staff.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
