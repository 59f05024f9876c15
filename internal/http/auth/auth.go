package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey int

const callerKey ctxKey = iota

// Caller is the authenticated operator identity a guarded request proceeds
// with.
type Caller struct {
	ID   uuid.UUID
	Role string
}

// Claims is the token payload the guard understands.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// CallerFrom returns the identity the guard stored on the request context.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok
}

// Guard authenticates the Bearer token and requires one of the given roles.
// The request either proceeds with the caller identity on its context or
// stops here with a terminal 401/403.
func Guard(secret string, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == "" || raw == header {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims := &Claims{}

			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}

				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				http.Error(w, "invalid token subject", http.StatusUnauthorized)
				return
			}

			if len(allowed) > 0 {
				if _, ok := allowed[claims.Role]; !ok {
					http.Error(w, "insufficient role", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), callerKey, Caller{ID: id, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
