package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"bpoc/internal/utils"
)

const identityKey contextKey = "identity"

// Identity is the authenticated caller carried by the bearer token.
type Identity struct {
	UserID   string
	Role     string
	AgencyID string
}

// Authenticate requires a valid HS256 bearer token. Websocket clients may pass
// the token as the "token" query parameter instead.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.URL.Query().Get("token")
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				raw = strings.TrimPrefix(h, "Bearer ")
			}
			if raw == "" {
				utils.JSONError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := utils.ParseToken(raw, secret)
			if err != nil {
				utils.JSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			userID, err := utils.GetUserIDFromClaims(claims)
			if err != nil {
				utils.JSONError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}
			id := Identity{
				UserID:   userID,
				Role:     utils.GetStringClaim(claims, "role"),
				AgencyID: utils.GetStringClaim(claims, "agency_id"),
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole rejects callers whose role is not listed. It must run after
// Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !slices.Contains(roles, id.Role) {
				utils.JSONError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
