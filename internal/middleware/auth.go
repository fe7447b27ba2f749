package middleware

import (
	"context"
	"net/http"
	"strings"

	"fleet-backend/internal/access"
	"fleet-backend/internal/auth"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
)

type contextKey string

const UserKey contextKey = "user"
const ClaimsKey contextKey = "claims"
const requestInfoKey contextKey = "request_info"

// TokenRevocations is satisfied by the cache
type TokenRevocations interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      store.UserStore
	revoked    TokenRevocations
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, users store.UserStore, revoked TokenRevocations) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
		revoked:    revoked,
	}
}

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set headers on
// WebSocket upgrades, so the token query parameter is accepted there.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			if t := r.URL.Query().Get("token"); t != "" {
				return t, true
			}
		}
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Authenticate is a middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		if m.revoked != nil && m.revoked.IsRevoked(r.Context(), claims.ID) {
			http.Error(w, "Token has been revoked", http.StatusUnauthorized)
			return
		}

		// Check the store for current user status (for immediate permission updates)
		user, err := m.users.Get(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}

		if !user.IsActive {
			http.Error(w, "Account suspended. Please contact administrator.", http.StatusForbidden)
			return
		}

		if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
			info.userID = user.ID
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		ctx = context.WithValue(ctx, ClaimsKey, claims)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability rejects users whose role has none of actions in the capability table
func (m *AuthMiddleware) RequireCapability(actions ...access.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			for _, action := range actions {
				if access.Can(user.Role, action) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
		})
	}
}

// GetUserFromContext returns the authenticated user loaded by Authenticate
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}

// GetClaimsFromContext returns the validated token claims
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}

// WithUser is used by tests and internal callers to act as a user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

type requestInfo struct {
	userID string
}

func withRequestInfo(ctx context.Context, info *requestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey, info)
}
