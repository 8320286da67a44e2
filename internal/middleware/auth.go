package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/thumbdeck/account-server-go/internal/httputil"
	"github.com/thumbdeck/account-server-go/internal/token"
)

type contextKey string

const UserIDContextKey contextKey = "userID"

// GetUserID returns the authenticated user id, or "" outside an
// authenticated request.
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDContextKey).(string); ok {
		return userID
	}
	return ""
}

// RevocationChecker reports whether a session token id has been denylisted.
// *token.Blacklist satisfies it.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	tokens    *token.Service
	blacklist RevocationChecker
}

func NewAuthMiddleware(tokens *token.Service, blacklist RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, blacklist: blacklist}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ExtractBearerToken(r)
		if tokenString == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing authentication token",
			})
			return
		}

		claims, err := m.tokens.Verify(tokenString)
		if err != nil {
			log.Warn().Msg("auth middleware: invalid token attempt")
			httputil.WriteError(w, err)
			return
		}

		revoked, err := m.blacklist.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			log.Error().Err(err).Msg("auth middleware: revocation check failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Authentication failed",
			})
			return
		}
		if revoked {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Token has been revoked",
			})
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ExtractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
