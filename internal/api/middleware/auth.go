package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenVerifier turns a bearer credential into a user identifier. The
// actual identity provider is an external collaborator; the API only
// needs the resulting user ID.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Auth rejects requests without a valid bearer token and stores the
// resolved user ID in the request context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			userID, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user ID stored by Auth, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// StaticVerifier maps tokens to user IDs directly, for local development
// and tests.
type StaticVerifier map[string]string

// VerifyToken implements TokenVerifier.
func (v StaticVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if userID, ok := v[token]; ok {
		return userID, nil
	}
	return "", errors.New("unknown token")
}
