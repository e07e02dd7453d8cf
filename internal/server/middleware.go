package server

import (
	"context"
	"errors"
	"net/http"

	"authsvc/internal/auth"
)

type ctxKey string

const userIDContextKey ctxKey = "userID"

// requireAuth reads the token cookie, verifies the session token and puts
// the user id into the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.TokenCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "Not authorized, login again.")
			return
		}

		userID, err := s.Tokens.Verify(cookie.Value)
		if err != nil {
			if errors.Is(err, auth.ErrExpired) {
				writeError(w, http.StatusUnauthorized, "Session expired, login again.")
				return
			}
			writeError(w, http.StatusUnauthorized, "Not authorized, login again.")
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) string {
	if val, ok := ctx.Value(userIDContextKey).(string); ok {
		return val
	}
	return ""
}
