package middleware

import (
	"context"
	"net/http"
	"strings"

	"parkassist/internal/auth"
)

type contextKey string

const operatorIDKey contextKey = "operatorID"

// Auth wraps a handler with bearer-JWT validation and stores the token
// subject in the request context.
func Auth(svc *auth.Service, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		subject, err := svc.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), operatorIDKey, subject)
		next(w, r.WithContext(ctx))
	}
}

// OperatorIDFromContext retrieves the authenticated operator ID.
func OperatorIDFromContext(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(operatorIDKey).(string)
	return val, ok
}
