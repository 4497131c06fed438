package httpserver

import (
	"context"
	"log"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatme/internal/domain"
	"chatme/internal/security"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// sessionCookieName is the cookie the browser client authenticates with;
// API clients send the same token as a Bearer header instead.
const sessionCookieName = "jwt"

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// sessionToken pulls the token from the Authorization header, falling back
// to the session cookie.
func sessionToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// AuthMiddleware validates the session token and attaches the user to the
// request context.
func AuthMiddleware(tokens *security.TokenService, users domain.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := sessionToken(r)
			if tokenStr == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing session token"})
				return
			}

			userID, err := tokens.Parse(tokenStr)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
				return
			}

			oid, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token subject"})
				return
			}

			user, err := users.GetByID(r.Context(), oid)
			if err != nil {
				log.Printf("AuthMiddleware: GetByID error for sub '%s': %v", userID, err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "user not found"})
				return
			}
			if user == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "user not found"})
				return
			}

			ctx := WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
