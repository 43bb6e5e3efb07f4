package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// SessionCookie is the well-known key the session token lives under.
const SessionCookie = "warbler_session"

// Auth requires an authenticated identity: without a valid session the
// request is rejected before any handler runs, so no protected operation can
// produce a side effect anonymously.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := resolveUserID(r, jwtSecret)
			if !ok {
				http.Error(w, `{"error":{"code":"UNAUTHORIZED","message":"Access unauthorized"}}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the current identity when a valid session is present
// and treats everything else, including a token whose subject no longer
// exists, as anonymous.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := resolveUserID(r, jwtSecret); ok {
				r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveUserID(r *http.Request, jwtSecret string) (int64, bool) {
	tokenStr := tokenFromRequest(r)
	if tokenStr == "" {
		return 0, false
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	sub, _ := claims.GetSubject()
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}

	return userID, true
}

// tokenFromRequest prefers the session cookie and falls back to a bearer
// header for non-browser clients.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}

// GetUserID extracts the authenticated user id from the request context.
// Only valid behind Auth.
func GetUserID(ctx context.Context) int64 {
	return ctx.Value(UserIDKey).(int64)
}

// CurrentUserID reports the authenticated user id, or false when anonymous.
func CurrentUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}
