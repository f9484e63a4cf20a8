package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Identity headers. Authentication happens upstream; this service trusts them.
const (
	HeaderUserID    = "X-User-ID"
	HeaderSessionID = "X-Session-ID"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	sessionIDKey
)

// NewIdentity returns a middleware that reads the caller's user ID and
// optional session ID from the request headers into the context.
// A missing or malformed user ID is rejected with 401.
func NewIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
			id, err := uuid.Parse(raw)
			if raw == "" || err != nil || id == uuid.Nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", HeaderUserID+" header must be a user UUID")
				return
			}
			ctx := WithIdentity(r.Context(), id, strings.TrimSpace(r.Header.Get(HeaderSessionID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity stores the caller in ctx. Handler tests use it to skip the headers.
func WithIdentity(ctx context.Context, userID uuid.UUID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// UserID returns the caller's user ID, if NewIdentity ran.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// SessionID returns the caller's session ID, or "" when none was sent.
func SessionID(ctx context.Context) string {
	s, _ := ctx.Value(sessionIDKey).(string)
	return s
}

// writeError writes the API's JSON error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
