package httputil

import (
	"context"
	"net/http"
)

// ctxKey is unexported so only this package can stamp request values.
type ctxKey int

const userIDKey ctxKey = iota

// WithUserID returns a request whose context carries the verified user ID.
// The auth middleware stamps it after JWT verification; everything behind
// the middleware scopes its queries to this ID.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

// GetUserID returns the verified user ID, or "" on paths the auth
// middleware leaves open (health checks).
func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
