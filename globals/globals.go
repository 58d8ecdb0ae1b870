package globals

import (
	"context"
)

// Context keys
type ContextKey string

const SessionIDKey ContextKey = "sessionId"

// WithSessionID returns ctx carrying the browser session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

// SessionID returns the session id stored by WithSessionID, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}
