package internal

import (
	"context"
	"time"
)

type ctxKey string

const contextActorIDKey ctxKey = "actorID"

// ContextWithActorID stamps the authenticated account's ID on the context.
func ContextWithActorID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, contextActorIDKey, id)
}

// ActorIDFromContext returns the stamped account ID, or zero when the
// request is unauthenticated.
func ActorIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(contextActorIDKey).(int64); ok {
		return id
	}
	return 0
}

// WithTimeout bounds ctx, falling back to 5 seconds when duration is not positive.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
