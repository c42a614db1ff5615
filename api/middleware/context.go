package middleware

import (
	"context"

	"github.com/angelmondragon/pim-console/pkg/auth"
)

type contextKey string

const (
	ctxSessionID contextKey = "console_session_id"
	ctxActor     contextKey = "actor"
)

// SessionIDFromContext returns the console session id set by ConsoleSession.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext returns the signed-in user set by ConsoleSession.
func ActorFromContext(ctx context.Context) (auth.Actor, bool) {
	if ctx == nil {
		return auth.Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(auth.Actor)
	return actor, ok
}

// WithSession injects the console session id and actor into the context.
func WithSession(ctx context.Context, sessionID string, actor auth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxSessionID, sessionID)
	return context.WithValue(ctx, ctxActor, actor)
}
