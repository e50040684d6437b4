package guard

import "context"

type ctxKeySession struct{}

type ctxKeyActor struct{}

// WithSession attaches the host-supplied session identifier to the context.
// The guard treats it as an opaque string keying approvals and audit rows.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, sessionID)
}

func SessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(ctxKeySession{}).(string)
	return s
}

// WithActor records who is driving the session, for audit attribution only.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ctxKeyActor{}, actor)
}

func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(ctxKeyActor{}).(string)
	return s
}
