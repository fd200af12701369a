package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ActorFromContext resolves the acting user for audit fields. Requests
// without an authenticated session are attributed to "system" (seed
// scripts, background jobs).
func ActorFromContext(ctx context.Context) string {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return "system"
	}
	return sess.User()
}
