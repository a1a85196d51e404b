package apiclient

import "context"

type anonymousKey struct{}

// WithAnonymous marks requests made with ctx as not belonging to a session.
// The unauthorized guard ignores them.
func WithAnonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

// IsAnonymous reports whether ctx was marked with WithAnonymous.
func IsAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}
