package goFieldOps

import "context"

type skipRefreshContextKey struct{}
type requestIDContextKey struct{}

// WithoutRefresh marks requests made with ctx as exempt from 401 recovery.
// The response is returned to the caller untouched and no refresh or forced
// logout is triggered. Login uses it so a wrong password stays a plain 401.
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipRefreshContextKey{}, true)
}

// WithRequestID pins the X-Request-ID header for requests made with ctx.
// Without it the pipeline generates a random one per logical request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func skipRefreshFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	skip, _ := ctx.Value(skipRefreshContextKey{}).(bool)
	return skip
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
