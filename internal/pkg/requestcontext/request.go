// Package requestcontext carries per request identifiers through
// context.Context so that logs written deep in a use case can be correlated
// with the HTTP request that caused them.
package requestcontext

import "context"

type contextKey int

const requestIDKey contextKey = iota

// WithRequestID returns a copy of ctx carrying id
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id in ctx, empty when there is none
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
