// Package requestctx carries the per-request identifier through
// contexts so handlers and domain code can tag their log lines.
package requestctx

import "context"

type key int

const requestIDKey key = iota

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id or "" when none was set.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
