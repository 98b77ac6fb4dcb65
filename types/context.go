package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyRequestID contextKey = "request_id"
	keyBatchID   contextKey = "batch_id"
	keyProvider  contextKey = "provider"
)

// WithRequestID adds request ID to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID extracts request ID from context.
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok && v != ""
}

// WithBatchID adds batch ID to context.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, keyBatchID, batchID)
}

// BatchID extracts batch ID from context.
func BatchID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyBatchID).(string)
	return v, ok && v != ""
}

// WithProvider adds the provider name to context.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, keyProvider, provider)
}

// Provider extracts the provider name from context.
func Provider(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyProvider).(string)
	return v, ok && v != ""
}
