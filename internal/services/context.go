package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	strategyKey  contextKey = "strategy"
)

// WithRequestID stores a pipeline-run correlation identifier on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// WithStrategy stores the active extraction strategy name on the context.
func WithStrategy(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, strategyKey, name)
}

// StrategyFromContext extracts the active strategy name, if present.
func StrategyFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(strategyKey).(string)
	return name, ok && name != ""
}
