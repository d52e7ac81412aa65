package contextx

import (
	"context"
	"fmt"
)

type TraceID string

type contextKeyTraceID struct{}

func (t TraceID) String() string {
	return string(t)
}

func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, contextKeyTraceID{}, traceID)
}

func TraceIDFromContext(ctx context.Context) (TraceID, error) {
	traceID, ok := ctx.Value(contextKeyTraceID{}).(TraceID)
	if !ok {
		return "", fmt.Errorf("trace id: %w", ErrNoValue)
	}

	return traceID, nil
}

// TraceIDOrDefault returns the trace id stored in ctx or fallback.
func TraceIDOrDefault(ctx context.Context, fallback TraceID) TraceID {
	traceID, err := TraceIDFromContext(ctx)
	if err != nil {
		return fallback
	}

	return traceID
}
