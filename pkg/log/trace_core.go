package log

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ForContext returns a sugared logger carrying the trace and span IDs of the
// span recorded on ctx, when one exists.
func ForContext(ctx context.Context) *zap.SugaredLogger {
	mu.RLock()
	s := sugar
	mu.RUnlock()

	if ctx == nil {
		return s
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return s
	}

	fields := []interface{}{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
	if spanCtx.TraceFlags() != 0 {
		fields = append(fields, zap.Uint8("trace_flags", uint8(spanCtx.TraceFlags())))
	}
	return s.With(fields...)
}
