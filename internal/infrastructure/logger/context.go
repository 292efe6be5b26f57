package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	tenantIDKey  contextKey = "tenant_id"
	actorIDKey   contextKey = "actor_id"
)

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in the context, or a no-op
// logger when none is present.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID from the context, if any.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTenantID stores the tenant ID in the context.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// GetTenantID returns the tenant ID from the context, if any.
func GetTenantID(ctx context.Context) string {
	if id, ok := ctx.Value(tenantIDKey).(string); ok {
		return id
	}
	return ""
}

// WithActorID stores the acting user ID in the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey, actorID)
}

// GetActorID returns the acting user ID from the context, if any.
func GetActorID(ctx context.Context) string {
	if id, ok := ctx.Value(actorIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextLogger enriches log entries with request, tenant and trace
// identifiers carried in the context.
type ContextLogger struct {
	base *zap.Logger
}

// NewContextLogger wraps a zap logger for context-aware logging.
func NewContextLogger(base *zap.Logger) *ContextLogger {
	return &ContextLogger{base: base}
}

// L returns the base logger enriched with every identifier found in
// the context. Handlers call this on the hot path, so the field slice
// is sized for the common case.
func (c *ContextLogger) L(ctx context.Context) *zap.Logger {
	fields := make([]zap.Field, 0, 5)

	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTenantID(ctx); id != "" {
		fields = append(fields, zap.String("tenant_id", id))
	}
	if id := GetActorID(ctx); id != "" {
		fields = append(fields, zap.String("actor_id", id))
	}

	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		fields = append(fields,
			zap.String("trace_id", span.TraceID().String()),
			zap.String("span_id", span.SpanID().String()),
		)
	}

	if len(fields) == 0 {
		return c.base
	}
	return c.base.With(fields...)
}

// Debug logs at debug level with context enrichment.
func (c *ContextLogger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Debug(msg, fields...)
}

// Info logs at info level with context enrichment.
func (c *ContextLogger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Info(msg, fields...)
}

// Warn logs at warn level with context enrichment.
func (c *ContextLogger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Warn(msg, fields...)
}

// Error logs at error level with context enrichment.
func (c *ContextLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Error(msg, fields...)
}

// Zap returns the underlying logger.
func (c *ContextLogger) Zap() *zap.Logger {
	return c.base
}
