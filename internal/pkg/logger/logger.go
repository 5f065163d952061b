package logger

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AddFields returns a context whose logger carries fields.
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(fields...))
}

// WithAction tags the context logger with the handler or flow name.
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String("action", action))
}

// WithSession tags the context logger with a session and the action on it.
func WithSession(ctx context.Context, sessionID, action string, fields ...zap.Field) context.Context {
	base := []zap.Field{zap.String("session_id", sessionID), zap.String("action", action)}
	return AddFields(ctx, append(base, fields...)...)
}
