// Package pgxlog routes pgx query logs to a go.uber.org/zap.Logger and tags
// them with the id of the HTTP request that issued the query.
package pgxlog

import (
	"context"

	"github.com/jackc/pgx/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// NewContextWithRequestID returns a copy of ctx carrying the request id
func NewContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFromContext returns the request id stored by NewContextWithRequestID
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok
}

// Logger implements pgx.Logger
type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.Named("pgx").WithOptions(zap.AddCallerSkip(1))}
}

// Log writes pgx log record. Query arguments are never logged since they carry
// password hashes and message bodies.
func (l *Logger) Log(ctx context.Context, level pgx.LogLevel, msg string, data map[string]interface{}) {
	fields := make([]zapcore.Field, 0, len(data)+1)
	if id, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, zap.String("request_id", id))
	}

	for k, v := range data {
		if k == "args" {
			continue
		}
		fields = append(fields, zap.Any(k, v))
	}

	switch level {
	case pgx.LogLevelTrace, pgx.LogLevelDebug:
		l.logger.Debug(msg, fields...)
	case pgx.LogLevelInfo:
		l.logger.Info(msg, fields...)
	case pgx.LogLevelWarn:
		l.logger.Warn(msg, fields...)
	default:
		l.logger.Error(msg, append(fields, zap.Stringer("pgx_log_level", level))...)
	}
}
