//go:build go1.21

package logger

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/plsql/utils"
)

type slogLogger struct {
	tracing
	parameterized
	Logger *slog.Logger
}

// NewSlogLogger creates a new logger using log/slog, records carry the caller's source
// instead of a file field
func NewSlogLogger(logger *slog.Logger, config Config) Interface {
	return &slogLogger{tracing: newTracing(config), parameterized: parameterized(config.ParameterizedQueries), Logger: logger}
}

func (l *slogLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *slogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.log(ctx, slog.LevelInfo, msg, slog.Any("data", data))
	}
}

func (l *slogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.log(ctx, slog.LevelWarn, msg, slog.Any("data", data))
	}
}

func (l *slogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.log(ctx, slog.LevelError, msg, slog.Any("data", data))
	}
}

func (l *slogLogger) write(ctx context.Context, group string, e entry) {
	var fields []slog.Attr
	for _, a := range e.attrs() {
		if a.key != "file" {
			fields = append(fields, slog.Any(a.key, a.value))
		}
	}
	l.log(ctx, slogLevel(e.level), e.message, slog.Attr{Key: group, Value: slog.GroupValue(fields...)})
}

func (l *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if e, ok := l.statement(begin, fc, err); ok {
		l.write(ctx, "trace", e)
	}
}

func (l *slogLogger) TraceCall(ctx context.Context, begin time.Time, fc func() (call string, result interface{}), err error) {
	if e, ok := l.procedureCall(begin, fc, err); ok {
		l.write(ctx, "call", e)
	}
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !l.Logger.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, utils.CallerFrame().PC)
	r.Add(args...)
	_ = l.Logger.Handler().Handle(ctx, r)
}

// ParamsFilter filter params
func (l *slogLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	return l.filter(sql, params)
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case Error:
		return slog.LevelError
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
