package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gorm.io/plsql/utils"
)

// ZerologLogger implements Interface using zerolog
type ZerologLogger struct {
	tracing
	parameterized
	Logger zerolog.Logger
}

// NewZerologLogger creates a new logger using zerolog
func NewZerologLogger(logger zerolog.Logger, config Config) Interface {
	return &ZerologLogger{tracing: newTracing(config), parameterized: parameterized(config.ParameterizedQueries), Logger: logger}
}

// LogMode sets the log level
func (l *ZerologLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *ZerologLogger) event(ctx context.Context, level LogLevel) *zerolog.Event {
	event := l.Logger.WithLevel(ZerologLevel(level))
	if ctx != nil {
		event = event.Ctx(ctx)
	}
	return event
}

func (l *ZerologLogger) message(ctx context.Context, level LogLevel, msg string, data []interface{}) {
	if l.LogLevel >= level {
		l.event(ctx, level).Str("file", utils.FileWithLineNum()).Interface("data", data).Msg(msg)
	}
}

// Info logs info messages
func (l *ZerologLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, Info, msg, data)
}

// Warn logs warning messages
func (l *ZerologLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, Warn, msg, data)
}

// Error logs error messages
func (l *ZerologLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, Error, msg, data)
}

func (l *ZerologLogger) write(ctx context.Context, e entry) {
	event := l.event(ctx, e.level)
	for _, a := range e.attrs() {
		event = event.Interface(a.key, a.value)
	}
	event.Msg(e.message)
}

// Trace logs SQL execution details
func (l *ZerologLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if e, ok := l.statement(begin, fc, err); ok {
		l.write(ctx, e)
	}
}

// TraceCall logs stored procedure calls
func (l *ZerologLogger) TraceCall(ctx context.Context, begin time.Time, fc func() (call string, result interface{}), err error) {
	if e, ok := l.procedureCall(begin, fc, err); ok {
		l.write(ctx, e)
	}
}

// ParamsFilter filters SQL parameters
func (l *ZerologLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	return l.filter(sql, params)
}

// ZerologLevel converts LogLevel to zerolog.Level
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.NoLevel
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
