package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"gorm.io/plsql/utils"
)

// LogrusLogger implements Interface using logrus
type LogrusLogger struct {
	tracing
	parameterized
	Logger *logrus.Logger
}

// NewLogrusLogger creates a new logger using logrus
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{tracing: newTracing(config), parameterized: parameterized(config.ParameterizedQueries), Logger: logger}
}

// LogMode sets the log level
func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *LogrusLogger) message(ctx context.Context, level LogLevel, msg string, data []interface{}) {
	if l.LogLevel >= level {
		l.Logger.WithContext(ctx).WithFields(logrus.Fields{
			"file": utils.FileWithLineNum(),
			"data": data,
		}).Log(LogrusLevel(level), msg)
	}
}

// Info logs info messages
func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, Info, msg, data)
}

// Warn logs warning messages
func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, Warn, msg, data)
}

// Error logs error messages
func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, Error, msg, data)
}

func (l *LogrusLogger) write(ctx context.Context, e entry) {
	fields := logrus.Fields{}
	for _, a := range e.attrs() {
		fields[a.key] = a.value
	}
	l.Logger.WithContext(ctx).WithFields(fields).Log(LogrusLevel(e.level), e.message)
}

// Trace logs SQL execution details
func (l *LogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if e, ok := l.statement(begin, fc, err); ok {
		l.write(ctx, e)
	}
}

// TraceCall logs stored procedure calls
func (l *LogrusLogger) TraceCall(ctx context.Context, begin time.Time, fc func() (call string, result interface{}), err error) {
	if e, ok := l.procedureCall(begin, fc, err); ok {
		l.write(ctx, e)
	}
}

// ParamsFilter filters SQL parameters
func (l *LogrusLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	return l.filter(sql, params)
}

// LogrusLevel converts LogLevel to logrus.Level
func LogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case Silent:
		return logrus.PanicLevel
	case Error:
		return logrus.ErrorLevel
	case Warn:
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}
