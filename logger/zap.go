package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gorm.io/plsql/utils"
)

// ZapLogger implements Interface using zap
type ZapLogger struct {
	tracing
	parameterized
	Logger *zap.Logger
}

// NewZapLogger creates a new logger using zap
func NewZapLogger(logger *zap.Logger, config Config) Interface {
	return &ZapLogger{tracing: newTracing(config), parameterized: parameterized(config.ParameterizedQueries), Logger: logger}
}

// NewZapLoggerWithConfig builds a production zap logger at the level of config, zapConfig
// replaces the production config when given
func NewZapLoggerWithConfig(config Config, zapConfig ...zap.Config) Interface {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(ZapLevel(config.LogLevel))
	if len(zapConfig) > 0 {
		cfg = zapConfig[0]
	}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return NewZapLogger(logger, config)
}

// LogMode sets the log level
func (l *ZapLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *ZapLogger) message(level LogLevel, msg string, data []interface{}) {
	if l.LogLevel < level {
		return
	}

	if ce := l.Logger.Check(ZapLevel(level), msg); ce != nil {
		ce.Write(zap.String("file", utils.FileWithLineNum()), zap.Any("data", data))
	}
}

// Info logs info messages
func (l *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(Info, msg, data)
}

// Warn logs warning messages
func (l *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(Warn, msg, data)
}

// Error logs error messages
func (l *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(Error, msg, data)
}

func (l *ZapLogger) write(e entry) {
	if ce := l.Logger.Check(ZapLevel(e.level), e.message); ce != nil {
		attrs := e.attrs()
		fields := make([]zap.Field, len(attrs))
		for idx, a := range attrs {
			fields[idx] = zap.Any(a.key, a.value)
		}
		ce.Write(fields...)
	}
}

// Trace logs SQL execution details
func (l *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if e, ok := l.statement(begin, fc, err); ok {
		l.write(e)
	}
}

// TraceCall logs stored procedure calls
func (l *ZapLogger) TraceCall(ctx context.Context, begin time.Time, fc func() (call string, result interface{}), err error) {
	if e, ok := l.procedureCall(begin, fc, err); ok {
		l.write(e)
	}
}

// ParamsFilter filters SQL parameters
func (l *ZapLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	return l.filter(sql, params)
}

// ZapLevel converts LogLevel to zapcore.Level, Silent maps above Error so nothing is enabled
func ZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case Silent:
		return zapcore.DPanicLevel
	case Error:
		return zapcore.ErrorLevel
	case Warn:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
