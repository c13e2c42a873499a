package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gorm.io/plsql/utils"
)

// ErrRecordNotFound record not found error
var ErrRecordNotFound = errors.New("record not found")

// Colors
const (
	Reset       = "\033[0m"
	Red         = "\033[31m"
	Green       = "\033[32m"
	Yellow      = "\033[33m"
	Blue        = "\033[34m"
	Magenta     = "\033[35m"
	Cyan        = "\033[36m"
	White       = "\033[37m"
	BlueBold    = "\033[34;1m"
	MagentaBold = "\033[35;1m"
	RedBold     = "\033[31;1m"
	YellowBold  = "\033[33;1m"
)

// LogLevel log level
type LogLevel int

const (
	// Silent silent log level
	Silent LogLevel = iota + 1
	// Error error log level
	Error
	// Warn warn log level
	Warn
	// Info info log level
	Info
)

// Writer log writer interface
type Writer interface {
	Printf(string, ...interface{})
}

// Config logger config
type Config struct {
	SlowThreshold             time.Duration
	Colorful                  bool
	IgnoreRecordNotFoundError bool
	ParameterizedQueries      bool
	LogLevel                  LogLevel
}

// Interface logger interface
type Interface interface {
	LogMode(LogLevel) Interface
	Info(context.Context, string, ...interface{})
	Warn(context.Context, string, ...interface{})
	Error(context.Context, string, ...interface{})
	Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error)
	// TraceCall traces a stored procedure call, fc returns the PL/SQL block with its arguments explained
	TraceCall(ctx context.Context, begin time.Time, fc func() (call string, result interface{}), err error)
}

var (
	// Discard logger will print any log to io.Discard
	Discard = New(log.New(io.Discard, "", log.LstdFlags), Config{})
	// Default Default logger
	Default = New(log.New(os.Stdout, "\r\n", log.LstdFlags), Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  DefaultLogLevel(),
		IgnoreRecordNotFoundError: false,
		Colorful:                  true,
	})
)

// DefaultLogLevel reads PLSQL_LOG_LEVEL, errors only when unset
func DefaultLogLevel() LogLevel {
	switch os.Getenv("PLSQL_LOG_LEVEL") {
	case "silent":
		return Silent
	case "info":
		return Info
	case "warn":
		return Warn
	default:
		return Error
	}
}

type formats struct {
	info, warn, err string
	// trace lines take file, [error or slow notice,] elapsed ms, rows and the statement
	trace, traceWarn, traceErr string
	// call lines take file, [error,] elapsed ms, [result,] and the call
	call, callErr string
}

var (
	plainFormats = formats{
		info:      "%s\n[info] ",
		warn:      "%s\n[warn] ",
		err:       "%s\n[error] ",
		trace:     "%s\n[%.3fms] [rows:%v] %s",
		traceWarn: "%s %s\n[%.3fms] [rows:%v] %s",
		traceErr:  "%s %s\n[%.3fms] [rows:%v] %s",
		call:      "%s\n[%.3fms] [result:%v] %s",
		callErr:   "%s %s\n[%.3fms] %s",
	}
	colorfulFormats = formats{
		info:      Green + "%s\n" + Reset + Green + "[info] " + Reset,
		warn:      BlueBold + "%s\n" + Reset + Magenta + "[warn] " + Reset,
		err:       Magenta + "%s\n" + Reset + Red + "[error] " + Reset,
		trace:     Green + "%s\n" + Reset + Yellow + "[%.3fms] " + BlueBold + "[rows:%v]" + Reset + " %s",
		traceWarn: Green + "%s " + Yellow + "%s\n" + Reset + RedBold + "[%.3fms] " + Yellow + "[rows:%v]" + Magenta + " %s" + Reset,
		traceErr:  RedBold + "%s " + MagentaBold + "%s\n" + Reset + Yellow + "[%.3fms] " + BlueBold + "[rows:%v]" + Reset + " %s",
		call:      Green + "%s\n" + Reset + Yellow + "[%.3fms] " + BlueBold + "[result:%v]" + Reset + " %s",
		callErr:   RedBold + "%s " + MagentaBold + "%s\n" + Reset + Yellow + "[%.3fms] " + Reset + "%s",
	}
)

// New initialize logger
func New(writer Writer, config Config) Interface {
	l := &logger{Writer: writer, tracing: newTracing(config), parameterized: parameterized(config.ParameterizedQueries), formats: plainFormats}
	if config.Colorful {
		l.formats = colorfulFormats
	}
	return l
}

type logger struct {
	Writer
	tracing
	parameterized
	formats formats
}

// LogMode log mode
func (l *logger) LogMode(level LogLevel) Interface {
	newlogger := *l
	newlogger.LogLevel = level
	return &newlogger
}

func (l *logger) message(level LogLevel, format, msg string, data []interface{}) {
	if l.LogLevel >= level {
		l.Printf(format+msg, append([]interface{}{utils.FileWithLineNum()}, data...)...)
	}
}

// Info print info
func (l *logger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(Info, l.formats.info, msg, data)
}

// Warn print warn messages
func (l *logger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(Warn, l.formats.warn, msg, data)
}

// Error print error messages
func (l *logger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(Error, l.formats.err, msg, data)
}

// Trace print sql message
func (l *logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	e, ok := l.statement(begin, fc, err)
	if !ok {
		return
	}

	ms := float64(e.elapsed.Nanoseconds()) / 1e6
	var rows interface{} = e.rows
	if e.rows == -1 {
		rows = "-"
	}

	switch {
	case e.err != nil:
		l.Printf(l.formats.traceErr, e.file, e.err, ms, rows, e.text)
	case e.slow != 0:
		l.Printf(l.formats.traceWarn, e.file, fmt.Sprintf("SLOW SQL >= %v", e.slow), ms, rows, e.text)
	default:
		l.Printf(l.formats.trace, e.file, ms, rows, e.text)
	}
}

// TraceCall print stored procedure calls
func (l *logger) TraceCall(ctx context.Context, begin time.Time, fc func() (string, interface{}), err error) {
	e, ok := l.procedureCall(begin, fc, err)
	if !ok {
		return
	}

	ms := float64(e.elapsed.Nanoseconds()) / 1e6
	switch {
	case e.err != nil:
		l.Printf(l.formats.callErr, e.file, e.err, ms, e.text)
	case e.slow != 0:
		l.Printf(l.formats.call, e.file, ms, e.result, fmt.Sprintf("SLOW CALL >= %v ", e.slow)+e.text)
	default:
		l.Printf(l.formats.call, e.file, ms, e.result, e.text)
	}
}

// ParamsFilter filter params
func (l *logger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	return l.filter(sql, params)
}
