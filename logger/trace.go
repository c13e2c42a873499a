package logger

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/plsql/errtranslator"
	"gorm.io/plsql/utils"
)

// tracing decides whether, and at which level, a statement or call is logged
type tracing struct {
	LogLevel                  LogLevel
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

func newTracing(config Config) tracing {
	return tracing{
		LogLevel:                  config.LogLevel,
		SlowThreshold:             config.SlowThreshold,
		IgnoreRecordNotFoundError: config.IgnoreRecordNotFoundError,
	}
}

func (t tracing) isSlow(elapsed time.Duration) bool {
	return t.SlowThreshold != 0 && elapsed > t.SlowThreshold && t.LogLevel >= Warn
}

func (t tracing) ignored(err error) bool {
	return t.IgnoreRecordNotFoundError && errors.Is(err, ErrRecordNotFound)
}

// entry a statement or call that passed the level checks
type entry struct {
	level   LogLevel
	message string
	file    string
	elapsed time.Duration
	text    string
	rows    int64
	result  interface{}
	call    bool
	err     error
	slow    time.Duration
}

// statement classifies an executed statement, fc is only evaluated when it is logged
func (t tracing) statement(begin time.Time, fc func() (string, int64), err error) (entry, bool) {
	if t.LogLevel <= Silent {
		return entry{}, false
	}

	e := entry{elapsed: time.Since(begin)}
	switch {
	case err != nil && !t.ignored(err):
		e.level, e.message, e.err = Error, "SQL executed", err
	case t.isSlow(e.elapsed):
		e.level, e.message, e.slow = Warn, "SLOW SQL executed", t.SlowThreshold
	case t.LogLevel >= Info:
		e.level, e.message = Info, "SQL executed"
	default:
		return entry{}, false
	}

	e.text, e.rows = fc()
	e.file = utils.FileWithLineNum()
	return e, true
}

// procedureCall classifies a stored procedure call, errors raised by application code are
// expected outcomes and logged at info level
func (t tracing) procedureCall(begin time.Time, fc func() (string, interface{}), err error) (entry, bool) {
	if t.LogLevel <= Silent {
		return entry{}, false
	}

	e := entry{elapsed: time.Since(begin), call: true, rows: -1, err: err}
	switch {
	case err != nil && !errtranslator.IsUserDefined(err) && !t.ignored(err):
		e.level, e.message = Error, "procedure called"
	case err != nil:
		e.level, e.message = Info, "procedure called"
	case t.isSlow(e.elapsed):
		e.level, e.message, e.slow = Warn, "SLOW procedure called", t.SlowThreshold
	default:
		e.level, e.message = Info, "procedure called"
	}

	if t.LogLevel < e.level {
		return entry{}, false
	}

	e.text, e.result = fc()
	e.file = utils.FileWithLineNum()
	return e, true
}

func (e entry) duration() string {
	return fmt.Sprintf("%.3fms", float64(e.elapsed.Nanoseconds())/1e6)
}

type attr struct {
	key   string
	value interface{}
}

// attrs returns the structured fields of e, in the order they are written
func (e entry) attrs() []attr {
	attrs := []attr{{"file", e.file}, {"duration", e.duration()}}
	if e.call {
		attrs = append(attrs, attr{"call", e.text})
		if e.err == nil {
			attrs = append(attrs, attr{"result", e.result})
		}
	} else {
		attrs = append(attrs, attr{"sql", e.text})
		if e.rows != -1 {
			attrs = append(attrs, attr{"rows", e.rows})
		}
	}

	if e.err != nil {
		attrs = append(attrs, attr{"error", e.err.Error()})
	}
	if e.slow != 0 {
		attrs = append(attrs, attr{"slow_threshold", e.slow.String()})
	}
	return attrs
}

// parameterized drops bind values from logged statements when enabled
type parameterized bool

func (p parameterized) filter(sql string, params []interface{}) (string, []interface{}) {
	if p {
		return sql, nil
	}
	return sql, params
}
