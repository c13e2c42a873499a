package logger

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// OraclePlaceholder matches Oracle bind variables, :1 or :p_name
var OraclePlaceholder = regexp.MustCompile(`:\w+`)

const timeFormat = "2006-01-02 15:04:05"

// ExplainSQL inlines args into sql for logging, the result must never be executed.
// Bind variables are positional, the n-th placeholder takes the n-th arg whatever its name,
// a nil placeholder replaces question marks
func ExplainSQL(sql string, placeholder *regexp.Regexp, escaper string, args ...interface{}) string {
	literals := make([]string, len(args))
	for idx, arg := range args {
		literals[idx] = literal(arg, escaper)
	}

	if placeholder == nil {
		var builder strings.Builder
		parts := strings.Split(sql, "?")
		for idx, part := range parts {
			builder.WriteString(part)
			switch {
			case idx == len(parts)-1:
			case idx < len(literals):
				builder.WriteString(literals[idx])
			default:
				builder.WriteByte('?')
			}
		}
		return builder.String()
	}

	next := 0
	return placeholder.ReplaceAllStringFunc(sql, func(match string) string {
		if next == len(literals) {
			return match
		}
		next++
		return literals[next-1]
	})
}

func literal(v interface{}, escaper string) string {
	if named, ok := v.(sql.NamedArg); ok {
		v = named.Value
	}
	if valuer, ok := v.(driver.Valuer); ok {
		v, _ = valuer.Value()
	}

	quote := func(s string) string {
		return escaper + strings.ReplaceAll(s, escaper, escaper+escaper) + escaper
	}

	switch v := v.(type) {
	case nil:
		return "NULL"
	case bool:
		return strconv.FormatBool(v)
	case string:
		return quote(v)
	case time.Time:
		return quote(v.Format(timeFormat))
	case *time.Time:
		if v == nil {
			return "NULL"
		}
		return quote(v.Format(timeFormat))
	case []byte:
		if !printable(v) {
			return quote("<binary>")
		}
		return quote(string(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return quote(fmt.Sprint(v))
	}
}

func printable(b []byte) bool {
	for _, r := range string(b) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
