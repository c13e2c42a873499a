package utils

import (
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var plsqlSourceDir string

func init() {
	_, file, _, _ := runtime.Caller(0)
	plsqlSourceDir = sourceDir(file)
}

func sourceDir(file string) string {
	dir := filepath.Dir(file)
	dir = filepath.Dir(dir)

	s := filepath.Dir(dir)
	if filepath.Base(s) != "gorm.io" {
		s = dir
	}
	return filepath.ToSlash(s) + "/"
}

// FileWithLineNum return the file name and line number of the current file
func FileWithLineNum() string {
	frame := CallerFrame()
	if frame.PC == 0 {
		return ""
	}
	return frame.File + ":" + strconv.FormatInt(int64(frame.Line), 10)
}

// CallerFrame returns the first frame outside of this module, test files included
func CallerFrame() runtime.Frame {
	pcs := [13]uintptr{}
	// the second caller usually from plsql internal, so skip the first two
	length := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:length])
	for frame, more := frames.Next(); ; frame, more = frames.Next() {
		if !strings.HasPrefix(frame.File, plsqlSourceDir) || strings.HasSuffix(frame.File, "_test.go") {
			return frame
		}
		if !more {
			break
		}
	}
	return runtime.Frame{}
}

// ToCamel converts snake_case action names to CamelCase method names
//
//	reset_password => ResetPassword
func ToCamel(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	caser := cases.Title(language.Und)
	for idx, part := range parts {
		parts[idx] = caser.String(part)
	}
	return strings.Join(parts, "")
}

// Indirect returns the value behind pointers and driver.Valuer implementations
func Indirect(value interface{}) interface{} {
	if valuer, ok := value.(driver.Valuer); ok {
		value, _ = valuer.Value()
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// ToString formats value for display, nil pointers and invalid nulls are empty
func ToString(value interface{}) string {
	switch v := Indirect(value).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
