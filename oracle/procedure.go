package oracle

import (
	"context"
	"math"
	"strings"
	"time"

	go_ora "github.com/sijms/go-ora/v2"

	"gorm.io/plsql"
	"gorm.io/plsql/catalog"
)

// outSize buffer size of character OUT binds, the largest PL/SQL VARCHAR2
const outSize = 32767

// CallProcedure calls callable in an anonymous block, functions return their result and
// procedures declaring OUT arguments a map of them by name
func (dialector Dialector) CallProcedure(ctx context.Context, conn plsql.ConnPool, callable *catalog.Callable, args plsql.CallArguments) (interface{}, error) {
	var (
		block string
		vars  []interface{}
		outs  = map[string]*go_ora.Out{}
		names []string
	)

	var result *go_ora.Out
	if callable.Function() {
		result = newOut(callable.Return.DataType, nil)
		vars = append(vars, *result)
	}

	if len(args.Positional) > 0 {
		block = callable.PositionalBlock(len(args.Positional))
		vars = append(vars, args.Positional...)
	} else {
		supplied := make(map[string]interface{}, len(args.Named))
		for _, arg := range args.Named {
			supplied[arg.Name] = arg.Value
		}

		for _, arg := range callable.Arguments {
			value, ok := supplied[arg.Name]
			switch {
			case arg.Out():
				out := newOut(arg.DataType, value)
				out.In = ok && strings.HasPrefix(arg.InOut, "IN")
				outs[arg.Name] = out
				names = append(names, arg.Name)
				vars = append(vars, *out)
			case ok:
				names = append(names, arg.Name)
				vars = append(vars, value)
			}
		}
		block = callable.Block(names)
	}

	if _, err := conn.ExecContext(ctx, block, vars...); err != nil {
		return nil, err
	}

	if result != nil {
		return outValue(result), nil
	}

	if len(outs) > 0 {
		values := make(map[string]interface{}, len(outs))
		for name, out := range outs {
			values[name] = outValue(out)
		}
		return values, nil
	}
	return nil, nil
}

func newOut(dataType string, value interface{}) *go_ora.Out {
	switch strings.ToUpper(dataType) {
	case "NUMBER", "INTEGER", "PLS_INTEGER", "BINARY_INTEGER", "FLOAT", "BINARY_FLOAT", "BINARY_DOUBLE":
		dest := new(float64)
		if f, ok := value.(float64); ok {
			*dest = f
		} else if i, ok := value.(int64); ok {
			*dest = float64(i)
		} else if i, ok := value.(int); ok {
			*dest = float64(i)
		}
		return &go_ora.Out{Dest: dest}
	case "DATE", "TIMESTAMP":
		dest := new(time.Time)
		if t, ok := value.(time.Time); ok {
			*dest = t
		}
		return &go_ora.Out{Dest: dest}
	}

	dest := new(string)
	if s, ok := value.(string); ok {
		*dest = s
	}
	return &go_ora.Out{Dest: dest, Size: outSize}
}

// outValue dereferences an OUT bind, integral numbers are returned as int64
func outValue(out *go_ora.Out) interface{} {
	switch dest := out.Dest.(type) {
	case *float64:
		if *dest == math.Trunc(*dest) && math.Abs(*dest) < math.MaxInt64 {
			return int64(*dest)
		}
		return *dest
	case *time.Time:
		return *dest
	case *string:
		return *dest
	}
	return out.Dest
}
