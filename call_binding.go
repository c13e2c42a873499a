package plsql

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/plsql/catalog"
	"gorm.io/plsql/clause"
	"gorm.io/plsql/schema"
)

// CallBinding arguments bound to a pipelined function call, slots are filled by equality
// conditions as they are added and checked when the statement is built
type CallBinding struct {
	callable *catalog.Callable
	values   map[string]interface{}
}

// NewCallBinding returns an empty binding of callable's arguments
func NewCallBinding(callable *catalog.Callable) *CallBinding {
	return &CallBinding{callable: callable, values: map[string]interface{}{}}
}

// Callable returns the bound function
func (binding *CallBinding) Callable() *catalog.Callable {
	return binding.callable
}

// Bind fills the slot of argument name, an explicit nil binds NULL, it returns false when the
// function declares no such argument
func (binding *CallBinding) Bind(name string, value interface{}) bool {
	arg, ok := binding.callable.Argument(name)
	if !ok {
		return false
	}
	binding.values[arg.Name] = value
	return true
}

// Value returns the value bound to argument name
func (binding *CallBinding) Value(name string) (interface{}, bool) {
	if arg, ok := binding.callable.Argument(name); ok {
		v, ok := binding.values[arg.Name]
		return unwrapRaw(v), ok
	}
	return nil, false
}

// Len returns the number of filled slots
func (binding *CallBinding) Len() int {
	return len(binding.values)
}

// Arguments returns the filled slots in argument order
func (binding *CallBinding) Arguments() []sql.NamedArg {
	args := make([]sql.NamedArg, 0, len(binding.values))
	for _, arg := range binding.callable.Arguments {
		if v, ok := binding.values[arg.Name]; ok {
			args = append(args, sql.Named(arg.Name, unwrapRaw(v)))
		}
	}
	return args
}

// Expression returns the table function row source, every argument without a default must be bound
func (binding *CallBinding) Expression(alias string) (clause.TableFunction, error) {
	fn := clause.TableFunction{Name: binding.callable.QualifiedName(), Alias: alias}

	var missing []string
	for _, arg := range binding.callable.Arguments {
		if v, ok := binding.values[arg.Name]; ok {
			fn.Arguments = append(fn.Arguments, sql.Named(arg.Name, unwrapRaw(v)))
		} else if arg.Defaulted {
			fn.Named = true
		} else {
			missing = append(missing, arg.Name)
		}
	}

	if len(missing) > 0 {
		return fn, fmt.Errorf("%w: %s of %s", ErrUnboundArgument, strings.Join(missing, ", "), binding.callable)
	}
	return fn, nil
}

func (binding *CallBinding) clone() *CallBinding {
	values := make(map[string]interface{}, len(binding.values))
	for k, v := range binding.values {
		values[k] = v
	}
	return &CallBinding{callable: binding.callable, values: values}
}

// RawArgument marks a value to be bound to a function argument as it is, without casting it to
// the argument's declared type
func RawArgument(value interface{}) interface{} {
	return rawArgument{value: value}
}

type rawArgument struct {
	value interface{}
}

func (raw rawArgument) Value() (driver.Value, error) {
	if valuer, ok := raw.value.(driver.Valuer); ok {
		return valuer.Value()
	}
	return driver.DefaultParameterConverter.ConvertValue(raw.value)
}

func unwrapRaw(v interface{}) interface{} {
	if raw, ok := v.(rawArgument); ok {
		return raw.value
	}
	return v
}

// BindArguments moves WHERE equality conditions on arguments of the model's pipelined function
// into the function call, other conditions are kept as filters applied to the returned rows.
// Only a WHERE made of AND conditions is partitioned.
//
//	db.Where("p_name = ?", "Albert").Where("surname = ?", "Einstein").Find(&users)
//	// SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN WHERE FUBN.surname = :2
func BindArguments(db *DB) {
	stmt := db.Statement
	if db.Error != nil || stmt.Class == nil || !stmt.Class.IsPipelined() {
		return
	}

	if _, ok := stmt.TableExpr.(clause.TableFunction); stmt.TableExpr != nil && !ok {
		return
	}

	callable := stmt.Class.PipelinedFunction()
	binding := stmt.Call
	if binding == nil || binding.callable != callable {
		binding = NewCallBinding(callable)
	} else {
		binding = binding.clone()
	}

	if c, ok := stmt.Clauses["WHERE"]; ok {
		if where, ok := c.Expression.(clause.Where); ok && isConjunction(where.Exprs) {
			filters := make([]clause.Expression, 0, len(where.Exprs))
			for _, expr := range flattenConditions(where.Exprs) {
				if !bindCondition(stmt, binding, expr) {
					filters = append(filters, expr)
				}
			}

			if len(filters) == 0 {
				delete(stmt.Clauses, "WHERE")
			} else {
				c.Expression = clause.Where{Exprs: filters}
				stmt.Clauses["WHERE"] = c
			}
		}
	}

	fn, err := binding.Expression(stmt.Class.Alias())
	if err != nil {
		db.AddError(err)
		return
	}

	stmt.Call = binding
	stmt.Table = callable.QualifiedName()
	stmt.TableAlias = fn.Alias
	stmt.TableExpr = fn
}

// flattenConditions lifts nested conjunctions, arguments are only looked for at the top level
// of the WHERE conjunction
func flattenConditions(exprs []clause.Expression) []clause.Expression {
	flattened := make([]clause.Expression, 0, len(exprs))
	for _, expr := range exprs {
		if and, ok := expr.(clause.AndConditions); ok {
			flattened = append(flattened, flattenConditions(and.Exprs)...)
		} else {
			flattened = append(flattened, expr)
		}
	}
	return flattened
}

// isConjunction reports whether the conditions are only joined with AND, a WHERE holding an OR
// is left untouched
func isConjunction(exprs []clause.Expression) bool {
	for _, expr := range flattenConditions(exprs) {
		if _, ok := expr.(clause.OrConditions); ok {
			return false
		}
	}
	return true
}

func bindCondition(stmt *Statement, binding *CallBinding, expr clause.Expression) bool {
	eq, ok := expr.(clause.Eq)
	if !ok || !bindableColumn(stmt, eq.Column) {
		return false
	}

	arg, ok := binding.callable.Argument(clause.ColumnName(eq.Column))
	if !ok {
		return false
	}

	value := eq.Value
	switch v := value.(type) {
	case clause.Column, clause.Expression:
		return false
	case rawArgument:
	case []byte:
	default:
		if v != nil {
			if kind := reflect.ValueOf(v).Kind(); kind == reflect.Slice || kind == reflect.Array {
				return false
			}
		}

		column := schema.NewColumn(arg.Name, nil, arg.DataType, binding.callable.QualifiedName())
		if casted, err := column.Cast(v); err == nil {
			value = casted
		}
	}

	return binding.Bind(arg.Name, value)
}

// bindableColumn reports whether column may refer to the current table
func bindableColumn(stmt *Statement, column interface{}) bool {
	switch v := column.(type) {
	case string:
		if idx := strings.LastIndexByte(v, '.'); idx >= 0 {
			return isCurrentTable(stmt, v[:idx])
		}
		return true
	case clause.Column:
		return v.Table == "" || isCurrentTable(stmt, v.Table)
	}
	return false
}

func isCurrentTable(stmt *Statement, table string) bool {
	return table == clause.CurrentTable || strings.EqualFold(table, stmt.TableAlias) ||
		strings.EqualFold(table, stmt.Table)
}
