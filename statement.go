package plsql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gorm.io/plsql/clause"
	"gorm.io/plsql/schema"
)

// Statement statement
type Statement struct {
	*DB
	TableExpr            clause.Expression
	Table                string
	TableAlias           string
	Model                interface{}
	Dest                 interface{}
	ReflectValue         reflect.Value
	Clauses              map[string]clause.Clause
	Distinct             bool
	Selects              []string // selected columns
	ConnPool             ConnPool
	Schema               *schema.Schema
	Class                *Class
	Call                 *CallBinding
	Context              context.Context
	RaiseErrorOnNotFound bool
	SkipHooks            bool
	SQL                  strings.Builder
	Vars                 []interface{}
}

// StatementModifier statement modifier interface
type StatementModifier interface {
	ModifyStatement(*Statement)
}

// WriteString write string
func (stmt *Statement) WriteString(str string) (int, error) {
	return stmt.SQL.WriteString(str)
}

// WriteByte write byte
func (stmt *Statement) WriteByte(c byte) error {
	return stmt.SQL.WriteByte(c)
}

// WriteQuoted write quoted value
func (stmt *Statement) WriteQuoted(value interface{}) {
	stmt.QuoteTo(&stmt.SQL, value)
}

// QuoteTo write quoted value to writer
func (stmt *Statement) QuoteTo(writer clause.Writer, field interface{}) {
	write := func(raw bool, str string) {
		if raw {
			writer.WriteString(str)
		} else {
			stmt.DB.Dialector.QuoteTo(writer, str)
		}
	}

	switch v := field.(type) {
	case clause.Table:
		if v.Name == clause.CurrentTable {
			if stmt.TableExpr != nil && writer == &stmt.SQL {
				stmt.TableExpr.Build(stmt)
				return
			}

			write(v.Raw, stmt.Table)
			if stmt.TableAlias != "" {
				writer.WriteByte(' ')
				write(v.Raw, stmt.TableAlias)
			}
		} else {
			write(v.Raw, v.Name)
		}

		if v.Alias != "" {
			writer.WriteByte(' ')
			write(v.Raw, v.Alias)
		}
	case clause.Column:
		if v.Table != "" {
			if v.Table == clause.CurrentTable {
				if stmt.TableAlias != "" {
					write(v.Raw, stmt.TableAlias)
				} else {
					write(v.Raw, stmt.Table)
				}
			} else {
				write(v.Raw, v.Table)
			}
			writer.WriteByte('.')
		}

		if v.Name == clause.PrimaryKey {
			if stmt.Schema == nil {
				stmt.DB.AddError(ErrModelValueRequired)
			} else if stmt.Schema.PrioritizedPrimaryField != nil {
				write(v.Raw, stmt.Schema.PrioritizedPrimaryField.DBName)
			} else if len(stmt.Schema.DBNames) > 0 {
				write(v.Raw, stmt.Schema.DBNames[0])
			} else {
				stmt.DB.AddError(ErrPrimaryKeyRequired)
			}
		} else {
			write(v.Raw, v.Name)
		}

		if v.Alias != "" {
			writer.WriteString(" AS ")
			write(v.Raw, v.Alias)
		}
	case []clause.Column:
		writer.WriteByte('(')
		for idx, d := range v {
			if idx > 0 {
				writer.WriteByte(',')
			}
			stmt.QuoteTo(writer, d)
		}
		writer.WriteByte(')')
	case clause.Expr:
		v.Build(stmt)
	case string:
		stmt.DB.Dialector.QuoteTo(writer, v)
	default:
		stmt.DB.Dialector.QuoteTo(writer, fmt.Sprint(field))
	}
}

// Quote returns quoted value
func (stmt *Statement) Quote(field interface{}) string {
	var builder strings.Builder
	stmt.QuoteTo(&builder, field)
	return builder.String()
}

// AddVar add var, named arguments are written as :name and bound by their position
func (stmt *Statement) AddVar(writer clause.Writer, vars ...interface{}) {
	for idx, v := range vars {
		if idx > 0 {
			writer.WriteByte(',')
		}

		switch v := v.(type) {
		case sql.NamedArg:
			stmt.Vars = append(stmt.Vars, v.Value)
			if v.Name != "" {
				writer.WriteByte(':')
				writer.WriteString(v.Name)
			} else {
				stmt.DB.Dialector.BindVarTo(writer, stmt, v.Value)
			}
		case clause.Column, clause.Table:
			stmt.QuoteTo(writer, v)
		case clause.Expression:
			var varStr strings.Builder
			sqlStr := stmt.SQL
			stmt.SQL = varStr
			v.Build(stmt)
			varStr = stmt.SQL
			stmt.SQL = sqlStr
			writer.WriteString(varStr.String())
		case driver.Valuer:
			stmt.Vars = append(stmt.Vars, v)
			stmt.DB.Dialector.BindVarTo(writer, stmt, v)
		case []byte:
			stmt.Vars = append(stmt.Vars, v)
			stmt.DB.Dialector.BindVarTo(writer, stmt, v)
		case []interface{}:
			if len(v) > 0 {
				writer.WriteByte('(')
				stmt.AddVar(writer, v...)
				writer.WriteByte(')')
			} else {
				writer.WriteString("(NULL)")
			}
		default:
			switch rv := reflect.ValueOf(v); rv.Kind() {
			case reflect.Slice, reflect.Array:
				if rv.Len() == 0 {
					writer.WriteString("(NULL)")
				} else {
					writer.WriteByte('(')
					for i := 0; i < rv.Len(); i++ {
						if i > 0 {
							writer.WriteByte(',')
						}
						stmt.AddVar(writer, rv.Index(i).Interface())
					}
					writer.WriteByte(')')
				}
			default:
				stmt.Vars = append(stmt.Vars, v)
				stmt.DB.Dialector.BindVarTo(writer, stmt, v)
			}
		}
	}
}

// AddError add error to the statement's db
func (stmt *Statement) AddError(err error) error {
	return stmt.DB.AddError(err)
}

// AddClause add clause
func (stmt *Statement) AddClause(v clause.Interface) {
	name := v.Name()
	c := stmt.Clauses[name]
	c.Name = name
	v.MergeClause(&c)
	stmt.Clauses[name] = c
}

// AddClauseIfNotExists add clause if not exists
func (stmt *Statement) AddClauseIfNotExists(v clause.Interface) {
	if c, ok := stmt.Clauses[v.Name()]; !ok || c.Expression == nil {
		stmt.AddClause(v)
	}
}

// BuildCondition build condition
func (stmt *Statement) BuildCondition(query interface{}, args ...interface{}) []clause.Expression {
	if s, ok := query.(string); ok {
		// if it is a number, then treats it as primary key
		if _, err := strconv.Atoi(s); err != nil {
			if s == "" && len(args) == 0 {
				return nil
			}

			if len(args) == 1 {
				if matches := equalityCondition.FindStringSubmatch(s); matches != nil {
					return []clause.Expression{clause.Eq{Column: columnOf(matches[1]), Value: args[0]}}
				}
			}

			if len(args) == 0 || strings.Contains(s, "?") {
				return []clause.Expression{clause.Expr{SQL: s, Vars: args}}
			}

			if len(args) == 1 {
				return []clause.Expression{clause.Eq{Column: columnOf(s), Value: args[0]}}
			}
		}
	}

	conds := make([]clause.Expression, 0, 4)
	args = append([]interface{}{query}, args...)
	for idx, arg := range args {
		if arg == nil {
			continue
		}

		switch v := arg.(type) {
		case clause.Expression:
			conds = append(conds, v)
		case *DB:
			if cs, ok := v.Statement.Clauses["WHERE"]; ok {
				if where, ok := cs.Expression.(clause.Where); ok {
					conds = append(conds, clause.And(where.Exprs...))
				}
			}
		case map[string]interface{}:
			conds = append(conds, mapConditions(v)...)
		case map[string]string:
			converted := make(map[string]interface{}, len(v))
			for key, value := range v {
				converted[key] = value
			}
			conds = append(conds, mapConditions(converted)...)
		default:
			if idx > 0 {
				continue
			}

			reflectValue := reflect.Indirect(reflect.ValueOf(arg))
			switch reflectValue.Kind() {
			case reflect.Struct:
				if s, err := schema.Parse(arg, stmt.DB.cacheStore, stmt.DB.NamingStrategy); err == nil {
					for _, field := range s.Fields {
						if !field.Readable {
							continue
						}
						if value, isZero := field.ValueOf(reflectValue); !isZero {
							conds = append(conds, clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName}, Value: value})
						}
					}
				} else {
					stmt.AddError(err)
				}
			default:
				// primary keys, a single value or a list of them
				if len(args) == 1 {
					return append(conds, clause.Eq{Column: clause.PrimaryColumn, Value: arg})
				}
				return append(conds, clause.Eq{Column: clause.PrimaryColumn, Value: args})
			}
		}
	}

	return conds
}

// equalityCondition matches single placeholder equalities like "p_name = ?"
var equalityCondition = regexp.MustCompile(`^\s*((?:[\w$#]+\.)?[\w$#]+)\s*=\s*\?\s*$`)

func columnOf(name string) clause.Column {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return clause.Column{Table: name[:idx], Name: name[idx+1:]}
	}
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

// mapConditions builds equality conditions sorted by column name
func mapConditions(values map[string]interface{}) []clause.Expression {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	conds := make([]clause.Expression, 0, len(keys))
	for _, key := range keys {
		conds = append(conds, clause.Eq{Column: columnOf(key), Value: values[key]})
	}
	return conds
}

// Build build sql with clauses names
func (stmt *Statement) Build(clauses ...string) {
	var firstClauseWritten bool

	for _, name := range clauses {
		if c, ok := stmt.Clauses[name]; ok {
			if firstClauseWritten {
				stmt.WriteByte(' ')
			}

			firstClauseWritten = true
			if b, ok := stmt.DB.ClauseBuilders[name]; ok {
				b(c, stmt)
			} else {
				c.Build(stmt)
			}
		}
	}
}

// Parse parse model, tables of models bound to pipelined functions are the function names
func (stmt *Statement) Parse(value interface{}) (err error) {
	if stmt.Schema, err = schema.Parse(value, stmt.DB.cacheStore, stmt.DB.NamingStrategy); err == nil {
		stmt.Class = stmt.DB.classOf(stmt.Schema.ModelType)
		if stmt.Table == "" {
			if stmt.Class != nil && stmt.Class.IsPipelined() {
				stmt.Table = stmt.Class.TableName()
				stmt.TableAlias = stmt.Class.Alias()
			} else {
				stmt.Table = stmt.Schema.Table
			}
		}
	}
	return err
}

func (stmt *Statement) clone() *Statement {
	newStmt := &Statement{
		TableExpr:            stmt.TableExpr,
		Table:                stmt.Table,
		TableAlias:           stmt.TableAlias,
		Model:                stmt.Model,
		Dest:                 stmt.Dest,
		ReflectValue:         stmt.ReflectValue,
		Clauses:              map[string]clause.Clause{},
		Distinct:             stmt.Distinct,
		ConnPool:             stmt.ConnPool,
		Schema:               stmt.Schema,
		Class:                stmt.Class,
		Context:              stmt.Context,
		RaiseErrorOnNotFound: stmt.RaiseErrorOnNotFound,
		SkipHooks:            stmt.SkipHooks,
	}

	if stmt.SQL.Len() > 0 {
		newStmt.SQL.WriteString(stmt.SQL.String())
		newStmt.Vars = make([]interface{}, 0, len(stmt.Vars))
		newStmt.Vars = append(newStmt.Vars, stmt.Vars...)
	}

	for k, c := range stmt.Clauses {
		newStmt.Clauses[k] = c
	}

	if len(stmt.Selects) > 0 {
		newStmt.Selects = make([]string, len(stmt.Selects))
		copy(newStmt.Selects, stmt.Selects)
	}

	if stmt.Call != nil {
		newStmt.Call = stmt.Call.clone()
	}

	return newStmt
}
