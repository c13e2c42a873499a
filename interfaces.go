package plsql

import (
	"context"
	"database/sql"

	"gorm.io/plsql/catalog"
	"gorm.io/plsql/clause"
)

// Dialector database dialector
type Dialector interface {
	Name() string
	Initialize(*DB) error
	BindVarTo(writer clause.Writer, stmt *Statement, v interface{})
	QuoteTo(clause.Writer, string)
	Explain(sql string, vars ...interface{}) string
}

// ConnPool db conns pool interface
type ConnPool interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// CallArguments arguments of a stored procedure call, Named is ordered by declared position
type CallArguments struct {
	Named      []sql.NamedArg
	Positional []interface{}
}

// Len returns the number of supplied arguments
func (args CallArguments) Len() int {
	return len(args.Named) + len(args.Positional)
}

// Names returns the names of the named arguments
func (args CallArguments) Names() []string {
	names := make([]string, len(args.Named))
	for idx, arg := range args.Named {
		names[idx] = arg.Name
	}
	return names
}

// Values returns argument values in binding order
func (args CallArguments) Values() []interface{} {
	if len(args.Named) == 0 {
		return args.Positional
	}

	values := make([]interface{}, len(args.Named))
	for idx, arg := range args.Named {
		values[idx] = arg.Value
	}
	return values
}

// ProcedureCaller calls stored procedures and functions, the result is the function's return
// value, or a map of OUT arguments for procedures declaring any
type ProcedureCaller interface {
	CallProcedure(ctx context.Context, conn ConnPool, callable *catalog.Callable, args CallArguments) (interface{}, error)
}

// CatalogProvider is implemented by dialectors able to look callables up in their database
type CatalogProvider interface {
	Catalog(*DB) catalog.Finder
}

// ErrorTranslator translates database errors
type ErrorTranslator interface {
	Translate(err error) error
}

// Rows rows interface
type Rows interface {
	Columns() ([]string, error)
	ColumnTypes() ([]*sql.ColumnType, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

type BeforeCreateInterface interface {
	BeforeCreate(*DB) error
}

type AfterCreateInterface interface {
	AfterCreate(*DB) error
}

type BeforeUpdateInterface interface {
	BeforeUpdate(*DB) error
}

type AfterUpdateInterface interface {
	AfterUpdate(*DB) error
}

type BeforeDeleteInterface interface {
	BeforeDelete(*DB) error
}

type AfterDeleteInterface interface {
	AfterDelete(*DB) error
}

type AfterFindInterface interface {
	AfterFind(*DB) error
}
