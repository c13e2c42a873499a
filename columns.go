package plsql

import (
	"fmt"
	"strings"

	"gorm.io/plsql/catalog"
	"gorm.io/plsql/errtranslator"
	"gorm.io/plsql/schema"
)

// ColumnTypes returns the columns of table, pipelined functions, by name or in TABLE(...) call
// syntax, return their virtual columns
//
// Columns of pipelined functions are kept in the column cache, table columns are probed each time
func (db *DB) ColumnTypes(table string) ([]*schema.Column, error) {
	if catalog.IsTableFunctionCall(table) {
		name, err := catalog.ParseName(table)
		if err != nil {
			return nil, err
		}
		return db.functionColumns(name.Qualified())
	}

	if columns, ok := db.columns.Load(table); ok {
		return columns, nil
	}

	stmt := db.Statement
	rows, err := stmt.ConnPool.QueryContext(stmt.Context, "SELECT * FROM "+table+" WHERE 1 = 0")
	if err != nil {
		if errtranslator.IsNotTable(err) {
			return db.functionColumns(table)
		}
		return nil, err
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	columns := make([]*schema.Column, len(columnTypes))
	for idx, columnType := range columnTypes {
		columns[idx] = schema.NewColumn(strings.ToLower(columnType.Name()), columnType.ScanType(), columnType.DatabaseTypeName(), table)
	}
	return columns, nil
}

func (db *DB) functionColumns(name string) ([]*schema.Column, error) {
	if columns, ok := db.columns.Load(name); ok {
		return columns, nil
	}

	if db.resolver == nil {
		return nil, &catalog.NotFoundError{Name: name, Err: fmt.Errorf("no catalog configured")}
	}

	callable, err := db.resolver.Resolve(db.Statement.Context, name)
	if err != nil {
		return nil, err
	}

	if !callable.Pipelined() {
		return nil, fmt.Errorf("%w: %s is not a pipelined function", ErrUnsupported, callable)
	}

	columns := virtualColumns(callable)
	db.columns.Store(callable.QualifiedName(), columns)
	return columns, nil
}
