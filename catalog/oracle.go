package catalog

import (
	"context"
	"database/sql"
	"strings"
)

// Queryer runs catalog queries, satisfied by *sql.DB, *sql.Conn and *sql.Tx
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// OracleFinder finds callables in the ALL_ARGUMENTS data dictionary view
type OracleFinder struct {
	Conn Queryer
}

type argumentRow struct {
	Overload     sql.NullString
	ArgumentName sql.NullString
	Position     int
	Sequence     int
	DataLevel    int
	DataType     sql.NullString
	InOut        sql.NullString
	Defaulted    sql.NullString
}

// Find implements Finder
func (finder OracleFinder) Find(ctx context.Context, name Name) (*Callable, error) {
	query, vars := argumentsQuery(name)
	rows, err := finder.Conn.QueryContext(ctx, query, vars...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var argumentRows []argumentRow
	for rows.Next() {
		var row argumentRow
		if err := rows.Scan(&row.Overload, &row.ArgumentName, &row.Position, &row.Sequence, &row.DataLevel, &row.DataType, &row.InOut, &row.Defaulted); err != nil {
			return nil, err
		}
		argumentRows = append(argumentRows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return buildCallable(name, argumentRows), nil
}

func argumentsQuery(name Name) (string, []interface{}) {
	var (
		sql  strings.Builder
		vars []interface{}
	)

	sql.WriteString("SELECT overload, argument_name, position, sequence, data_level, data_type, in_out, defaulted FROM all_arguments WHERE owner = ")
	if name.Schema == "" {
		sql.WriteString("SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA')")
	} else {
		vars = append(vars, name.Schema)
		sql.WriteString(":" + itoa(len(vars)))
	}

	if name.Package == "" {
		sql.WriteString(" AND package_name IS NULL")
	} else {
		vars = append(vars, name.Package)
		sql.WriteString(" AND package_name = :" + itoa(len(vars)))
	}

	vars = append(vars, name.Object)
	sql.WriteString(" AND object_name = :" + itoa(len(vars)))
	sql.WriteString(" ORDER BY overload, sequence")
	return sql.String(), vars
}

// buildCallable builds the first signature from the argument rows, returns nil if there are none
//
// the return value of a function is the row at position 0, for pipelined functions it is a
// collection (level 0) of records (level 1) whose fields are the level 2 rows
func buildCallable(name Name, rows []argumentRow) *Callable {
	if len(rows) == 0 {
		return nil
	}

	callable := &Callable{Schema: name.Schema, Package: name.Package, Name: name.Object, Overloads: 1}

	overloads := map[string]bool{}
	for _, row := range rows {
		if row.Overload.Valid {
			overloads[row.Overload.String] = true
		}
	}
	if len(overloads) > 1 {
		callable.Overloads = len(overloads)
	}

	signature := rows[0].Overload
	var inReturn bool
	for _, row := range rows {
		if row.Overload != signature {
			continue
		}

		switch row.DataLevel {
		case 0:
			inReturn = row.Position == 0
			if inReturn {
				callable.Return = &Return{DataType: row.DataType.String}
			} else if row.ArgumentName.Valid && row.DataType.Valid {
				callable.Arguments = append(callable.Arguments, Argument{
					Name:      lower(row.ArgumentName.String),
					Position:  row.Position,
					DataType:  row.DataType.String,
					InOut:     row.InOut.String,
					Defaulted: row.Defaulted.String == "Y",
				})
			}
		case 2:
			if inReturn && row.ArgumentName.Valid {
				callable.Return.Fields = append(callable.Return.Fields, Field{
					Name:     lower(row.ArgumentName.String),
					Position: row.Position,
					DataType: row.DataType.String,
				})
			}
		}
	}

	callable.Sort()
	return callable
}
