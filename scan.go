package plsql

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"time"

	"gorm.io/plsql/schema"
)

// Scan reads rows into the statement's destination, records loaded through a pipelined
// function remember the arguments it was called with
func Scan(rows Rows, db *DB) {
	columns, _ := rows.Columns()
	db.RowsAffected = 0

	switch dest := db.Statement.Dest.(type) {
	case map[string]interface{}:
		scanMap(db, rows, columns, dest)
	case *map[string]interface{}:
		if *dest == nil {
			*dest = map[string]interface{}{}
		}
		scanMap(db, rows, columns, *dest)
	case *[]map[string]interface{}:
		for {
			row := map[string]interface{}{}
			if !scanMap(db, rows, columns, row) {
				break
			}
			*dest = append(*dest, row)
		}
	case *int, *int8, *int16, *int32, *int64,
		*uint, *uint8, *uint16, *uint32, *uint64,
		*float32, *float64,
		*bool, *string, *time.Time,
		*sql.NullInt64, *sql.NullFloat64, *sql.NullString, *sql.NullTime:
		for rows.Next() {
			db.RowsAffected++
			db.AddError(rows.Scan(dest))
		}
	default:
		newRecordScanner(db, columns).scan(rows)
	}

	if err := rows.Err(); err != nil && err != db.Error {
		db.AddError(err)
	}

	if db.RowsAffected == 0 && db.Statement.RaiseErrorOnNotFound && db.Error == nil {
		db.AddError(ErrRecordNotFound)
	}
}

// scanMap reads the next row into row, reports whether there was one
func scanMap(db *DB, rows Rows, columns []string, row map[string]interface{}) bool {
	if !rows.Next() {
		return false
	}

	values := newValues(len(columns))
	db.RowsAffected++
	if err := rows.Scan(values...); err != nil {
		db.AddError(err)
		return true
	}

	for idx, column := range columns {
		row[column] = plainValue(*values[idx].(*interface{}))
	}
	return true
}

func plainValue(v interface{}) interface{} {
	switch v := v.(type) {
	case driver.Valuer:
		value, _ := v.Value()
		return value
	case sql.RawBytes:
		return string(v)
	}
	return v
}

func newValues(n int) []interface{} {
	values := make([]interface{}, n)
	for idx := range values {
		values[idx] = new(interface{})
	}
	return values
}

type recordScanner struct {
	db      *DB
	fields  []*schema.Field
	elem    reflect.Type
	isPtr   bool
	foundBy []sql.NamedArg
}

func newRecordScanner(db *DB, columns []string) *recordScanner {
	s := &recordScanner{db: db, fields: make([]*schema.Field, len(columns))}
	if db.Statement.Call != nil {
		s.foundBy = db.Statement.Call.Arguments()
	}

	target := db.Statement.ReflectValue
	if target.Kind() == reflect.Interface {
		target = target.Elem()
	}

	s.elem = target.Type()
	if kind := s.elem.Kind(); kind == reflect.Slice || kind == reflect.Array {
		s.elem = s.elem.Elem()
	}
	if s.isPtr = s.elem.Kind() == reflect.Ptr; s.isPtr {
		s.elem = s.elem.Elem()
	}

	sch := db.Statement.Schema
	if sch != nil && s.elem != sch.ModelType && s.elem.Kind() == reflect.Struct {
		sch, _ = schema.Parse(db.Statement.Dest, db.cacheStore, db.NamingStrategy)
	}
	if sch != nil {
		for idx, column := range columns {
			if field := sch.LookUpField(column); field != nil && field.Readable {
				s.fields[idx] = field
			}
		}
	}
	return s
}

func (s *recordScanner) scan(rows Rows) {
	target := s.db.Statement.ReflectValue
	if target.Kind() == reflect.Interface {
		target = target.Elem()
	}

	switch target.Kind() {
	case reflect.Slice, reflect.Array:
		records := reflect.MakeSlice(target.Type(), 0, 20)
		for rows.Next() {
			elem := reflect.New(s.elem)
			if s.elem.Kind() == reflect.Struct {
				s.scanRecord(rows, elem.Elem())
			} else {
				// plucked column
				s.db.RowsAffected++
				s.db.AddError(rows.Scan(elem.Interface()))
			}

			if !s.isPtr {
				elem = elem.Elem()
			}
			records = reflect.Append(records, elem)
		}
		s.db.Statement.ReflectValue.Set(records)
	case reflect.Struct:
		if rows.Next() {
			s.scanRecord(rows, target)
		}
	default:
		s.db.AddError(ErrInvalidValue)
	}
}

func (s *recordScanner) scanRecord(rows Rows, record reflect.Value) {
	values := newValues(len(s.fields))
	s.db.RowsAffected++
	if err := rows.Scan(values...); err != nil {
		s.db.AddError(err)
		return
	}

	for idx, field := range s.fields {
		if field != nil {
			s.db.AddError(field.Set(record, *values[idx].(*interface{})))
		}
	}
	markPersisted(record, s.foundBy)
}
