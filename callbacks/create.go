package callbacks

import (
	"reflect"

	"gorm.io/plsql"
	"gorm.io/plsql/clause"
)

func BeforeCreate(db *plsql.DB) {
	if db.Error == nil && db.Statement.Schema != nil && !db.Statement.SkipHooks {
		callMethod(db, func(value interface{}, tx *plsql.DB) (called bool) {
			if i, ok := value.(plsql.BeforeCreateInterface); ok {
				called = true
				db.AddError(i.BeforeCreate(tx))
			}
			return called
		})
	}
}

// Create inserts the records, or calls the create procedure of their class for each of them
func Create(config *Config) func(db *plsql.DB) {
	return func(db *plsql.DB) {
		if db.Error != nil {
			return
		}

		if db.Statement.Schema == nil {
			db.AddError(plsql.ErrModelValueRequired)
			return
		}

		if procedureMethod(db, plsql.ActionCreate) {
			if db.Error == nil && !db.DryRun {
				callProcedure(db, plsql.ActionCreate)
			}
			return
		}

		if db.Statement.SQL.Len() == 0 {
			db.Statement.AddClauseIfNotExists(clause.Insert{})
			db.Statement.AddClause(ConvertToCreateValues(db.Statement))
			db.Statement.Build(config.CreateClauses...)
		}

		if !db.DryRun && db.Error == nil {
			result, err := db.Statement.ConnPool.ExecContext(db.Statement.Context, db.Statement.SQL.String(), db.Statement.Vars...)
			if err != nil {
				db.AddError(err)
				return
			}

			db.RowsAffected, _ = result.RowsAffected()
			plsql.MarkPersisted(db.Statement.Dest)
		}
	}
}

// ConvertToCreateValues converts the statement's records to insert values, zero primary keys are
// left to the database
func ConvertToCreateValues(stmt *plsql.Statement) (values clause.Values) {
	var fields []int
	for idx, field := range stmt.Schema.Fields {
		if field.Creatable && stmt.Schema.FieldsByDBName[field.DBName] == field {
			fields = append(fields, idx)
		}
	}

	rows := []reflect.Value{}
	switch stmt.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < stmt.ReflectValue.Len(); i++ {
			rows = append(rows, reflect.Indirect(stmt.ReflectValue.Index(i)))
		}
	case reflect.Struct:
		rows = append(rows, stmt.ReflectValue)
	}

	pk := stmt.Schema.PrioritizedPrimaryField
	for _, idx := range fields {
		field := stmt.Schema.Fields[idx]
		if field == pk && len(rows) > 0 {
			if _, isZero := field.ValueOf(rows[0]); isZero {
				continue
			}
		}
		values.Columns = append(values.Columns, clause.Column{Name: field.DBName})
	}

	for _, row := range rows {
		value := make([]interface{}, 0, len(values.Columns))
		for _, column := range values.Columns {
			v, _ := stmt.Schema.FieldsByDBName[column.Name].ValueOf(row)
			value = append(value, v)
		}
		values.Values = append(values.Values, value)
	}
	return
}

func AfterCreate(db *plsql.DB) {
	if db.Error == nil && db.Statement.Schema != nil && !db.Statement.SkipHooks {
		callMethod(db, func(value interface{}, tx *plsql.DB) (called bool) {
			if i, ok := value.(plsql.AfterCreateInterface); ok {
				called = true
				db.AddError(i.AfterCreate(tx))
			}
			return called
		})
	}
}
