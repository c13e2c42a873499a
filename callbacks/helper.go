package callbacks

import (
	"reflect"

	"gorm.io/plsql"
	"gorm.io/plsql/clause"
)

func callMethod(db *plsql.DB, fc func(value interface{}, tx *plsql.DB) bool) {
	tx := db.Session(&plsql.Session{NewDB: true})
	switch db.Statement.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < db.Statement.ReflectValue.Len(); i++ {
			if value := reflect.Indirect(db.Statement.ReflectValue.Index(i)); value.CanAddr() {
				fc(value.Addr().Interface(), tx)
			} else {
				db.AddError(plsql.ErrInvalidValue)
				return
			}
		}
	case reflect.Struct:
		if db.Statement.ReflectValue.CanAddr() {
			fc(db.Statement.ReflectValue.Addr().Interface(), tx)
		} else {
			db.AddError(plsql.ErrInvalidValue)
		}
	}
}

// procedureMethod returns whether the class of the statement redirects action to a procedure,
// statements of read only virtual tables get ErrReadOnlyVirtualTable
func procedureMethod(db *plsql.DB, action string) (redirected bool) {
	class := db.Statement.Class
	if class == nil {
		return false
	}

	if _, ok := class.LookupProcedureMethod(action); ok {
		return true
	}

	if class.IsPipelined() {
		db.AddError(plsql.ErrReadOnlyVirtualTable)
		return true
	}
	return false
}

// callProcedure dispatches action for each record of the statement
func callProcedure(db *plsql.DB, action string) {
	callMethod(db, func(value interface{}, tx *plsql.DB) bool {
		if db.Error != nil {
			return false
		}

		if _, err := tx.CallProcedure(value, action); err != nil {
			db.AddError(err)
			return false
		}
		db.RowsAffected++
		return true
	})
}

// primaryKeyCondition returns the primary key condition of a single record statement
func primaryKeyCondition(stmt *plsql.Statement) (clause.Expression, bool) {
	if stmt.Schema == nil || stmt.Schema.PrioritizedPrimaryField == nil || stmt.ReflectValue.Kind() != reflect.Struct {
		return nil, false
	}

	field := stmt.Schema.PrioritizedPrimaryField
	if v, isZero := field.ValueOf(stmt.ReflectValue); !isZero {
		return clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName}, Value: v}, true
	}
	return nil, false
}
