package callbacks

import (
	"gorm.io/plsql"
	"gorm.io/plsql/clause"
)

func BeforeUpdate(db *plsql.DB) {
	if db.Error == nil && db.Statement.Schema != nil && !db.Statement.SkipHooks {
		callMethod(db, func(value interface{}, tx *plsql.DB) (called bool) {
			if i, ok := value.(plsql.BeforeUpdateInterface); ok {
				called = true
				db.AddError(i.BeforeUpdate(tx))
			}
			return called
		})
	}
}

// Update updates the record by primary key, or calls the update procedure of its class
func Update(config *Config) func(db *plsql.DB) {
	return func(db *plsql.DB) {
		if db.Error != nil {
			return
		}

		if db.Statement.Schema == nil {
			db.AddError(plsql.ErrModelValueRequired)
			return
		}

		if procedureMethod(db, plsql.ActionUpdate) {
			if db.Error == nil && !db.DryRun {
				callProcedure(db, plsql.ActionUpdate)
			}
			return
		}

		if db.Statement.SQL.Len() == 0 {
			cond, ok := primaryKeyCondition(db.Statement)
			if !ok {
				db.AddError(plsql.ErrPrimaryKeyRequired)
				return
			}

			set := ConvertToAssignments(db.Statement)
			if len(set) == 0 {
				return
			}

			db.Statement.AddClauseIfNotExists(clause.Update{})
			db.Statement.AddClause(set)
			db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{cond}})
			db.Statement.Build(config.UpdateClauses...)
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

// ConvertToAssignments assigns every updatable column but the primary key
func ConvertToAssignments(stmt *plsql.Statement) (set clause.Set) {
	for _, dbName := range stmt.Schema.DBNames {
		field := stmt.Schema.FieldsByDBName[dbName]
		if field.PrimaryKey || !field.Updatable {
			continue
		}

		value, _ := field.ValueOf(stmt.ReflectValue)
		set = append(set, clause.Assignment{Column: clause.Column{Name: dbName}, Value: value})
	}
	return
}

func AfterUpdate(db *plsql.DB) {
	if db.Error == nil && db.Statement.Schema != nil && !db.Statement.SkipHooks {
		callMethod(db, func(value interface{}, tx *plsql.DB) (called bool) {
			if i, ok := value.(plsql.AfterUpdateInterface); ok {
				called = true
				db.AddError(i.AfterUpdate(tx))
			}
			return called
		})
	}
}
