package callbacks

import (
	"gorm.io/plsql"
	"gorm.io/plsql/clause"
)

func BeforeDelete(db *plsql.DB) {
	if db.Error == nil && db.Statement.Schema != nil && !db.Statement.SkipHooks {
		callMethod(db, func(value interface{}, tx *plsql.DB) (called bool) {
			if i, ok := value.(plsql.BeforeDeleteInterface); ok {
				called = true
				db.AddError(i.BeforeDelete(tx))
			}
			return called
		})
	}
}

// Delete deletes the records matching the statement, or calls the destroy procedure of their
// class for each record
func Delete(config *Config) func(db *plsql.DB) {
	return func(db *plsql.DB) {
		if db.Error != nil {
			return
		}

		if db.Statement.Schema == nil {
			db.AddError(plsql.ErrModelValueRequired)
			return
		}

		if procedureMethod(db, plsql.ActionDestroy) {
			if db.Error == nil && !db.DryRun {
				callProcedure(db, plsql.ActionDestroy)
			}
			return
		}

		if db.Statement.SQL.Len() == 0 {
			if cond, ok := primaryKeyCondition(db.Statement); ok {
				db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{cond}})
			}

			if _, ok := db.Statement.Clauses["WHERE"]; !ok {
				db.AddError(plsql.ErrMissingWhereClause)
				return
			}

			db.Statement.AddClauseIfNotExists(clause.Delete{})
			db.Statement.AddClauseIfNotExists(clause.From{})
			db.Statement.Build(config.DeleteClauses...)
		}

		if !db.DryRun && db.Error == nil {
			result, err := db.Statement.ConnPool.ExecContext(db.Statement.Context, db.Statement.SQL.String(), db.Statement.Vars...)
			if err != nil {
				db.AddError(err)
				return
			}

			db.RowsAffected, _ = result.RowsAffected()
			plsql.MarkDestroyed(db.Statement.Dest)
		}
	}
}

func AfterDelete(db *plsql.DB) {
	if db.Error == nil && db.Statement.Schema != nil && !db.Statement.SkipHooks {
		callMethod(db, func(value interface{}, tx *plsql.DB) (called bool) {
			if i, ok := value.(plsql.AfterDeleteInterface); ok {
				called = true
				db.AddError(i.AfterDelete(tx))
			}
			return called
		})
	}
}
