package callbacks

import (
	"gorm.io/plsql"
	"gorm.io/plsql/clause"
)

// Query runs the statement's SELECT and scans the rows into its destination
func Query(config *Config) func(db *plsql.DB) {
	return func(db *plsql.DB) {
		if db.Error == nil {
			BuildQuerySQL(db, config)

			if !db.DryRun && db.Error == nil {
				rows, err := db.Statement.ConnPool.QueryContext(db.Statement.Context, db.Statement.SQL.String(), db.Statement.Vars...)
				if err != nil {
					db.AddError(err)
					return
				}
				defer rows.Close()

				plsql.Scan(rows, db)
			}
		}
	}
}

func BuildQuerySQL(db *plsql.DB, config *Config) {
	if db.Statement.SQL.Len() > 0 {
		return
	}

	db.Statement.SQL.Grow(100)
	clauseSelect := clause.Select{Distinct: db.Statement.Distinct}

	if cond, ok := primaryKeyCondition(db.Statement); ok && db.Statement.Schema.ModelType == db.Statement.ReflectValue.Type() {
		db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{cond}})
	}

	if len(db.Statement.Selects) > 0 {
		clauseSelect.Columns = make([]clause.Column, len(db.Statement.Selects))
		for idx, name := range db.Statement.Selects {
			if db.Statement.Schema == nil {
				clauseSelect.Columns[idx] = clause.Column{Name: name, Raw: true}
			} else if f := db.Statement.Schema.LookUpField(name); f != nil {
				clauseSelect.Columns[idx] = clause.Column{Table: clause.CurrentTable, Name: f.DBName}
			} else {
				clauseSelect.Columns[idx] = clause.Column{Name: name, Raw: true}
			}
		}
	}

	db.Statement.AddClauseIfNotExists(clauseSelect)
	db.Statement.AddClauseIfNotExists(clause.From{})
	db.Statement.Build(config.QueryClauses...)
}

func AfterQuery(db *plsql.DB) {
	if db.Error == nil && db.Statement.Schema != nil && !db.Statement.SkipHooks {
		callMethod(db, func(value interface{}, tx *plsql.DB) (called bool) {
			if i, ok := value.(plsql.AfterFindInterface); ok {
				called = true
				db.AddError(i.AfterFind(tx))
			}
			return called
		})
	}
}
