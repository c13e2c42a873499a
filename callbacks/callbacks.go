package callbacks

import (
	"gorm.io/plsql"
)

var (
	createClauses = []string{"INSERT", "VALUES"}
	queryClauses  = []string{"SELECT", "FROM", "WHERE", "ORDER BY", "LIMIT"}
	updateClauses = []string{"UPDATE", "SET", "WHERE"}
	deleteClauses = []string{"DELETE", "FROM", "WHERE"}
)

type Config struct {
	CreateClauses []string
	QueryClauses  []string
	UpdateClauses []string
	DeleteClauses []string
}

func RegisterDefaultCallbacks(db *plsql.DB, config *Config) {
	if len(config.CreateClauses) == 0 {
		config.CreateClauses = createClauses
	}
	if len(config.QueryClauses) == 0 {
		config.QueryClauses = queryClauses
	}
	if len(config.UpdateClauses) == 0 {
		config.UpdateClauses = updateClauses
	}
	if len(config.DeleteClauses) == 0 {
		config.DeleteClauses = deleteClauses
	}

	createCallback := db.Callback().Create()
	createCallback.Register("plsql:before_create", BeforeCreate)
	createCallback.Register("plsql:create", Create(config))
	createCallback.Register("plsql:after_create", AfterCreate)

	queryCallback := db.Callback().Query()
	queryCallback.Register("plsql:bind_arguments", plsql.BindArguments)
	queryCallback.Register("plsql:query", Query(config))
	queryCallback.Register("plsql:after_query", AfterQuery)

	deleteCallback := db.Callback().Delete()
	deleteCallback.Register("plsql:before_delete", BeforeDelete)
	deleteCallback.Register("plsql:delete", Delete(config))
	deleteCallback.Register("plsql:after_delete", AfterDelete)

	updateCallback := db.Callback().Update()
	updateCallback.Register("plsql:before_update", BeforeUpdate)
	updateCallback.Register("plsql:update", Update(config))
	updateCallback.Register("plsql:after_update", AfterUpdate)
}
