package plsql

import (
	"fmt"
	"strings"

	"gorm.io/plsql/catalog"
	"gorm.io/plsql/clause"
)

// Model specify the model you would like to run db operations
//
//	// find users named Albert through the model's pipelined function
//	db.Model(&User{}).Where(map[string]interface{}{"p_name": "Albert"}).Find(&users)
func (db *DB) Model(value interface{}) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.Model = value
	return
}

// Clauses Add clauses
func (db *DB) Clauses(conds ...clause.Expression) (tx *DB) {
	tx = db.getInstance()
	var whereConds []interface{}

	for _, cond := range conds {
		if c, ok := cond.(clause.Interface); ok {
			tx.Statement.AddClause(c)
		} else if optimizer, ok := cond.(StatementModifier); ok {
			optimizer.ModifyStatement(tx.Statement)
		} else {
			whereConds = append(whereConds, cond)
		}
	}

	if len(whereConds) > 0 {
		tx.Statement.AddClause(clause.Where{Exprs: tx.Statement.BuildCondition(whereConds[0], whereConds[1:]...)})
	}
	return
}

// Table specify the table you would like to run db operations, table function invocations
// select the function's rows
//
//	db.Table("users")
//	db.Table("TABLE(users_pkg.find_users_by_name(?))", "Albert")
func (db *DB) Table(name string, args ...interface{}) (tx *DB) {
	tx = db.getInstance()
	if catalog.IsTableFunctionCall(name) {
		tx.Statement.TableExpr = clause.Expr{SQL: name, Vars: args}
		if fn, err := catalog.ParseName(name); err == nil {
			tx.Statement.Table = fn.Qualified()
			tx.Statement.TableAlias = FunctionAlias(fn.Object)
			tx.Statement.TableExpr = clause.Expr{SQL: name + " " + tx.Statement.TableAlias, Vars: args}
		}
		return
	}

	if strings.Contains(name, " ") || len(args) > 0 {
		tx.Statement.TableExpr = clause.Expr{SQL: name, Vars: args}
		if fields := strings.Fields(name); len(fields) > 1 {
			tx.Statement.Table = fields[0]
			tx.Statement.TableAlias = fields[len(fields)-1]
			return
		}
	}

	tx.Statement.Table = name
	tx.Statement.TableAlias = ""
	return
}

// Distinct specify distinct fields that you want querying
func (db *DB) Distinct(args ...string) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.Distinct = true
	if len(args) > 0 {
		tx = tx.Select(args[0], args[1:]...)
	}
	return
}

// Select specify fields that you want when querying, columns are qualified with the table alias
func (db *DB) Select(column string, columns ...string) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.Selects = append([]string{column}, columns...)
	return
}

// Where add conditions, equality conditions on arguments of the model's pipelined function are
// bound to the function call when the query is executed
//
//	db.Where(map[string]interface{}{"p_name": "Albert", "surname": "Einstein"}).Find(&users)
//	db.Where("p_name = ?", "Albert").Where("country = 'DE'").Find(&users)
func (db *DB) Where(query interface{}, args ...interface{}) (tx *DB) {
	return db.where(query, args, func(conds []clause.Expression) []clause.Expression { return conds })
}

// Not add NOT conditions
func (db *DB) Not(query interface{}, args ...interface{}) (tx *DB) {
	return db.where(query, args, func(conds []clause.Expression) []clause.Expression {
		return []clause.Expression{clause.Not(conds...)}
	})
}

// Or add OR conditions, they are never bound to function arguments
func (db *DB) Or(query interface{}, args ...interface{}) (tx *DB) {
	return db.where(query, args, func(conds []clause.Expression) []clause.Expression {
		return []clause.Expression{clause.Or(clause.And(conds...))}
	})
}

func (db *DB) where(query interface{}, args []interface{}, group func([]clause.Expression) []clause.Expression) (tx *DB) {
	tx = db.getInstance()
	if conds := tx.Statement.BuildCondition(query, args...); len(conds) > 0 {
		tx.Statement.AddClause(clause.Where{Exprs: group(conds)})
	}
	return
}

// Order specify order when retrieve records from database
//
//	db.Order("name DESC")
//	db.Order(clause.OrderByColumn{Column: clause.Column{Name: "name"}, Desc: true})
func (db *DB) Order(value interface{}) (tx *DB) {
	tx = db.getInstance()

	switch v := value.(type) {
	case clause.OrderByColumn:
		tx.Statement.AddClause(clause.OrderBy{Columns: []clause.OrderByColumn{v}})
	case string:
		if v != "" {
			column := clause.OrderByColumn{Column: clause.Column{Name: v, Raw: true}}
			tx.Statement.AddClause(clause.OrderBy{Columns: []clause.OrderByColumn{column}})
		}
	default:
		tx.AddError(fmt.Errorf("%w: order by %v", ErrInvalidData, value))
	}
	return
}

// Limit specify the number of records to be retrieved
func (db *DB) Limit(limit int) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.AddClause(clause.Limit{Limit: &limit})
	return
}

// Offset specify the number of records to skip before starting to return the records
func (db *DB) Offset(offset int) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.AddClause(clause.Limit{Offset: offset})
	return
}

// Scopes pass current database connection to arguments `func(DB) DB`, which could be used to add conditions dynamically
//
//	func FromGermany(db *plsql.DB) *plsql.DB {
//		return db.Where("country = ?", "DE")
//	}
//
//	func Named(name string) func(db *plsql.DB) *plsql.DB {
//		return func(db *plsql.DB) *plsql.DB {
//			return db.Where("p_name = ?", name)
//		}
//	}
//
//	db.Scopes(FromGermany, Named("Albert")).Find(&users)
func (db *DB) Scopes(funcs ...func(*DB) *DB) *DB {
	for _, f := range funcs {
		db = f(db)
	}
	return db
}
