package plsql

import (
	"database/sql"
	"reflect"
	"sort"
	"strings"

	"gorm.io/plsql/clause"
	"gorm.io/plsql/schema"
)

// Create creates value, through the class's create procedure when one is registered
func (db *DB) Create(value interface{}) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.Dest = value
	return tx.callbacks.Create().Execute(tx)
}

// Save creates new records and updates persisted ones
func (db *DB) Save(value interface{}) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.Dest = value

	if record := recordOf(value); record != nil && record.IsNewRecord() {
		return tx.callbacks.Create().Execute(tx)
	}

	if s, err := schema.Parse(value, tx.cacheStore, tx.NamingStrategy); err == nil && s.PrioritizedPrimaryField != nil {
		reflectValue := reflect.Indirect(reflect.ValueOf(value))
		if reflectValue.Kind() == reflect.Struct {
			if _, isZero := s.PrioritizedPrimaryField.ValueOf(reflectValue); isZero {
				return tx.callbacks.Create().Execute(tx)
			}
		}
	}

	return tx.callbacks.Update().Execute(tx)
}

// First finds the first record ordered by primary key that match given conditions
func (db *DB) First(dest interface{}, conds ...interface{}) (tx *DB) {
	tx = db.Limit(1).Order(clause.OrderByColumn{
		Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey},
	})
	if len(conds) > 0 {
		if exprs := tx.Statement.BuildCondition(conds[0], conds[1:]...); len(exprs) > 0 {
			tx.Statement.AddClause(clause.Where{Exprs: exprs})
		}
	}
	tx.Statement.RaiseErrorOnNotFound = true
	tx.Statement.Dest = dest
	return tx.callbacks.Query().Execute(tx)
}

// Take finds a record that match given conditions, the order will depend on the database implementation
func (db *DB) Take(dest interface{}, conds ...interface{}) (tx *DB) {
	tx = db.Limit(1)
	if len(conds) > 0 {
		if exprs := tx.Statement.BuildCondition(conds[0], conds[1:]...); len(exprs) > 0 {
			tx.Statement.AddClause(clause.Where{Exprs: exprs})
		}
	}
	tx.Statement.RaiseErrorOnNotFound = true
	tx.Statement.Dest = dest
	return tx.callbacks.Query().Execute(tx)
}

// Find finds all records matching given conditions
func (db *DB) Find(dest interface{}, conds ...interface{}) (tx *DB) {
	tx = db.getInstance()
	if len(conds) > 0 {
		if exprs := tx.Statement.BuildCondition(conds[0], conds[1:]...); len(exprs) > 0 {
			tx.Statement.AddClause(clause.Where{Exprs: exprs})
		}
	}
	tx.Statement.Dest = dest
	return tx.callbacks.Query().Execute(tx)
}

// Delete deletes value, through the class's destroy procedure when one is registered
func (db *DB) Delete(value interface{}, conds ...interface{}) (tx *DB) {
	tx = db.getInstance()
	if len(conds) > 0 {
		if exprs := tx.Statement.BuildCondition(conds[0], conds[1:]...); len(exprs) > 0 {
			tx.Statement.AddClause(clause.Where{Exprs: exprs})
		}
	}
	tx.Statement.Dest = value
	return tx.callbacks.Delete().Execute(tx)
}

// Reload reloads value from the database, records loaded through a pipelined function call it
// again with the arguments they were found by, merged with options, filtering on the primary key.
// Options that are not arguments of the function filter the returned rows.
//
//	db.Where("p_name = ?", "Albert").First(&user)
//	db.Reload(&user)
//	// SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN WHERE FUBN.id = :2 FETCH NEXT 1 ROWS ONLY
func (db *DB) Reload(value interface{}, options ...map[string]interface{}) (tx *DB) {
	tx = db.getInstance()

	reflectValue := reflect.ValueOf(value)
	if reflectValue.Kind() != reflect.Ptr || reflectValue.IsNil() || reflectValue.Elem().Kind() != reflect.Struct {
		tx.AddError(ErrInvalidValue)
		return
	}

	s, err := schema.Parse(value, tx.cacheStore, tx.NamingStrategy)
	if err != nil {
		tx.AddError(err)
		return
	}

	pkField := s.PrioritizedPrimaryField
	if pkField == nil {
		tx.AddError(ErrPrimaryKeyRequired)
		return
	}

	pk, isZero := pkField.ValueOf(reflectValue)
	if isZero {
		tx.AddError(ErrPrimaryKeyRequired)
		return
	}

	arguments := map[string]interface{}{}
	record := recordOf(value)
	if record != nil {
		for _, arg := range record.foundByArguments {
			arguments[arg.Name] = arg.Value
		}
	}
	for _, opts := range options {
		for k, v := range opts {
			for name := range arguments {
				if strings.EqualFold(name, k) {
					delete(arguments, name)
				}
			}
			arguments[k] = v
		}
	}

	var (
		class   = tx.classOf(s.ModelType)
		fresh   = reflect.New(s.ModelType)
		foundBy []sql.NamedArg
		query   = tx.Session(&Session{NewDB: true}).Model(fresh.Interface())
	)

	if class.IsPipelined() && len(arguments) > 0 {
		for _, arg := range class.PipelinedFunction().Arguments {
			if v, ok := lookupArgument(arguments, arg.Name); ok {
				query = query.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: arg.Name}, Value: v})
				foundBy = append(foundBy, sql.Named(arg.Name, v))
			}
		}
	}

	filters := make([]string, 0, len(arguments))
	for k := range arguments {
		if !class.IsPipelined() {
			filters = append(filters, k)
		} else if _, ok := class.PipelinedFunction().Argument(k); !ok {
			filters = append(filters, k)
		}
	}
	sort.Strings(filters)
	for _, k := range filters {
		query = query.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: k}, Value: arguments[k]})
	}

	result := query.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: pkField.DBName}, Value: pk}).Take(fresh.Interface())
	tx.RowsAffected = result.RowsAffected
	if result.Error != nil {
		tx.AddError(result.Error)
		return
	}

	reflectValue.Elem().Set(fresh.Elem())
	if record := recordOf(value); record != nil {
		record.markPersisted(foundBy)
	}
	return
}

func lookupArgument(arguments map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := arguments[name]; ok {
		return v, true
	}
	for k, v := range arguments {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}
