package plsql

import (
	"fmt"
	"reflect"

	"gorm.io/plsql/clause"
	"gorm.io/plsql/schema"
)

// Related scopes the query to records of the model referencing owner through foreignKey, the
// referenced field defaults to owner's primary key
//
//	// SELECT * FROM TABLE(POSTS_PKG.FIND_POSTS_BY_USER_ID(:p_user_id)) FPBUI
//	db.Model(&Post{}).Related(&user, "p_user_id").Find(&posts)
//
// The key is bound to a pipelined function argument as it is, not cast to the argument's type
func (db *DB) Related(owner interface{}, foreignKey string, references ...string) (tx *DB) {
	tx = db.getInstance()

	s, err := schema.Parse(owner, tx.cacheStore, tx.NamingStrategy)
	if err != nil {
		tx.AddError(err)
		return
	}

	field := s.PrioritizedPrimaryField
	if len(references) > 0 {
		if field = s.LookUpField(references[0]); field == nil {
			tx.AddError(fmt.Errorf("%w: unknown reference %s of %s", ErrInvalidData, references[0], s))
			return
		}
	}

	if field == nil {
		tx.AddError(ErrPrimaryKeyRequired)
		return
	}

	value, _ := field.ValueOf(reflect.ValueOf(owner))
	tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: foreignKey}, Value: RawArgument(value)},
	}})
	return
}
