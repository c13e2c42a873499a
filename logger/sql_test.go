package logger_test

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/jinzhu/now"
	"github.com/stretchr/testify/assert"

	"gorm.io/plsql/logger"
)

type ExampleStruct struct {
	Name string
	Val  string
}

func (s ExampleStruct) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func TestExplainSQL(t *testing.T) {
	type role string
	var (
		tt     = now.MustParse("2020-02-23 11:10:10")
		myrole = role("admin")
		es     = ExampleStruct{Name: "test", Val: "test"}
	)

	results := []struct {
		SQL         string
		Placeholder *regexp.Regexp
		Vars        []interface{}
		Result      string
	}{
		{
			SQL:         "INSERT INTO users (name, age, height, active, created_at, deleted_at, role) VALUES (?, ?, ?, ?, ?, ?, ?)",
			Placeholder: nil,
			Vars:        []interface{}{"jinzhu?", 1, 999.99, true, tt, nil, myrole},
			Result:      `INSERT INTO users (name, age, height, active, created_at, deleted_at, role) VALUES ('jinzhu?', 1, 999.99, true, '2020-02-23 11:10:10', NULL, 'admin')`,
		},
		{
			SQL:         "SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN WHERE FUBN.surname = :2 AND FUBN.created_at < :3",
			Placeholder: logger.OraclePlaceholder,
			Vars:        []interface{}{sql.Named("p_name", "Alice"), "O'Hara", &tt},
			Result:      `SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME('Alice')) FUBN WHERE FUBN.surname = 'O''Hara' AND FUBN.created_at < '2020-02-23 11:10:10'`,
		},
		{
			SQL:         "BEGIN :result := USERS_PKG.CREATE_USER(p_name => :p_name, p_data => :p_data); END;",
			Placeholder: logger.OraclePlaceholder,
			Vars:        []interface{}{0, "Bob", es},
			Result:      `BEGIN 0 := USERS_PKG.CREATE_USER(p_name => 'Bob', p_data => '{"Name":"test","Val":"test"}'); END;`,
		},
		{
			SQL:         "SELECT * FROM users WHERE id = :1 AND name = :2",
			Placeholder: logger.OraclePlaceholder,
			Vars:        []interface{}{[]byte("1")},
			Result:      `SELECT * FROM users WHERE id = '1' AND name = :2`,
		},
	}

	for idx, r := range results {
		assert.Equal(t, r.Result, logger.ExplainSQL(r.SQL, r.Placeholder, `'`, r.Vars...), "explain #%d", idx)
	}
}
