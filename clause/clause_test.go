package clause_test

import (
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"gorm.io/plsql"
	"gorm.io/plsql/clause"
	"gorm.io/plsql/schema"
	"gorm.io/plsql/utils/tests"
)

func newStatement(t *testing.T) *plsql.Statement {
	db, _ := tests.Open(t)
	user, err := schema.Parse(&tests.User{}, &sync.Map{}, db.NamingStrategy)
	if err != nil {
		t.Fatalf("failed to parse user, got error %v", err)
	}

	return &plsql.Statement{DB: db, Table: user.Table, Schema: user, Clauses: map[string]clause.Clause{}}
}

func checkBuildClauses(t *testing.T, clauses []clause.Interface, result string, vars []interface{}) {
	var (
		buildNames    []string
		buildNamesMap = map[string]bool{}
		stmt          = newStatement(t)
	)

	for _, c := range clauses {
		if _, ok := buildNamesMap[c.Name()]; !ok {
			buildNames = append(buildNames, c.Name())
			buildNamesMap[c.Name()] = true
		}

		stmt.AddClause(c)
	}

	stmt.Build(buildNames...)

	assert.Equal(t, result, stmt.SQL.String())
	assert.Equal(t, vars, stmt.Vars)
}

func TestClauses(t *testing.T) {
	ten := 10
	results := []struct {
		Clauses []clause.Interface
		Result  string
		Vars    []interface{}
	}{
		{
			[]clause.Interface{clause.Select{}, clause.From{}, clause.Where{Exprs: []clause.Expression{clause.Eq{Column: clause.PrimaryColumn, Value: "1"}}}},
			"SELECT * FROM users WHERE users.id = :1", []interface{}{"1"},
		},
		{
			[]clause.Interface{clause.Select{Distinct: true, Columns: []clause.Column{{Table: clause.CurrentTable, Name: "name"}}}, clause.From{}},
			"SELECT DISTINCT users.name FROM users", nil,
		},
		{
			[]clause.Interface{clause.Select{}, clause.From{}, clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Name: "name"}, Value: "Albert"},
				clause.Or(clause.Eq{Column: clause.Column{Name: "surname"}, Value: []string{"Curie", "Bohr"}}),
			}}},
			"SELECT * FROM users WHERE name = :1 OR surname IN (:2,:3)", []interface{}{"Albert", "Curie", "Bohr"},
		},
		{
			[]clause.Interface{clause.Select{}, clause.From{}, clause.Where{Exprs: []clause.Expression{
				clause.Not(clause.Eq{Column: clause.Column{Name: "name"}, Value: "Albert"}, clause.Eq{Column: clause.Column{Name: "country"}, Value: nil}),
			}}},
			"SELECT * FROM users WHERE (name <> :1 AND country IS NOT NULL)", []interface{}{"Albert"},
		},
		{
			[]clause.Interface{clause.Select{}, clause.From{}, clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.PrimaryColumn, Desc: true}}}, clause.Limit{Limit: &ten, Offset: 20}},
			"SELECT * FROM users ORDER BY users.id DESC OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY", nil,
		},
		{
			[]clause.Interface{clause.Insert{}, clause.Values{Columns: []clause.Column{{Name: "name"}}, Values: [][]interface{}{{"Albert"}, {"Marie"}}}},
			"INSERT INTO users (name) VALUES (:1),(:2)", []interface{}{"Albert", "Marie"},
		},
		{
			[]clause.Interface{clause.Update{}, clause.Set{{Column: clause.Column{Name: "name"}, Value: "Albert"}}, clause.Where{Exprs: []clause.Expression{clause.Eq{Column: clause.PrimaryColumn, Value: 1}}}},
			"UPDATE users SET name=:1 WHERE users.id = :2", []interface{}{"Albert", 1},
		},
		{
			[]clause.Interface{clause.Delete{}, clause.From{}, clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "country IN ?", Vars: []interface{}{[]string{"DE", "CH"}}}}}},
			"DELETE FROM users WHERE country IN (:1,:2)", []interface{}{"DE", "CH"},
		},
	}

	for idx, result := range results {
		t.Run(fmt.Sprintf("case #%v", idx), func(t *testing.T) {
			checkBuildClauses(t, result.Clauses, result.Result, result.Vars)
		})
	}
}

func TestLimitOnly(t *testing.T) {
	one := 1
	checkBuildClauses(t, []clause.Interface{clause.Limit{Limit: &one}}, "FETCH NEXT 1 ROWS ONLY", nil)
	checkBuildClauses(t, []clause.Interface{clause.Limit{Offset: 5}}, "OFFSET 5 ROWS", nil)
	checkBuildClauses(t, []clause.Interface{clause.Limit{Limit: &one}, clause.Limit{Offset: 5}}, "OFFSET 5 ROWS FETCH NEXT 1 ROWS ONLY", nil)
}

func TestTableFunction(t *testing.T) {
	results := []struct {
		Function clause.TableFunction
		Result   string
		Vars     []interface{}
	}{
		{
			clause.TableFunction{Name: "USERS_PKG.FIND_USERS_BY_NAME", Alias: "FUBN", Arguments: []sql.NamedArg{sql.Named("p_name", "Albert")}},
			"TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN", []interface{}{"Albert"},
		},
		{
			clause.TableFunction{Name: "USERS_PKG.GET_USER_BY_NAME", Arguments: []sql.NamedArg{sql.Named("p_name", "Albert")}, Named: true},
			"TABLE(USERS_PKG.GET_USER_BY_NAME(p_name => :p_name))", []interface{}{"Albert"},
		},
		{
			clause.TableFunction{Name: "FIND_ALL", Alias: "FA"},
			"TABLE(FIND_ALL()) FA", nil,
		},
	}

	for idx, result := range results {
		t.Run(fmt.Sprintf("case #%v", idx), func(t *testing.T) {
			stmt := newStatement(t)
			result.Function.Build(stmt)
			assert.Equal(t, result.Result, stmt.SQL.String())
			assert.Equal(t, result.Vars, stmt.Vars)
		})
	}

	assert.Equal(t, "TABLE(USERS_PKG.GET_USER_BY_NAME(:p_name,:p_surname))", clause.CallText("USERS_PKG.GET_USER_BY_NAME", []string{"p_name", "p_surname"}))
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "p_name", clause.ColumnName("p_name"))
	assert.Equal(t, "p_name", clause.ColumnName("FUBN.p_name"))
	assert.Equal(t, "p_name", clause.ColumnName(clause.Column{Table: clause.CurrentTable, Name: "p_name"}))
	assert.Equal(t, "", clause.ColumnName(42))
}
