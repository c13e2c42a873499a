package plsql_test

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/plsql"
	"gorm.io/plsql/clause"
	"gorm.io/plsql/utils/tests"
)

var userColumns = []string{"id", "name", "surname", "country"}

func openUsers(t *testing.T) (*plsql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := tests.OpenWithCatalog(t)
	require.NoError(t, db.Class(&tests.User{}).SetPipelinedFunction("users_pkg.find_users_by_name"))
	return db, mock
}

func TestBindArgumentsToSQL(t *testing.T) {
	db, _ := openUsers(t)
	require.NoError(t, db.Class(&tests.Post{}).SetPipelinedFunction("posts_pkg.find_posts_by_user_id"))

	results := []struct {
		Name  string
		Query func(tx *plsql.DB) *plsql.DB
		SQL   string
	}{
		{
			"partition",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Where("p_name = ?", "Albert").Where("surname = ?", "Einstein").Find(&[]tests.User{})
			},
			"SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME('Albert')) FUBN WHERE FUBN.surname = 'Einstein'",
		},
		{
			"map",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Where(map[string]interface{}{"p_name": "Albert", "country": "DE"}).Find(&[]tests.User{})
			},
			"SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME('Albert')) FUBN WHERE FUBN.country = 'DE'",
		},
		{
			"alias qualified",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Model(&tests.User{}).Where("FUBN.p_name = ?", "Albert").Find(&[]tests.User{})
			},
			"SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME('Albert')) FUBN",
		},
		{
			"raw filters",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Where("p_name = ?", "Albert").Where("country IN (?, ?)", "DE", "CH").Find(&[]tests.User{})
			},
			"SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME('Albert')) FUBN WHERE country IN ('DE', 'CH')",
		},
		{
			"null",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Where(map[string]interface{}{"p_name": nil}).Find(&[]tests.User{})
			},
			"SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(NULL)) FUBN",
		},
		{
			"last binding wins",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Where("p_name = ?", "Albert").Where("p_name = ?", "Marie").Find(&[]tests.User{})
			},
			"SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME('Marie')) FUBN",
		},
		{
			"select order limit",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Select("name", "surname").Where("p_name = ?", "Albert").Order("name DESC").Limit(10).Offset(20).Find(&[]tests.User{})
			},
			"SELECT FUBN.name,FUBN.surname FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME('Albert')) FUBN ORDER BY name DESC OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY",
		},
		{
			"first",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Where("p_name = ?", "Albert").First(&tests.User{})
			},
			"SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME('Albert')) FUBN ORDER BY FUBN.id FETCH NEXT 1 ROWS ONLY",
		},
		{
			"cast",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Where("p_user_id = ?", "42").Find(&[]tests.Post{})
			},
			"SELECT * FROM TABLE(POSTS_PKG.FIND_POSTS_BY_USER_ID(42)) FPBUI",
		},
		{
			"raw argument",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Where("p_user_id = ?", plsql.RawArgument("42")).Find(&[]tests.Post{})
			},
			"SELECT * FROM TABLE(POSTS_PKG.FIND_POSTS_BY_USER_ID('42')) FPBUI",
		},
		{
			"related",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Model(&tests.Post{}).Related(&tests.User{ID: 7}, "p_user_id").Find(&[]tests.Post{})
			},
			"SELECT * FROM TABLE(POSTS_PKG.FIND_POSTS_BY_USER_ID(7)) FPBUI",
		},
		{
			"table function call",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Table("TABLE(users_pkg.find_users_by_name(?))", "Albert").Where("surname = ?", "Einstein").Find(&[]map[string]interface{}{})
			},
			"SELECT * FROM TABLE(users_pkg.find_users_by_name('Albert')) FUBN WHERE FUBN.surname = 'Einstein'",
		},
		{
			"unbound model",
			func(tx *plsql.DB) *plsql.DB {
				return tx.Where("code = ?", "DE").Find(&[]tests.Country{})
			},
			"SELECT * FROM countries WHERE countries.code = 'DE'",
		},
	}

	for _, result := range results {
		t.Run(result.Name, func(t *testing.T) {
			assert.Equal(t, result.SQL, db.ToSQL(result.Query))
		})
	}
}

func TestBindArgumentsDefaultedArguments(t *testing.T) {
	db, _ := tests.OpenWithCatalog(t)
	require.NoError(t, db.Class(&tests.User{}).SetPipelinedFunction("users_pkg.get_user_by_name"))

	sql := db.ToSQL(func(tx *plsql.DB) *plsql.DB {
		return tx.Where("p_name = ?", "Albert").Find(&[]tests.User{})
	})
	assert.Equal(t, "SELECT * FROM TABLE(USERS_PKG.GET_USER_BY_NAME(p_name => 'Albert')) GUBN", sql)

	sql = db.ToSQL(func(tx *plsql.DB) *plsql.DB {
		return tx.Where(map[string]interface{}{"p_surname": "Einstein", "p_name": "Albert"}).Find(&[]tests.User{})
	})
	assert.Equal(t, "SELECT * FROM TABLE(USERS_PKG.GET_USER_BY_NAME('Albert','Einstein')) GUBN", sql)
}

func TestBindArgumentsUnbound(t *testing.T) {
	db, _ := openUsers(t)
	tx := db.Session(&plsql.Session{DryRun: true})

	var users []tests.User
	assert.ErrorIs(t, tx.Find(&users).Error, plsql.ErrUnboundArgument)
	assert.ErrorIs(t, tx.Or("p_name = ?", "Albert").Find(&users).Error, plsql.ErrUnboundArgument, "disjunctions are never bound")
	assert.ErrorIs(t, tx.Not("p_name = ?", "Albert").Find(&users).Error, plsql.ErrUnboundArgument)
	assert.ErrorIs(t, tx.Where(map[string]interface{}{"p_name": []string{"Albert", "Marie"}}).Find(&users).Error, plsql.ErrUnboundArgument, "lists are never bound")
	assert.ErrorIs(t, tx.Where("posts.p_name = ?", "Albert").Find(&users).Error, plsql.ErrUnboundArgument, "other tables are never bound")
}

func TestBindArgumentsDisjunction(t *testing.T) {
	db, _ := openUsers(t)
	tx := db.Session(&plsql.Session{DryRun: true})

	var users []tests.User
	result := tx.Where("p_name = ?", "Albert").Or("surname = ?", "Curie").Find(&users)
	assert.ErrorIs(t, result.Error, plsql.ErrUnboundArgument)
	assert.Nil(t, result.Statement.Call)

	result = tx.Where("p_name = ?", "Albert").Where("surname = ?", "Einstein").Or("p_name = ?", "Marie").Find(&users)
	assert.ErrorIs(t, result.Error, plsql.ErrUnboundArgument)

	name := clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "p_name"}, Value: "Albert"}
	surname := clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "surname"}, Value: "Curie"}
	result = tx.Where(clause.And(name, clause.Or(surname))).Find(&users)
	assert.ErrorIs(t, result.Error, plsql.ErrUnboundArgument, "nested disjunctions are never bound")
}

func TestBindArgumentsIdempotent(t *testing.T) {
	db, _ := openUsers(t)
	scope := db.Session(&plsql.Session{DryRun: true}).Where("p_name = ?", "Albert").Session(&plsql.Session{})

	var users []tests.User
	first := scope.Where("surname = ?", "Einstein").Find(&users)
	require.NoError(t, first.Error)
	assert.Equal(t, "SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN WHERE FUBN.surname = :2", first.Statement.SQL.String())
	assert.Equal(t, []interface{}{"Albert", "Einstein"}, first.Statement.Vars)

	for i := 0; i < 2; i++ {
		again := scope.Find(&users)
		require.NoError(t, again.Error)
		assert.Equal(t, "SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN", again.Statement.SQL.String())
		assert.Equal(t, []interface{}{"Albert"}, again.Statement.Vars)
		assert.Equal(t, []sql.NamedArg{sql.Named("p_name", "Albert")}, again.Statement.Call.Arguments())
	}
}

func TestBindArgumentsChainedEqualsCombined(t *testing.T) {
	db, _ := tests.OpenWithCatalog(t)
	require.NoError(t, db.Class(&tests.User{}).SetPipelinedFunction("find_users_by_country"))
	tx := db.Session(&plsql.Session{DryRun: true})

	var users []tests.User
	chained := tx.Where(map[string]interface{}{"p_country": "DE"}).Where(map[string]interface{}{"p_limit": 5}).Find(&users)
	require.NoError(t, chained.Error)
	combined := tx.Where(map[string]interface{}{"p_country": "DE", "p_limit": 5}).Find(&users)
	require.NoError(t, combined.Error)

	assert.Equal(t, combined.Statement.SQL.String(), chained.Statement.SQL.String())
	assert.Equal(t, combined.Statement.Vars, chained.Statement.Vars)
	assert.Equal(t, combined.Statement.Call.Arguments(), chained.Statement.Call.Arguments())

	assert.Equal(t, "SELECT * FROM TABLE(FIND_USERS_BY_COUNTRY('DE',5)) FUBC", db.ToSQL(func(tx *plsql.DB) *plsql.DB {
		return tx.Where(map[string]interface{}{"p_country": "DE"}).Where(map[string]interface{}{"p_limit": 5}).Find(&[]tests.User{})
	}))
}

func TestFindTagsFoundByArguments(t *testing.T) {
	db, mock := openUsers(t)
	mock.ExpectQuery("SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN WHERE FUBN.surname = :2").
		WithArgs("Albert", "Einstein").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "Albert", "Einstein", "DE").
			AddRow(2, "Albert", "Einstein", "CH"))

	var users []tests.User
	result := db.Where("p_name = ?", "Albert").Where("surname = ?", "Einstein").Find(&users)
	require.NoError(t, result.Error)
	assert.EqualValues(t, 2, result.RowsAffected)

	require.Len(t, users, 2)
	for _, user := range users {
		assert.True(t, user.IsPersisted())
		assert.False(t, user.IsNewRecord())
		assert.Equal(t, []sql.NamedArg{sql.Named("p_name", "Albert")}, user.FoundByArguments())
	}
	assert.Equal(t, int64(2), users[1].ID)
	assert.Equal(t, "CH", users[1].Country)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFirstNotFound(t *testing.T) {
	db, mock := openUsers(t)
	mock.ExpectQuery("SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN ORDER BY FUBN.id FETCH NEXT 1 ROWS ONLY").
		WithArgs("Nobody").
		WillReturnRows(sqlmock.NewRows(userColumns))

	var user tests.User
	assert.ErrorIs(t, db.Where("p_name = ?", "Nobody").First(&user).Error, plsql.ErrRecordNotFound)
	assert.True(t, user.IsNewRecord())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReloadWithFoundByArguments(t *testing.T) {
	db, mock := openUsers(t)
	mock.ExpectQuery("SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN ORDER BY FUBN.id FETCH NEXT 1 ROWS ONLY").
		WithArgs("Albert").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "Albert", "Einstein", "DE"))

	var user tests.User
	require.NoError(t, db.Where("p_name = ?", "Albert").First(&user).Error)

	user.Surname = "changed"
	mock.ExpectQuery("SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN WHERE FUBN.id = :2 FETCH NEXT 1 ROWS ONLY").
		WithArgs("Albert", int64(1)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "Albert", "Einstein", "CH"))

	require.NoError(t, db.Reload(&user).Error)
	assert.Equal(t, "Einstein", user.Surname)
	assert.Equal(t, "CH", user.Country)
	assert.True(t, user.IsPersisted())
	assert.Equal(t, []sql.NamedArg{sql.Named("p_name", "Albert")}, user.FoundByArguments())

	mock.ExpectQuery("SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN WHERE FUBN.id = :2 FETCH NEXT 1 ROWS ONLY").
		WithArgs("Marie", int64(1)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "Marie", "Curie", "FR"))

	require.NoError(t, db.Reload(&user, map[string]interface{}{"P_NAME": "Marie"}).Error)
	assert.Equal(t, "Curie", user.Surname)
	assert.Equal(t, []sql.NamedArg{sql.Named("p_name", "Marie")}, user.FoundByArguments())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReloadFilters(t *testing.T) {
	db, mock := openUsers(t)
	mock.ExpectQuery("SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN WHERE FUBN.country = :2 AND FUBN.id = :3 FETCH NEXT 1 ROWS ONLY").
		WithArgs("Marie", "FR", int64(1)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "Marie", "Curie", "FR"))

	user := tests.User{ID: 1}
	require.NoError(t, db.Reload(&user, map[string]interface{}{"p_name": "Marie", "country": "FR"}).Error)
	assert.Equal(t, "Curie", user.Surname)
	assert.Equal(t, []sql.NamedArg{sql.Named("p_name", "Marie")}, user.FoundByArguments())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReloadNotFound(t *testing.T) {
	db, mock := openUsers(t)
	mock.ExpectQuery("SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN WHERE FUBN.id = :2 FETCH NEXT 1 ROWS ONLY").
		WithArgs("Albert", int64(3)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	user := tests.User{ID: 3, Name: "kept"}
	assert.ErrorIs(t, db.Reload(&user, map[string]interface{}{"p_name": "Albert"}).Error, plsql.ErrRecordNotFound)
	assert.Equal(t, "kept", user.Name)

	assert.ErrorIs(t, db.Reload(&tests.User{}).Error, plsql.ErrPrimaryKeyRequired)
	assert.ErrorIs(t, db.Reload(tests.User{ID: 1}).Error, plsql.ErrInvalidValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReloadTable(t *testing.T) {
	db, mock := tests.OpenWithCatalog(t)
	mock.ExpectQuery("SELECT * FROM countries WHERE countries.code = :1 AND countries.id = :2 FETCH NEXT 1 ROWS ONLY").
		WithArgs("DE", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}).AddRow(5, "DE", "Germany"))

	country := tests.Country{ID: 5}
	require.NoError(t, db.Reload(&country, map[string]interface{}{"code": "DE"}).Error)
	assert.Equal(t, "Germany", country.Name)
	assert.True(t, country.IsPersisted())
	assert.Empty(t, country.FoundByArguments())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallBinding(t *testing.T) {
	db, _ := tests.OpenWithCatalog(t)
	callable, err := db.Resolver().Resolve(db.Statement.Context, "users_pkg.get_user_by_name")
	require.NoError(t, err)

	binding := plsql.NewCallBinding(callable)
	_, err = binding.Expression("GUBN")
	assert.ErrorIs(t, err, plsql.ErrUnboundArgument)

	assert.False(t, binding.Bind("surname", "Einstein"))
	assert.True(t, binding.Bind("P_SURNAME", "Einstein"))
	assert.True(t, binding.Bind("p_name", plsql.RawArgument("Albert")))
	assert.Equal(t, 2, binding.Len())

	value, ok := binding.Value("p_name")
	assert.True(t, ok)
	assert.Equal(t, "Albert", value)

	fn, err := binding.Expression("GUBN")
	require.NoError(t, err)
	assert.False(t, fn.Named)
	assert.Equal(t, []sql.NamedArg{sql.Named("p_name", "Albert"), sql.Named("p_surname", "Einstein")}, fn.Arguments)
	assert.Equal(t, fn.Arguments, binding.Arguments())
}
