package plsql_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/plsql"
	"gorm.io/plsql/utils/tests"
)

func TestRecordState(t *testing.T) {
	var user tests.User
	assert.True(t, user.IsNewRecord())
	assert.False(t, user.IsPersisted())
	assert.Nil(t, user.FoundByArguments())

	plsql.MarkPersisted(&user)
	assert.True(t, user.IsPersisted())
	assert.False(t, user.IsNewRecord())

	plsql.MarkDestroyed(&user)
	assert.True(t, user.IsDestroyed())
	assert.False(t, user.IsPersisted())
	assert.False(t, user.IsNewRecord())

	users := []tests.User{{ID: 1}, {ID: 2}}
	plsql.MarkPersisted(&users)
	for _, user := range users {
		assert.True(t, user.IsPersisted())
	}
}

func TestFoundByArgumentsIsACopy(t *testing.T) {
	db, dbmock := openUsers(t)
	dbmock.ExpectQuery("SELECT * FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN FETCH NEXT 1 ROWS ONLY").
		WithArgs("Albert").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "Albert", "Einstein", "DE"))

	var user tests.User
	require.NoError(t, db.Take(&user, map[string]interface{}{"p_name": "Albert"}).Error)

	args := user.FoundByArguments()
	args[0].Value = "Marie"
	assert.Equal(t, "Albert", user.FoundByArguments()[0].Value)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

func TestScanIntoMaps(t *testing.T) {
	db, dbmock := openUsers(t)
	dbmock.ExpectQuery("SELECT FUBN.name FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN").
		WithArgs("Albert").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Albert").AddRow([]byte("Albert II")))

	var results []map[string]interface{}
	require.NoError(t, db.Model(&tests.User{}).Select("name").Where("p_name = ?", "Albert").Find(&results).Error)
	assert.Equal(t, []map[string]interface{}{{"name": "Albert"}, {"name": []byte("Albert II")}}, results)

	dbmock.ExpectQuery("SELECT FUBN.id FROM TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN").
		WithArgs("Marie").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(4))

	var ids []int64
	require.NoError(t, db.Model(&tests.User{}).Select("id").Where("p_name = ?", "Marie").Find(&ids).Error)
	assert.Equal(t, []int64{3, 4}, ids)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}
