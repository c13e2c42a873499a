package plsql_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/plsql"
	"gorm.io/plsql/catalog"
	"gorm.io/plsql/utils/tests"
)

func columnNames(t *testing.T, class *plsql.Class) []string {
	t.Helper()

	columns, err := class.Columns()
	require.NoError(t, err)

	names := make([]string, len(columns))
	for idx, column := range columns {
		names[idx] = column.Name
	}
	return names
}

func TestSetPipelinedFunction(t *testing.T) {
	db, _ := tests.OpenWithCatalog(t)
	class := db.Class(&tests.User{})

	require.NoError(t, class.SetPipelinedFunction("users_pkg.find_users_by_name"))
	assert.True(t, class.IsPipelined())
	assert.Equal(t, "USERS_PKG.FIND_USERS_BY_NAME", class.TableName())
	assert.Equal(t, "FUBN", class.Alias())
	assert.Equal(t, []string{"id", "name", "surname", "country", "p_name"}, columnNames(t, class))

	names, err := class.PipelinedArgumentNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"p_name"}, names)

	text, err := class.TableNameWithArguments()
	require.NoError(t, err)
	assert.Equal(t, "TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name))", text)

	assert.Same(t, class, db.Class(&[]tests.User{}), "classes are registered per struct type")
}

func TestSetPipelinedFunctionSortsByPosition(t *testing.T) {
	db, _ := tests.OpenWithCatalog(t)
	class := db.Class(&tests.User{})

	require.NoError(t, class.SetPipelinedFunction("users_pkg.get_user_by_name"))
	assert.Equal(t, "GUBN", class.Alias())
	assert.Equal(t, []string{"id", "name", "surname", "country", "p_name", "p_surname"}, columnNames(t, class))

	args, err := class.PipelinedArguments()
	require.NoError(t, err)
	assert.Equal(t, "p_name", args[0].Name)
	assert.True(t, args[1].Defaulted)
}

func TestSetPipelinedFunctionInPackage(t *testing.T) {
	db, _ := tests.OpenWithCatalog(t)
	class := db.Class(&tests.User{}).SetPackage("users_pkg")

	require.NoError(t, class.SetPipelinedFunction("find_users_by_name"))
	assert.Equal(t, "USERS_PKG.FIND_USERS_BY_NAME", class.TableName())

	require.NoError(t, class.SetPipelinedFunction("find_users_by_country"), "standalone functions are found after the package")
	assert.Equal(t, "FIND_USERS_BY_COUNTRY", class.TableName())
	assert.Equal(t, "FUBC", class.Alias())
}

func TestSetPipelinedFunctionRejected(t *testing.T) {
	db, _ := tests.OpenWithCatalog(t)
	class := db.Class(&tests.User{})
	require.NoError(t, class.SetPipelinedFunction("users_pkg.find_users_by_name"))

	err := class.SetPipelinedFunction("users_pkg.find_users")
	assert.ErrorIs(t, err, plsql.ErrUnsupported)
	assert.ErrorIs(t, err, catalog.ErrOverloaded)

	err = class.SetPipelinedFunction("users_pkg.count_users")
	assert.ErrorIs(t, err, plsql.ErrUnsupported)

	err = class.SetPipelinedFunction("users_pkg.missing")
	assert.ErrorIs(t, err, plsql.ErrNotFound)

	err = class.SetPipelinedFunction(&catalog.Callable{
		Name:      "find_users",
		Overloads: 2,
		Return:    &catalog.Return{DataType: "TABLE", Fields: []catalog.Field{{Name: "id", Position: 1}}},
	})
	assert.ErrorIs(t, err, plsql.ErrUnsupported)

	assert.Equal(t, "USERS_PKG.FIND_USERS_BY_NAME", class.TableName(), "rejected bindings keep the previous one")
	assert.Equal(t, "FUBN", class.Alias())
	assert.Equal(t, []string{"id", "name", "surname", "country", "p_name"}, columnNames(t, class))
}

func TestUnbind(t *testing.T) {
	db, _ := tests.OpenWithCatalog(t)
	class := db.Class(&tests.User{})
	require.NoError(t, class.SetPipelinedFunction("users_pkg.find_users_by_name"))
	require.NoError(t, class.SetPipelinedFunction(nil))

	assert.False(t, class.IsPipelined())
	assert.Equal(t, "users", class.TableName())
	assert.Equal(t, "", class.Alias())

	_, err := class.Columns()
	assert.ErrorIs(t, err, plsql.ErrUnboundAccess)
	_, err = class.PipelinedArgumentNames()
	assert.ErrorIs(t, err, plsql.ErrUnboundAccess)
	_, err = class.TableNameWithArguments()
	assert.ErrorIs(t, err, plsql.ErrUnboundAccess)

	_, cached := db.ColumnCache().Load("USERS_PKG.FIND_USERS_BY_NAME")
	assert.False(t, cached, "unbinding evicts the virtual columns")

	require.NoError(t, class.SetPipelinedFunction("users_pkg.get_user_by_name"))
	assert.Equal(t, "GUBN", class.Alias(), "alias is recomputed after rebinding")
}

func TestUnbindSharedFunction(t *testing.T) {
	db, _ := tests.OpenWithCatalog(t)
	require.NoError(t, db.Class(&tests.User{}).SetPipelinedFunction("users_pkg.find_users_by_name"))
	require.NoError(t, db.Class(&tests.Admin{}).SetPipelinedFunction("users_pkg.find_users_by_name"))

	db.Class(&tests.User{}).Unbind()
	_, cached := db.ColumnCache().Load("USERS_PKG.FIND_USERS_BY_NAME")
	assert.True(t, cached, "columns stay cached while another class is bound")

	db.Class(&tests.Admin{}).Unbind()
	_, cached = db.ColumnCache().Load("USERS_PKG.FIND_USERS_BY_NAME")
	assert.False(t, cached)
}

func TestFunctionAlias(t *testing.T) {
	cases := map[string]string{
		"find_users_by_name":    "FUBN",
		"FIND_POSTS_BY_USER_ID": "FPBUI",
		"users":                 "U",
		"_leading__underscores": "LU",
	}

	for name, alias := range cases {
		assert.Equal(t, alias, plsql.FunctionAlias(name), name)
	}
}

func TestSetPipelinedFunctionLookupFailure(t *testing.T) {
	// no catalog query is expected, the mocked connection fails it
	db, _ := tests.Open(t)

	err := db.Class(&tests.User{}).SetPipelinedFunction("users_pkg.find_users_by_name")
	assert.ErrorIs(t, err, plsql.ErrNotFound)

	var notFound *catalog.NotFoundError
	if assert.True(t, errors.As(err, &notFound)) {
		assert.Error(t, notFound.Err)
	}
	assert.False(t, db.Class(&tests.User{}).IsPipelined())
}
