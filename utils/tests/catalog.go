package tests

import (
	"context"

	"gorm.io/plsql/catalog"
)

// Catalog in memory callable finder keyed by qualified name, PACKAGE.NAME or NAME
type Catalog map[string]*catalog.Callable

func (c Catalog) Find(ctx context.Context, name catalog.Name) (*catalog.Callable, error) {
	if callable, ok := c[name.Qualified()]; ok {
		copied := *callable
		copied.Arguments = append([]catalog.Argument(nil), callable.Arguments...)
		if callable.Return != nil {
			ret := *callable.Return
			ret.Fields = append([]catalog.Field(nil), callable.Return.Fields...)
			copied.Return = &ret
		}
		return &copied, nil
	}
	return nil, nil
}

func pipelined(pkg, name string, args []catalog.Argument, fields ...catalog.Field) *catalog.Callable {
	return &catalog.Callable{
		Package:   pkg,
		Name:      name,
		Overloads: 1,
		Arguments: args,
		Return:    &catalog.Return{DataType: "TABLE", Fields: fields},
	}
}

// NewCatalog returns the callables of the users and posts packages
func NewCatalog() Catalog {
	return Catalog{
		"USERS_PKG.FIND_USERS_BY_NAME": pipelined("users_pkg", "find_users_by_name",
			[]catalog.Argument{{Name: "p_name", Position: 1, DataType: "VARCHAR2", InOut: "IN"}},
			catalog.Field{Name: "id", Position: 1, DataType: "NUMBER"},
			catalog.Field{Name: "name", Position: 2, DataType: "VARCHAR2"},
			catalog.Field{Name: "surname", Position: 3, DataType: "VARCHAR2"},
			catalog.Field{Name: "country", Position: 4, DataType: "VARCHAR2"},
		),
		"USERS_PKG.GET_USER_BY_NAME": pipelined("users_pkg", "get_user_by_name",
			[]catalog.Argument{
				{Name: "p_surname", Position: 2, DataType: "VARCHAR2", InOut: "IN", Defaulted: true},
				{Name: "p_name", Position: 1, DataType: "VARCHAR2", InOut: "IN"},
			},
			catalog.Field{Name: "name", Position: 2, DataType: "VARCHAR2"},
			catalog.Field{Name: "id", Position: 1, DataType: "NUMBER"},
			catalog.Field{Name: "surname", Position: 3, DataType: "VARCHAR2"},
			catalog.Field{Name: "country", Position: 4, DataType: "VARCHAR2"},
		),
		"USERS_PKG.FIND_USERS": &catalog.Callable{
			Package:   "users_pkg",
			Name:      "find_users",
			Overloads: 2,
			Arguments: []catalog.Argument{{Name: "p_name", Position: 1, DataType: "VARCHAR2", InOut: "IN"}},
			Return:    &catalog.Return{DataType: "TABLE", Fields: []catalog.Field{{Name: "id", Position: 1, DataType: "NUMBER"}}},
		},
		"USERS_PKG.COUNT_USERS": &catalog.Callable{
			Package:   "users_pkg",
			Name:      "count_users",
			Overloads: 1,
			Return:    &catalog.Return{DataType: "NUMBER"},
		},
		"USERS_PKG.CREATE_USER": &catalog.Callable{
			Package:   "users_pkg",
			Name:      "create_user",
			Overloads: 1,
			Arguments: []catalog.Argument{
				{Name: "p_name", Position: 1, DataType: "VARCHAR2", InOut: "IN"},
				{Name: "p_surname", Position: 2, DataType: "VARCHAR2", InOut: "IN"},
				{Name: "p_country", Position: 3, DataType: "VARCHAR2", InOut: "IN", Defaulted: true},
			},
			Return: &catalog.Return{DataType: "NUMBER"},
		},
		"USERS_PKG.UPDATE_USER": &catalog.Callable{
			Package:   "users_pkg",
			Name:      "update_user",
			Overloads: 1,
			Arguments: []catalog.Argument{
				{Name: "p_id", Position: 1, DataType: "NUMBER", InOut: "IN"},
				{Name: "p_name", Position: 2, DataType: "VARCHAR2", InOut: "IN"},
			},
		},
		"USERS_PKG.DESTROY_USER": &catalog.Callable{
			Package:   "users_pkg",
			Name:      "destroy_user",
			Overloads: 1,
			Arguments: []catalog.Argument{{Name: "p_id", Position: 1, DataType: "NUMBER", InOut: "IN"}},
		},
		"USERS_PKG.SALUTE": &catalog.Callable{
			Package:   "users_pkg",
			Name:      "salute",
			Overloads: 1,
			Arguments: []catalog.Argument{{Name: "p_name", Position: 1, DataType: "VARCHAR2", InOut: "IN"}},
			Return:    &catalog.Return{DataType: "VARCHAR2"},
		},
		"POSTS_PKG.FIND_POSTS_BY_USER_ID": pipelined("posts_pkg", "find_posts_by_user_id",
			[]catalog.Argument{{Name: "p_user_id", Position: 1, DataType: "NUMBER", InOut: "IN"}},
			catalog.Field{Name: "id", Position: 1, DataType: "NUMBER"},
			catalog.Field{Name: "user_id", Position: 2, DataType: "NUMBER"},
			catalog.Field{Name: "title", Position: 3, DataType: "VARCHAR2"},
			catalog.Field{Name: "created_at", Position: 4, DataType: "DATE"},
		),
		"FIND_USERS_BY_COUNTRY": pipelined("", "find_users_by_country",
			[]catalog.Argument{
				{Name: "p_country", Position: 1, DataType: "VARCHAR2", InOut: "IN"},
				{Name: "p_limit", Position: 2, DataType: "NUMBER", InOut: "IN"},
			},
			catalog.Field{Name: "id", Position: 1, DataType: "NUMBER"},
			catalog.Field{Name: "name", Position: 2, DataType: "VARCHAR2"},
			catalog.Field{Name: "surname", Position: 3, DataType: "VARCHAR2"},
			catalog.Field{Name: "country", Position: 4, DataType: "VARCHAR2"},
		),
	}
}
