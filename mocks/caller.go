package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gorm.io/plsql"
	"gorm.io/plsql/catalog"
)

type ProcedureCaller struct {
	mock.Mock
}

func (_m *ProcedureCaller) CallProcedure(ctx context.Context, conn plsql.ConnPool, callable *catalog.Callable, args plsql.CallArguments) (interface{}, error) {
	ret := _m.Called(ctx, conn, callable, args)

	var r0 interface{}
	if rf, ok := ret.Get(0).(func(context.Context, plsql.ConnPool, *catalog.Callable, plsql.CallArguments) interface{}); ok {
		r0 = rf(ctx, conn, callable, args)
	} else {
		r0 = ret.Get(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, plsql.ConnPool, *catalog.Callable, plsql.CallArguments) error); ok {
		r1 = rf(ctx, conn, callable, args)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
