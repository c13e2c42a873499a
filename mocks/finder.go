package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gorm.io/plsql/catalog"
)

type Finder struct {
	mock.Mock
}

func (_m *Finder) Find(ctx context.Context, name catalog.Name) (*catalog.Callable, error) {
	ret := _m.Called(ctx, name)

	var r0 *catalog.Callable
	if rf, ok := ret.Get(0).(func(context.Context, catalog.Name) *catalog.Callable); ok {
		r0 = rf(ctx, name)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*catalog.Callable)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, catalog.Name) error); ok {
		r1 = rf(ctx, name)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
