package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound callable doesn't exist
	ErrNotFound = errors.New("callable not found")
	// ErrUnsupported callable can't be used the way it was asked for
	ErrUnsupported = errors.New("unsupported callable")
	// ErrOverloaded callable has multiple signatures, which are not supported
	ErrOverloaded = fmt.Errorf("%w: overloaded callables have multiple signatures", ErrUnsupported)
	// ErrInvalidName callable name can't be parsed
	ErrInvalidName = errors.New("invalid callable name")
)

// NotFoundError reports a callable that could not be resolved, Err is the lookup failure if any
type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrNotFound, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrNotFound, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
