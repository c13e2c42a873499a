package plsql

import (
	"errors"
	"fmt"

	"gorm.io/plsql/catalog"
	"gorm.io/plsql/errtranslator"
	"gorm.io/plsql/logger"
)

var (
	// ErrRecordNotFound record not found error
	ErrRecordNotFound = logger.ErrRecordNotFound
	// ErrNotImplemented not implemented
	ErrNotImplemented = errors.New("not implemented")
	// ErrPrimaryKeyRequired primary keys required
	ErrPrimaryKeyRequired = errors.New("primary key required")
	// ErrModelValueRequired model value required
	ErrModelValueRequired = errors.New("model value required")
	// ErrMissingWhereClause missing where clause
	ErrMissingWhereClause = errors.New("WHERE conditions required")
	// ErrInvalidData unsupported data
	ErrInvalidData = errors.New("unsupported data")
	// ErrInvalidValue invalid value
	ErrInvalidValue = errors.New("invalid value, should be pointer to struct or slice")
	// ErrDuplicatedKey occurs when there is a unique key constraint violation
	ErrDuplicatedKey = errors.New("duplicated key not allowed")
	// ErrForeignKeyViolated occurs when there is a foreign key constraint violation
	ErrForeignKeyViolated = errors.New("violates foreign key constraint")

	// ErrNotFound callable doesn't exist
	ErrNotFound = catalog.ErrNotFound
	// ErrUnsupported callable can't be bound, overloaded callables for example
	ErrUnsupported = catalog.ErrUnsupported
	// ErrUnboundAccess operation requires a pipelined function bound to the model
	ErrUnboundAccess = errors.New("no pipelined function bound")
	// ErrUnboundArgument a required argument of the pipelined function has no value
	ErrUnboundArgument = errors.New("pipelined function argument not bound")
	// ErrUnknownProcedureMethod no procedure registered for the action
	ErrUnknownProcedureMethod = errors.New("unknown procedure method")
	// ErrReadOnlyVirtualTable pipelined functions can't be written without procedures
	ErrReadOnlyVirtualTable = errors.New("pipelined function is read only, register a procedure")
)

// CannotFetchIDError create procedure result can't be interpreted as a primary key
type CannotFetchIDError struct {
	Procedure string
	Result    interface{}
}

func (e *CannotFetchIDError) Error() string {
	return fmt.Sprintf("couldn't fetch primary key from create procedure (%s) result: %#v", e.Procedure, e.Result)
}

// CallError failure raised by the database while calling a stored procedure
type CallError struct {
	Procedure string
	Code      int
	Err       error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("calling %s: %v", e.Procedure, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// translateCallError keeps errors raised by application code as they are, other database
// failures are wrapped with their code
func (db *DB) translateCallError(procedure string, err error) error {
	if err == nil || errtranslator.IsUserDefined(err) {
		return err
	}

	code := errtranslator.ErrorCode(err)
	if db.TranslateError {
		if translator, ok := db.Dialector.(ErrorTranslator); ok {
			err = translator.Translate(err)
		}
	}
	return &CallError{Procedure: procedure, Code: code, Err: err}
}
