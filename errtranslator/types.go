package errtranslator

import "fmt"

// ErrTranslator maps driver errors to the constraint errors below, other errors are returned unchanged
type ErrTranslator interface {
	Translate(err error) error
}

// ErrDuplicatedKey a unique constraint was violated
type ErrDuplicatedKey struct {
	Code    int
	Message string
}

func (e ErrDuplicatedKey) Error() string {
	return fmt.Sprintf("ORA-%05d duplicated key: %s", e.Code, e.Message)
}

// ErrForeignKeyViolated a referenced parent key was not found
type ErrForeignKeyViolated struct {
	Code    int
	Message string
}

func (e ErrForeignKeyViolated) Error() string {
	return fmt.Sprintf("ORA-%05d foreign key violated: %s", e.Code, e.Message)
}

var _ ErrTranslator = (*OracleErrTranslator)(nil)
