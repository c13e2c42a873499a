package errtranslator

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"

	"github.com/sijms/go-ora/v2/network"
)

const (
	// UniqueConstraintCode ORA-00001: unique constraint violated
	UniqueConstraintCode = 1
	// ParentKeyNotFoundCode ORA-02291: integrity constraint violated - parent key not found
	ParentKeyNotFoundCode = 2291
	// NotTableCode ORA-04044: procedure, function, package, or type is not allowed here
	NotTableCode = 4044

	userDefinedMin = 20000
	userDefinedMax = 20999
)

var oraCodeRegexp = regexp.MustCompile(`ORA-(\d{5})`)

type OracleErrTranslator struct{}

type OracleErr struct {
	ErrCode int    `json:"ErrCode"`
	ErrMsg  string `json:"ErrMsg"`
}

// Translate translates constraint violations, user defined errors raised with
// RAISE_APPLICATION_ERROR are returned as they are
func (o *OracleErrTranslator) Translate(err error) error {
	switch code := ErrorCode(err); code {
	case UniqueConstraintCode:
		return ErrDuplicatedKey{Code: code, Message: err.Error()}
	case ParentKeyNotFoundCode:
		return ErrForeignKeyViolated{Code: code, Message: err.Error()}
	}
	return err
}

// ErrorCode returns the ORA- code of err, 0 if err is not a database error
func ErrorCode(err error) int {
	if err == nil {
		return 0
	}

	var oracleErr *network.OracleError
	if errors.As(err, &oracleErr) {
		return oracleErr.ErrCode
	}

	if parsedErr, marshalErr := json.Marshal(err); marshalErr == nil {
		var e OracleErr
		if json.Unmarshal(parsedErr, &e) == nil && e.ErrCode != 0 {
			return e.ErrCode
		}
	}

	if matches := oraCodeRegexp.FindStringSubmatch(err.Error()); len(matches) == 2 {
		code, _ := strconv.Atoi(matches[1])
		return code
	}
	return 0
}

// IsUserDefined reports whether err was raised by application code in the range ORA-20000..ORA-20999
func IsUserDefined(err error) bool {
	code := ErrorCode(err)
	return code >= userDefinedMin && code <= userDefinedMax
}

// IsNotTable reports whether err is ORA-04044, raised when a callable is queried as a table
func IsNotTable(err error) bool {
	return ErrorCode(err) == NotTableCode
}
