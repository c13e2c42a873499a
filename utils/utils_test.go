package utils

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileWithLineNum(t *testing.T) {
	file := FileWithLineNum()
	assert.True(t, strings.Contains(file, "utils_test.go:"), file)
}

func TestToCamel(t *testing.T) {
	assert.Equal(t, "ResetPassword", ToCamel("reset_password"))
	assert.Equal(t, "Salute", ToCamel("salute"))
	assert.Equal(t, "SendWelcomeEmail", ToCamel("send-welcome email"))
}

func TestToString(t *testing.T) {
	name := "Alice"
	assert.Equal(t, "Alice", ToString(&name))
	assert.Equal(t, "42", ToString(int64(42)))
	assert.Equal(t, "bytes", ToString([]byte("bytes")))
	assert.Equal(t, "", ToString(sql.NullString{}))
	assert.Equal(t, "valid", ToString(sql.NullString{String: "valid", Valid: true}))
	assert.Equal(t, "", ToString((*string)(nil)))
}
