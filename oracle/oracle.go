package oracle

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	go_ora "github.com/sijms/go-ora/v2"

	"gorm.io/plsql"
	"gorm.io/plsql/callbacks"
	"gorm.io/plsql/catalog"
	"gorm.io/plsql/clause"
	"gorm.io/plsql/errtranslator"
	"gorm.io/plsql/logger"
)

// DefaultDriverName go-ora driver name
const DefaultDriverName = "oracle"

type Config struct {
	DriverName string
	DSN        string
	// Conn existing connection pool, DSN is ignored when set
	Conn plsql.ConnPool
}

type Dialector struct {
	*Config
}

// Open opens dsn, an oracle:// url as built by BuildURL
func Open(dsn string) plsql.Dialector {
	return &Dialector{Config: &Config{DSN: dsn}}
}

func New(config Config) plsql.Dialector {
	return &Dialector{Config: &config}
}

// BuildURL builds the connection url of a service
//
//	oracle.BuildURL("localhost", 1521, "XEPDB1", "scott", "tiger", nil)
func BuildURL(server string, port int, service, user, password string, options map[string]string) string {
	return go_ora.BuildUrl(server, port, service, user, password, options)
}

func (dialector Dialector) Name() string {
	return "oracle"
}

func (dialector Dialector) Initialize(db *plsql.DB) (err error) {
	if dialector.DriverName == "" {
		dialector.DriverName = DefaultDriverName
	}

	if dialector.Conn != nil {
		db.ConnPool = dialector.Conn
	} else {
		if db.ConnPool, err = sql.Open(dialector.DriverName, dialector.DSN); err != nil {
			return err
		}
	}

	callbacks.RegisterDefaultCallbacks(db, &callbacks.Config{})
	return nil
}

// BindVarTo writes :N, N the position of v among the statement's vars
func (dialector Dialector) BindVarTo(writer clause.Writer, stmt *plsql.Statement, v interface{}) {
	writer.WriteByte(':')
	writer.WriteString(strconv.Itoa(len(stmt.Vars)))
}

// QuoteTo writes identifiers unquoted, Oracle folds them to upper case
func (dialector Dialector) QuoteTo(writer clause.Writer, str string) {
	writer.WriteString(str)
}

func (dialector Dialector) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, logger.OraclePlaceholder, `'`, vars...)
}

// Catalog finds callables with the dialector's connection
func (dialector Dialector) Catalog(db *plsql.DB) catalog.Finder {
	return catalog.OracleFinder{Conn: db.ConnPool}
}

// Translate translates constraint violations into plsql errors
func (dialector Dialector) Translate(err error) error {
	translated := (&errtranslator.OracleErrTranslator{}).Translate(err)

	var duplicated errtranslator.ErrDuplicatedKey
	if errors.As(translated, &duplicated) {
		return fmt.Errorf("%w: %s", plsql.ErrDuplicatedKey, duplicated.Message)
	}

	var violated errtranslator.ErrForeignKeyViolated
	if errors.As(translated, &violated) {
		return fmt.Errorf("%w: %s", plsql.ErrForeignKeyViolated, violated.Message)
	}
	return err
}
