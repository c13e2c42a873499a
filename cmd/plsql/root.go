package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gorm.io/plsql"
	"gorm.io/plsql/logger"
	"gorm.io/plsql/oracle"
)

const dsnEnv = "PLSQL_DSN"

type options struct {
	dsn      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "plsql",
		Short:         "Inspect and call Oracle stored procedures and pipelined functions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dsn, "dsn", os.Getenv(dsnEnv), "oracle:// connection url, defaults to $"+dsnEnv)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: silent, error, warn or info")

	cmd.AddCommand(newDescribeCmd(opts), newCallCmd(opts))
	return cmd
}

func parseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "warn":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

func (opts *options) open() (*plsql.DB, error) {
	if opts.dsn == "" {
		return nil, fmt.Errorf("--dsn or $%s is required", dsnEnv)
	}

	level, err := parseLogLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}

	return plsql.Open(oracle.Open(opts.dsn),
		plsql.WithLogger(logger.NewZapLoggerWithConfig(logger.Config{LogLevel: level, IgnoreRecordNotFoundError: true})),
		plsql.WithTranslateError(),
	)
}
