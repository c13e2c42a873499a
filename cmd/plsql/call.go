package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"gorm.io/plsql/utils"
)

func newCallCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "call NAME [ARGUMENT=VALUE...]",
		Short: "Call a procedure or function",
		Long: `Call a procedure or function with named arguments, values are cast to the declared argument types.

Examples:
  plsql call users_pkg.create_user p_name=Albert p_surname=Einstein`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments, err := parseArguments(args[1:])
			if err != nil {
				return err
			}

			db, err := opts.open()
			if err != nil {
				return err
			}

			result, err := db.WithContext(cmd.Context()).Exec(args[0], arguments)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func parseArguments(args []string) (map[string]interface{}, error) {
	arguments := make(map[string]interface{}, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid argument %q, expected NAME=VALUE", arg)
		}
		arguments[name] = value
	}
	return arguments, nil
}

// printResult prints a function result, or the OUT arguments of a procedure one per line
func printResult(out io.Writer, result interface{}) {
	switch v := result.(type) {
	case nil:
	case map[string]interface{}:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintf(out, "%s=%s\n", name, utils.ToString(v[name]))
		}
	default:
		fmt.Fprintln(out, utils.ToString(v))
	}
}
