package clause

import (
	"database/sql"
	"strings"
)

// TableFunction invokes a table valued function as a row source, like
//
//	TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name)) FUBN
type TableFunction struct {
	Name      string
	Alias     string
	Arguments []sql.NamedArg
	// Named writes arguments in named notation, name => :name, so defaulted arguments can be left out
	Named bool
}

// Build build table function call, arguments are written as named binds
func (fn TableFunction) Build(builder Builder) {
	builder.WriteString("TABLE(")
	builder.WriteString(fn.Name)
	builder.WriteByte('(')
	for idx, arg := range fn.Arguments {
		if idx > 0 {
			builder.WriteByte(',')
		}
		if fn.Named {
			builder.WriteString(arg.Name)
			builder.WriteString(" => ")
		}
		builder.AddVar(builder, arg)
	}
	builder.WriteString("))")

	if fn.Alias != "" {
		builder.WriteByte(' ')
		builder.WriteString(fn.Alias)
	}
}

// CallText returns the function invocation text without bound values
func CallText(name string, arguments []string) string {
	var sql strings.Builder
	sql.WriteString("TABLE(")
	sql.WriteString(name)
	sql.WriteByte('(')
	for idx, arg := range arguments {
		if idx > 0 {
			sql.WriteByte(',')
		}
		sql.WriteByte(':')
		sql.WriteString(arg)
	}
	sql.WriteString("))")
	return sql.String()
}
