package catalog

import (
	"sort"
	"strings"
)

// Argument argument of a stored procedure or function
type Argument struct {
	Name      string
	Position  int
	DataType  string
	InOut     string
	Defaulted bool
}

// Out reports whether the argument returns a value to the caller
func (arg Argument) Out() bool {
	return strings.Contains(arg.InOut, "OUT")
}

// Field field of the row type yielded by a pipelined function
type Field struct {
	Name     string
	Position int
	DataType string
}

// Return return value description of a function, Fields describes the rows of table functions
type Return struct {
	DataType string
	Fields   []Field
}

// Callable describes a stored procedure or function, possibly declared in a package
type Callable struct {
	Schema    string
	Package   string
	Name      string
	Overloads int
	Arguments []Argument
	Return    *Return
}

// QualifiedName returns PACKAGE.NAME, or NAME for standalone callables
func (c *Callable) QualifiedName() string {
	if c.Package == "" {
		return upper(c.Name)
	}
	return upper(c.Package) + "." + upper(c.Name)
}

func (c *Callable) String() string {
	if c.Schema == "" {
		return c.QualifiedName()
	}
	return upper(c.Schema) + "." + c.QualifiedName()
}

// Overloaded reports whether more than one signature is declared under the callable's name
func (c *Callable) Overloaded() bool {
	return c.Overloads > 1
}

// Function reports whether the callable returns a value
func (c *Callable) Function() bool {
	return c.Return != nil
}

// Pipelined reports whether the callable yields rows and so can be used as a table
func (c *Callable) Pipelined() bool {
	return c.Return != nil && len(c.Return.Fields) > 0
}

// Argument looks up a declared argument, names are matched case-insensitively
func (c *Callable) Argument(name string) (Argument, bool) {
	for _, arg := range c.Arguments {
		if strings.EqualFold(arg.Name, name) {
			return arg, true
		}
	}
	return Argument{}, false
}

// ArgumentNames returns argument names in declaration order
func (c *Callable) ArgumentNames() []string {
	names := make([]string, len(c.Arguments))
	for idx, arg := range c.Arguments {
		names[idx] = arg.Name
	}
	return names
}

// Sort orders arguments and return fields by their declared position
func (c *Callable) Sort() {
	sort.SliceStable(c.Arguments, func(i, j int) bool {
		return c.Arguments[i].Position < c.Arguments[j].Position
	})

	if c.Return != nil {
		sort.SliceStable(c.Return.Fields, func(i, j int) bool {
			return c.Return.Fields[i].Position < c.Return.Fields[j].Position
		})
	}
}

// Block returns the PL/SQL block calling the callable with named arguments, a function result is
// bound to the first placeholder
//
//	BEGIN :result := USERS_PKG.CREATE_USER(p_name => :p_name); END;
func (c *Callable) Block(names []string) string {
	var sql strings.Builder
	sql.WriteString("BEGIN ")
	if c.Function() {
		sql.WriteString(":result := ")
	}
	sql.WriteString(c.QualifiedName())
	sql.WriteByte('(')
	for idx, name := range names {
		if idx > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(name)
		sql.WriteString(" => :")
		sql.WriteString(name)
	}
	sql.WriteString("); END;")
	return sql.String()
}

// PositionalBlock returns the PL/SQL block calling the callable with n positional arguments
func (c *Callable) PositionalBlock(n int) string {
	var sql strings.Builder
	sql.WriteString("BEGIN ")
	if c.Function() {
		sql.WriteString(":result := ")
	}
	sql.WriteString(c.QualifiedName())
	sql.WriteByte('(')
	for idx := 0; idx < n; idx++ {
		if idx > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(":")
		sql.WriteString("arg")
		sql.WriteString(itoa(idx + 1))
	}
	sql.WriteString("); END;")
	return sql.String()
}
