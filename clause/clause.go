package clause

// Interface clause interface
type Interface interface {
	Name() string
	Build(Builder)
	MergeClause(*Clause)
}

// ClauseBuilder clause builder, allows to customize how to build clause
type ClauseBuilder func(Clause, Builder)

// Writer is implemented by the statement's SQL buffer
type Writer interface {
	WriteByte(byte) error
	WriteString(string) (int, error)
}

// Builder builder interface
type Builder interface {
	Writer
	WriteQuoted(field interface{})
	AddVar(Writer, ...interface{})
	AddError(error) error
}

// Clause a named clause of the statement, WHERE or ORDER BY, merged as clauses are added
type Clause struct {
	Name       string
	Expression Expression
}

// Build writes the clause name followed by its expression, clauses without a name write only the expression
func (c Clause) Build(builder Builder) {
	if c.Expression == nil {
		return
	}

	if c.Name != "" {
		builder.WriteString(c.Name)
		builder.WriteByte(' ')
	}
	c.Expression.Build(builder)
}

const (
	PrimaryKey   string = "~~~py~~~" // primary key
	CurrentTable string = "~~~ct~~~" // current table
)

var (
	currentTable  = Table{Name: CurrentTable}
	PrimaryColumn = Column{Table: CurrentTable, Name: PrimaryKey}
)

// Column quote with name
type Column struct {
	Table string
	Name  string
	Alias string
	Raw   bool
}

// Table quote with name
type Table struct {
	Name  string
	Alias string
	Raw   bool
}
