package clause

// From reads from the statement's source, its table or the table function bound to it
type From struct{}

func (From) Name() string {
	return "FROM"
}

func (From) Build(builder Builder) {
	builder.WriteQuoted(currentTable)
}

func (from From) MergeClause(clause *Clause) {
	clause.Expression = from
}
