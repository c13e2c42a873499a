package clause

// Insert inserts into the statement's table
type Insert struct{}

func (Insert) Name() string {
	return "INSERT"
}

func (Insert) Build(builder Builder) {
	builder.WriteString("INTO ")
	builder.WriteQuoted(currentTable)
}

func (insert Insert) MergeClause(clause *Clause) {
	clause.Expression = insert
}

// Values rows inserted in a single statement, rendered without the clause keyword
type Values struct {
	Columns []Column
	Values  [][]interface{}
}

func (Values) Name() string {
	return "VALUES"
}

func (values Values) Build(builder Builder) {
	builder.WriteByte('(')
	writeColumns(builder, values.Columns)
	builder.WriteString(") VALUES ")

	for idx, row := range values.Values {
		if idx > 0 {
			builder.WriteByte(',')
		}
		builder.WriteByte('(')
		builder.AddVar(builder, row...)
		builder.WriteByte(')')
	}
}

func (values Values) MergeClause(clause *Clause) {
	clause.Name = ""
	if previous, ok := clause.Expression.(Values); ok {
		values.Values = append(previous.Values, values.Values...)
	}
	clause.Expression = values
}
