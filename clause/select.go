package clause

// Select the selected columns, every column when empty
type Select struct {
	Distinct bool
	Columns  []Column
}

func (Select) Name() string {
	return "SELECT"
}

func (s Select) Build(builder Builder) {
	if len(s.Columns) == 0 {
		builder.WriteByte('*')
		return
	}

	if s.Distinct {
		builder.WriteString("DISTINCT ")
	}
	writeColumns(builder, s.Columns)
}

func (s Select) MergeClause(clause *Clause) {
	clause.Expression = s
}

func writeColumns(builder Builder, columns []Column) {
	for idx, column := range columns {
		if idx > 0 {
			builder.WriteByte(',')
		}
		builder.WriteQuoted(column)
	}
}
