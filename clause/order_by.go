package clause

type OrderByColumn struct {
	Column Column
	Desc   bool
}

// OrderBy ordering of the result rows, later orders are appended
type OrderBy struct {
	Columns []OrderByColumn
}

func (OrderBy) Name() string {
	return "ORDER BY"
}

func (orderBy OrderBy) Build(builder Builder) {
	for idx, column := range orderBy.Columns {
		if idx > 0 {
			builder.WriteByte(',')
		}

		builder.WriteQuoted(column.Column)
		if column.Desc {
			builder.WriteString(" DESC")
		}
	}
}

func (orderBy OrderBy) MergeClause(clause *Clause) {
	if previous, ok := clause.Expression.(OrderBy); ok {
		orderBy.Columns = append(append(make([]OrderByColumn, 0, len(previous.Columns)+len(orderBy.Columns)), previous.Columns...), orderBy.Columns...)
	}
	clause.Expression = orderBy
}
