package clause

import "strconv"

// Limit limit clause, rendered with the OFFSET ... FETCH row limiting syntax
type Limit struct {
	Limit  *int
	Offset int
}

// Name limit clause name
func (limit Limit) Name() string {
	return "LIMIT"
}

// Build build limit clause
func (limit Limit) Build(builder Builder) {
	if limit.Offset > 0 {
		builder.WriteString("OFFSET ")
		builder.WriteString(strconv.Itoa(limit.Offset))
		builder.WriteString(" ROWS")
	}

	if limit.Limit != nil && *limit.Limit >= 0 {
		if limit.Offset > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString("FETCH NEXT ")
		builder.WriteString(strconv.Itoa(*limit.Limit))
		builder.WriteString(" ROWS ONLY")
	}
}

// MergeClause merge limit clauses
func (limit Limit) MergeClause(clause *Clause) {
	clause.Name = ""

	if v, ok := clause.Expression.(Limit); ok {
		if limit.Limit == nil && v.Limit != nil {
			limit.Limit = v.Limit
		}

		if limit.Offset == 0 && v.Offset > 0 {
			limit.Offset = v.Offset
		} else if limit.Offset < 0 {
			limit.Offset = 0
		}
	}

	clause.Expression = limit
}
