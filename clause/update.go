package clause

// Update updates the statement's table
type Update struct{}

func (Update) Name() string {
	return "UPDATE"
}

func (Update) Build(builder Builder) {
	builder.WriteQuoted(currentTable)
}

func (update Update) MergeClause(clause *Clause) {
	clause.Expression = update
}

// Set the assignments of an UPDATE, the last added set replaces the previous ones
type Set []Assignment

type Assignment struct {
	Column Column
	Value  interface{}
}

func (Set) Name() string {
	return "SET"
}

func (set Set) Build(builder Builder) {
	for idx, assignment := range set {
		if idx > 0 {
			builder.WriteByte(',')
		}
		builder.WriteQuoted(assignment.Column)
		builder.WriteByte('=')
		builder.AddVar(builder, assignment.Value)
	}
}

func (set Set) MergeClause(clause *Clause) {
	clause.Expression = append(Set(nil), set...)
}

// Delete deletes from the statement's table, followed by a FROM clause
type Delete struct{}

func (Delete) Name() string {
	return "DELETE"
}

func (Delete) Build(builder Builder) {
	builder.WriteString("DELETE")
}

func (d Delete) MergeClause(clause *Clause) {
	clause.Name = ""
	clause.Expression = d
}
