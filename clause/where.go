package clause

import "strings"

const (
	AndWithSpace = " AND "
	OrWithSpace  = " OR "
)

// Where conditions of the WHERE clause, joined with AND
type Where struct {
	Exprs []Expression
}

func (where Where) Name() string {
	return "WHERE"
}

func (where Where) Build(builder Builder) {
	joinConditions(builder, where.Exprs, AndWithSpace)
}

// MergeClause appends the conditions to the ones already added
func (where Where) MergeClause(clause *Clause) {
	if previous, ok := clause.Expression.(Where); ok {
		where.Exprs = append(append(make([]Expression, 0, len(previous.Exprs)+len(where.Exprs)), previous.Exprs...), where.Exprs...)
	}
	clause.Expression = where
}

// joinConditions writes exprs separated by sep, a single-condition OR group is joined with OR
func joinConditions(builder Builder, exprs []Expression, sep string) {
	for idx, expr := range exprs {
		if idx > 0 {
			if or, ok := expr.(OrConditions); ok && len(or.Exprs) == 1 {
				builder.WriteString(OrWithSpace)
			} else {
				builder.WriteString(sep)
			}
		}

		if len(exprs) > 1 && isCompound(expr) {
			builder.WriteByte('(')
			expr.Build(builder)
			builder.WriteByte(')')
		} else {
			expr.Build(builder)
		}
	}
}

// isCompound raw SQL combining conditions itself
func isCompound(expr Expression) bool {
	raw, ok := expr.(Expr)
	if !ok {
		return false
	}
	sql := strings.ToUpper(raw.SQL)
	return strings.Contains(sql, AndWithSpace) || strings.Contains(sql, OrWithSpace)
}

func groupConditions(builder Builder, exprs []Expression, sep string) {
	if len(exprs) > 1 {
		builder.WriteByte('(')
		defer builder.WriteByte(')')
	}
	joinConditions(builder, exprs, sep)
}

func And(exprs ...Expression) Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		if _, ok := exprs[0].(OrConditions); !ok {
			return exprs[0]
		}
	}
	return AndConditions{Exprs: exprs}
}

type AndConditions struct {
	Exprs []Expression
}

func (and AndConditions) Build(builder Builder) {
	groupConditions(builder, and.Exprs, AndWithSpace)
}

func Or(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}
	return OrConditions{Exprs: exprs}
}

type OrConditions struct {
	Exprs []Expression
}

func (or OrConditions) Build(builder Builder) {
	groupConditions(builder, or.Exprs, OrWithSpace)
}

func Not(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}
	return NotConditions{Exprs: exprs}
}

// NotConditions negates every condition, expressions knowing their negated form render it
type NotConditions struct {
	Exprs []Expression
}

func (not NotConditions) Build(builder Builder) {
	negated := make([]Expression, len(not.Exprs))
	for idx, expr := range not.Exprs {
		negated[idx] = negation{expr}
	}
	groupConditions(builder, negated, AndWithSpace)
}

type negation struct {
	Expression
}

func (n negation) Build(builder Builder) {
	if nb, ok := n.Expression.(NegationExpressionBuilder); ok {
		nb.NegationBuild(builder)
		return
	}
	builder.WriteString("NOT ")
	n.Expression.Build(builder)
}
