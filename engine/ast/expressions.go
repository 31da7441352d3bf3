package ast

// Expression is a sealed interface over the expression forms that may appear
// in a column list or on either side of a condition.
type Expression interface {
	expression()
}

// ColumnRef references a column, optionally qualified by table.
type ColumnRef struct {
	Table  string
	Column string
}

func (*ColumnRef) expression() {}

// Literal wraps a Value appearing in expression position.
type Literal struct {
	Value Value
}

func (*Literal) expression() {}

// Star is the `*` projection.
type Star struct{}

func (*Star) expression() {}

// Col builds an unqualified column reference.
func Col(column string) *ColumnRef {
	return &ColumnRef{Column: column}
}

// QCol builds a table-qualified column reference.
func QCol(table, column string) *ColumnRef {
	return &ColumnRef{Table: table, Column: column}
}

// Lit builds a literal expression.
func Lit(v Value) *Literal {
	return &Literal{Value: v}
}

// ComparisonOperator is the closed set of binary comparison operators.
type ComparisonOperator string

const (
	Equals             ComparisonOperator = "="
	NotEquals          ComparisonOperator = "!="
	GreaterThan        ComparisonOperator = ">"
	GreaterThanOrEqual ComparisonOperator = ">="
	LessThan           ComparisonOperator = "<"
	LessThanOrEqual    ComparisonOperator = "<="
)

// WhereClause is a sealed interface over the filter tree. Trees are finite
// and acyclic; translators walk them without mutating.
type WhereClause interface {
	whereClause()
}

// Condition compares two expressions with a ComparisonOperator.
type Condition struct {
	Left     Expression
	Operator ComparisonOperator
	Right    Expression
}

func (*Condition) whereClause() {}

// And is the conjunction of its child clauses.
type And struct {
	Clauses []WhereClause
}

func (*And) whereClause() {}

// Or is the disjunction of its child clauses.
type Or struct {
	Clauses []WhereClause
}

func (*Or) whereClause() {}

// Not negates a clause.
type Not struct {
	Clause WhereClause
}

func (*Not) whereClause() {}

// In tests a column against a value list.
type In struct {
	Column string
	Values []Value
}

func (*In) whereClause() {}

// IsNull tests a column for NULL.
type IsNull struct {
	Column string
}

func (*IsNull) whereClause() {}

// IsNotNull tests a column for NOT NULL.
type IsNotNull struct {
	Column string
}

func (*IsNotNull) whereClause() {}

// Between tests a column against an inclusive range.
type Between struct {
	Column string
	Lower  Value
	Upper  Value
}

func (*Between) whereClause() {}

// Like tests a column against a SQL pattern (% and _ wildcards).
type Like struct {
	Column  string
	Pattern string
}

func (*Like) whereClause() {}

// InSubQuery tests a column against the result of a sub-select.
type InSubQuery struct {
	Column   string
	SubQuery *SelectQuery
}

func (*InSubQuery) whereClause() {}

// Eq is shorthand for an equality condition on a column and a literal.
func Eq(column string, v Value) *Condition {
	return &Condition{Left: Col(column), Operator: Equals, Right: Lit(v)}
}
