package ast

// Statement is a sealed interface over the statement kinds the engine can
// translate. A statement is immutable once constructed; translators never
// mutate one.
type Statement interface {
	statement()
}

// SortDirection represents sort order.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// JoinType represents the type of join.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	FullJoin  JoinType = "FULL"
	CrossJoin JoinType = "CROSS"
)

// OrderByClause orders results by a column expression.
type OrderByClause struct {
	Column    Expression
	Direction SortDirection
}

// JoinClause joins another table on a filter tree.
type JoinClause struct {
	Type  JoinType
	Table string
	On    WhereClause
}

// ColumnDefinition describes one column of a CREATE TABLE statement or a
// schema introspection result.
type ColumnDefinition struct {
	Name          string
	Type          string
	Nullable      bool
	PrimaryKey    bool
	Unique        bool
	DefaultValue  Value // nil means no default
	AutoIncrement bool
}

// SelectQuery reads rows from a table.
type SelectQuery struct {
	Columns  []Expression
	From     string
	Where    WhereClause // nil means no filter
	Joins    []JoinClause
	OrderBy  []OrderByClause
	Limit    *int
	Offset   *int
	Distinct bool
}

func (*SelectQuery) statement() {}

// InsertQuery inserts one row. Columns and Values are parallel slices.
type InsertQuery struct {
	Table     string
	Columns   []string
	Values    []Value
	Returning []string
}

func (*InsertQuery) statement() {}

// Assignment sets one column in an UPDATE.
type Assignment struct {
	Column string
	Value  Value
}

// UpdateQuery updates rows matching Where.
type UpdateQuery struct {
	Table       string
	Assignments []Assignment
	Where       WhereClause
}

func (*UpdateQuery) statement() {}

// DeleteQuery deletes rows matching Where.
type DeleteQuery struct {
	Table string
	Where WhereClause
}

func (*DeleteQuery) statement() {}

// CreateTableQuery creates a table from column definitions.
type CreateTableQuery struct {
	Table   string
	Columns []ColumnDefinition
}

func (*CreateTableQuery) statement() {}

// RawQuery carries backend-native command text verbatim. Only the SQL
// backend accepts it.
type RawQuery struct {
	Text string
}

func (*RawQuery) statement() {}

// IntPtr is a convenience for the Limit/Offset fields.
func IntPtr(n int) *int {
	return &n
}
