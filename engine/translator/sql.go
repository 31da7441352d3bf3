package translator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codeyousef/aetherdb/engine/ast"
)

// PlaceholderStyle selects the parameter placeholder syntax of the target
// dialect.
type PlaceholderStyle int

const (
	// PlaceholderDollar emits $1, $2, ... (PostgreSQL).
	PlaceholderDollar PlaceholderStyle = iota
	// PlaceholderQuestion emits ? (SQLite, MySQL).
	PlaceholderQuestion
)

// SQLCommand is a parameterized SQL statement. Params are ordered to match
// placeholder positions: placeholder k binds Params[k-1].
type SQLCommand struct {
	SQL    string
	Params []any
}

// TranslateSQL compiles a statement into parameterized SQL. Every literal in
// the AST becomes a positional placeholder; params are collected in
// left-to-right traversal order.
func TranslateSQL(stmt ast.Statement, style PlaceholderStyle) (*SQLCommand, error) {
	c := &sqlCompiler{style: style}
	if err := c.writeStatement(stmt); err != nil {
		return nil, err
	}
	return &SQLCommand{SQL: c.buf.String(), Params: c.params}, nil
}

// sqlCompiler accumulates SQL text and parameters for one statement,
// including any sub-selects, so placeholder numbering stays contiguous.
type sqlCompiler struct {
	style  PlaceholderStyle
	buf    strings.Builder
	params []any
}

// placeholder registers v as the next parameter and returns its placeholder.
func (c *sqlCompiler) placeholder(v ast.Value) string {
	c.params = append(c.params, ast.Native(v))
	if c.style == PlaceholderQuestion {
		return "?"
	}
	return "$" + strconv.Itoa(len(c.params))
}

func (c *sqlCompiler) writeStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.SelectQuery:
		return c.writeSelect(s)
	case *ast.InsertQuery:
		return c.writeInsert(s)
	case *ast.UpdateQuery:
		return c.writeUpdate(s)
	case *ast.DeleteQuery:
		return c.writeDelete(s)
	case *ast.CreateTableQuery:
		return c.writeCreateTable(s)
	case *ast.RawQuery:
		c.buf.WriteString(s.Text)
		return nil
	default:
		return Unsupported(BackendSQL, statementName(stmt))
	}
}

func (c *sqlCompiler) writeSelect(q *ast.SelectQuery) error {
	c.buf.WriteString("SELECT ")
	if q.Distinct {
		c.buf.WriteString("DISTINCT ")
	}
	if err := c.writeColumns(q.Columns); err != nil {
		return err
	}
	c.buf.WriteString(" FROM ")
	c.buf.WriteString(q.From)

	for _, join := range q.Joins {
		c.buf.WriteString(" ")
		c.buf.WriteString(string(join.Type))
		c.buf.WriteString(" JOIN ")
		c.buf.WriteString(join.Table)
		if join.On != nil {
			c.buf.WriteString(" ON ")
			if err := c.writeWhereClause(join.On); err != nil {
				return err
			}
		}
	}

	if q.Where != nil {
		c.buf.WriteString(" WHERE ")
		if err := c.writeWhereClause(q.Where); err != nil {
			return err
		}
	}

	if len(q.OrderBy) > 0 {
		c.buf.WriteString(" ORDER BY ")
		for i, ob := range q.OrderBy {
			if i > 0 {
				c.buf.WriteString(", ")
			}
			if err := c.writeExpression(ob.Column); err != nil {
				return err
			}
			c.buf.WriteString(" ")
			c.buf.WriteString(string(ob.Direction))
		}
	}

	if q.Limit != nil {
		c.buf.WriteString(" LIMIT ")
		c.buf.WriteString(strconv.Itoa(*q.Limit))
	}
	if q.Offset != nil {
		c.buf.WriteString(" OFFSET ")
		c.buf.WriteString(strconv.Itoa(*q.Offset))
	}
	return nil
}

func (c *sqlCompiler) writeColumns(columns []ast.Expression) error {
	if len(columns) == 0 {
		c.buf.WriteString("*")
		return nil
	}
	for i, col := range columns {
		if i > 0 {
			c.buf.WriteString(", ")
		}
		if err := c.writeExpression(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *sqlCompiler) writeInsert(q *ast.InsertQuery) error {
	if len(q.Columns) != len(q.Values) {
		return fmt.Errorf("insert into %s: %d columns but %d values", q.Table, len(q.Columns), len(q.Values))
	}
	c.buf.WriteString("INSERT INTO ")
	c.buf.WriteString(q.Table)
	c.buf.WriteString(" (")
	c.buf.WriteString(strings.Join(q.Columns, ", "))
	c.buf.WriteString(") VALUES (")
	for i, v := range q.Values {
		if i > 0 {
			c.buf.WriteString(", ")
		}
		c.buf.WriteString(c.placeholder(v))
	}
	c.buf.WriteString(")")
	if len(q.Returning) > 0 {
		c.buf.WriteString(" RETURNING ")
		c.buf.WriteString(strings.Join(q.Returning, ", "))
	}
	return nil
}

func (c *sqlCompiler) writeUpdate(q *ast.UpdateQuery) error {
	if len(q.Assignments) == 0 {
		return fmt.Errorf("update %s: no assignments", q.Table)
	}
	c.buf.WriteString("UPDATE ")
	c.buf.WriteString(q.Table)
	c.buf.WriteString(" SET ")
	for i, a := range q.Assignments {
		if i > 0 {
			c.buf.WriteString(", ")
		}
		c.buf.WriteString(a.Column)
		c.buf.WriteString(" = ")
		c.buf.WriteString(c.placeholder(a.Value))
	}
	if q.Where != nil {
		c.buf.WriteString(" WHERE ")
		return c.writeWhereClause(q.Where)
	}
	return nil
}

func (c *sqlCompiler) writeDelete(q *ast.DeleteQuery) error {
	c.buf.WriteString("DELETE FROM ")
	c.buf.WriteString(q.Table)
	if q.Where != nil {
		c.buf.WriteString(" WHERE ")
		return c.writeWhereClause(q.Where)
	}
	return nil
}

func (c *sqlCompiler) writeCreateTable(q *ast.CreateTableQuery) error {
	if len(q.Columns) == 0 {
		return fmt.Errorf("create table %s: no columns", q.Table)
	}
	c.buf.WriteString("CREATE TABLE ")
	c.buf.WriteString(q.Table)
	c.buf.WriteString(" (")
	for i, col := range q.Columns {
		if i > 0 {
			c.buf.WriteString(", ")
		}
		c.buf.WriteString(col.Name)
		c.buf.WriteString(" ")
		c.buf.WriteString(col.Type)
		if col.PrimaryKey {
			c.buf.WriteString(" PRIMARY KEY")
		}
		if col.AutoIncrement {
			c.buf.WriteString(" AUTOINCREMENT")
		}
		if !col.Nullable && !col.PrimaryKey {
			c.buf.WriteString(" NOT NULL")
		}
		if col.Unique {
			c.buf.WriteString(" UNIQUE")
		}
		if col.DefaultValue != nil {
			c.buf.WriteString(" DEFAULT ")
			c.buf.WriteString(defaultLiteral(col.DefaultValue))
		}
	}
	c.buf.WriteString(")")
	return nil
}

// defaultLiteral renders a column default inline. DDL cannot bind
// parameters, so strings are quoted with doubled single quotes.
func defaultLiteral(v ast.Value) string {
	if s, ok := v.(ast.StringValue); ok {
		return "'" + strings.ReplaceAll(string(s), "'", "''") + "'"
	}
	if _, ok := v.(ast.NullValue); ok {
		return "NULL"
	}
	return ast.Format(v)
}

func (c *sqlCompiler) writeWhereClause(clause ast.WhereClause) error {
	switch w := clause.(type) {
	case *ast.Condition:
		if err := c.writeExpression(w.Left); err != nil {
			return err
		}
		c.buf.WriteString(" ")
		c.buf.WriteString(string(w.Operator))
		c.buf.WriteString(" ")
		return c.writeExpression(w.Right)

	case *ast.And:
		return c.writeJunction(w.Clauses, " AND ")

	case *ast.Or:
		return c.writeJunction(w.Clauses, " OR ")

	case *ast.Not:
		c.buf.WriteString("NOT (")
		if err := c.writeWhereClause(w.Clause); err != nil {
			return err
		}
		c.buf.WriteString(")")
		return nil

	case *ast.In:
		if len(w.Values) == 0 {
			return fmt.Errorf("IN on %s: empty value list", w.Column)
		}
		c.buf.WriteString(w.Column)
		c.buf.WriteString(" IN (")
		for i, v := range w.Values {
			if i > 0 {
				c.buf.WriteString(", ")
			}
			c.buf.WriteString(c.placeholder(v))
		}
		c.buf.WriteString(")")
		return nil

	case *ast.IsNull:
		c.buf.WriteString(w.Column)
		c.buf.WriteString(" IS NULL")
		return nil

	case *ast.IsNotNull:
		c.buf.WriteString(w.Column)
		c.buf.WriteString(" IS NOT NULL")
		return nil

	case *ast.Between:
		c.buf.WriteString(w.Column)
		c.buf.WriteString(" BETWEEN ")
		c.buf.WriteString(c.placeholder(w.Lower))
		c.buf.WriteString(" AND ")
		c.buf.WriteString(c.placeholder(w.Upper))
		return nil

	case *ast.Like:
		c.buf.WriteString(w.Column)
		c.buf.WriteString(" LIKE ")
		c.buf.WriteString(c.placeholder(ast.StringValue(w.Pattern)))
		return nil

	case *ast.InSubQuery:
		c.buf.WriteString(w.Column)
		c.buf.WriteString(" IN (")
		if err := c.writeSelect(w.SubQuery); err != nil {
			return err
		}
		c.buf.WriteString(")")
		return nil

	default:
		return Unsupported(BackendSQL, fmt.Sprintf("%T", clause))
	}
}

func (c *sqlCompiler) writeJunction(clauses []ast.WhereClause, sep string) error {
	if len(clauses) == 0 {
		return fmt.Errorf("empty boolean clause list")
	}
	c.buf.WriteString("(")
	for i, clause := range clauses {
		if i > 0 {
			c.buf.WriteString(sep)
		}
		if err := c.writeWhereClause(clause); err != nil {
			return err
		}
	}
	c.buf.WriteString(")")
	return nil
}

func (c *sqlCompiler) writeExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.ColumnRef:
		if e.Table != "" {
			c.buf.WriteString(e.Table)
			c.buf.WriteString(".")
		}
		c.buf.WriteString(e.Column)
		return nil
	case *ast.Literal:
		c.buf.WriteString(c.placeholder(e.Value))
		return nil
	case *ast.Star:
		c.buf.WriteString("*")
		return nil
	default:
		return Unsupported(BackendSQL, fmt.Sprintf("%T", expr))
	}
}
