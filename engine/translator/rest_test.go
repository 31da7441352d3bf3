package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeyousef/aetherdb/engine/ast"
)

func TestTranslateRESTSelect(t *testing.T) {
	stmt := &ast.SelectQuery{
		Columns: []ast.Expression{ast.Col("id"), ast.Col("name")},
		From:    "users",
		Where:   ast.Eq("active", ast.BooleanValue(true)),
		OrderBy: []ast.OrderByClause{{Column: ast.Col("name"), Direction: ast.Descending}},
		Limit:   ast.IntPtr(10),
		Offset:  ast.IntPtr(20),
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, "GET", cmd.Method)
	assert.Equal(t, "/users", cmd.Path)
	assert.Equal(t, "id,name", cmd.Query.Get("select"))
	assert.Equal(t, "eq.true", cmd.Query.Get("active"))
	assert.Equal(t, "name.desc", cmd.Query.Get("order"))
	assert.Equal(t, "10", cmd.Query.Get("limit"))
	assert.Equal(t, "20", cmd.Query.Get("offset"))
}

func TestTranslateRESTStarOmitsSelect(t *testing.T) {
	cmd, err := TranslateREST(&ast.SelectQuery{
		Columns: []ast.Expression{&ast.Star{}},
		From:    "users",
	})
	require.NoError(t, err)
	assert.Empty(t, cmd.Query.Get("select"))
}

func TestTranslateRESTAndFlattensToRepeatedParams(t *testing.T) {
	stmt := &ast.SelectQuery{
		From: "orders",
		Where: &ast.And{Clauses: []ast.WhereClause{
			ast.Eq("status", ast.StringValue("open")),
			&ast.Condition{Left: ast.Col("total"), Operator: ast.GreaterThanOrEqual, Right: ast.Lit(ast.IntValue(100))},
		}},
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, "eq.open", cmd.Query.Get("status"))
	assert.Equal(t, "gte.100", cmd.Query.Get("total"))
}

func TestTranslateRESTOrGroup(t *testing.T) {
	stmt := &ast.SelectQuery{
		From: "users",
		Where: &ast.Or{Clauses: []ast.WhereClause{
			ast.Eq("role", ast.StringValue("admin")),
			&ast.IsNull{Column: "deleted_at"},
		}},
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, `(role.eq."admin",deleted_at.is.null)`, cmd.Query.Get("or"))
}

func TestTranslateRESTOrGroupQuotesDelimiters(t *testing.T) {
	stmt := &ast.SelectQuery{
		From: "users",
		Where: &ast.Or{Clauses: []ast.WhereClause{
			ast.Eq("name", ast.StringValue("a,b)c")),
			&ast.Condition{Left: ast.Col("age"), Operator: ast.GreaterThan, Right: ast.Lit(ast.IntValue(30))},
		}},
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, `(name.eq."a,b)c",age.gt.30)`, cmd.Query.Get("or"))
}

func TestTranslateRESTInQuotesStrings(t *testing.T) {
	stmt := &ast.SelectQuery{
		From: "users",
		Where: &ast.In{Column: "role", Values: []ast.Value{
			ast.StringValue("admin"),
			ast.StringValue("a,b"),
			ast.IntValue(3),
		}},
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, `in.("admin","a,b",3)`, cmd.Query.Get("role"))
}

func TestTranslateRESTBetweenBecomesTwoFilters(t *testing.T) {
	stmt := &ast.SelectQuery{
		From:  "orders",
		Where: &ast.Between{Column: "total", Lower: ast.IntValue(10), Upper: ast.IntValue(50)},
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, []string{"gte.10", "lte.50"}, cmd.Query["total"])
}

func TestTranslateRESTNullChecksAndLike(t *testing.T) {
	stmt := &ast.SelectQuery{
		From: "users",
		Where: &ast.And{Clauses: []ast.WhereClause{
			&ast.IsNotNull{Column: "verified_at"},
			&ast.Like{Column: "email", Pattern: "%@corp.com"},
		}},
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, "not.is.null", cmd.Query.Get("verified_at"))
	assert.Equal(t, "like.%@corp.com", cmd.Query.Get("email"))
}

func TestTranslateRESTInsert(t *testing.T) {
	stmt := &ast.InsertQuery{
		Table:     "users",
		Columns:   []string{"name", "age"},
		Values:    []ast.Value{ast.StringValue("alice"), ast.IntValue(30)},
		Returning: []string{"id"},
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, "POST", cmd.Method)
	assert.Equal(t, "/users", cmd.Path)
	assert.Equal(t, map[string]any{"name": "alice", "age": int64(30)}, cmd.Body)
	assert.Equal(t, "id", cmd.Query.Get("select"))
}

func TestTranslateRESTUpdate(t *testing.T) {
	stmt := &ast.UpdateQuery{
		Table:       "users",
		Assignments: []ast.Assignment{{Column: "name", Value: ast.StringValue("bob")}},
		Where:       ast.Eq("id", ast.LongValue(7)),
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, "PATCH", cmd.Method)
	assert.Equal(t, map[string]any{"name": "bob"}, cmd.Body)
	assert.Equal(t, "eq.7", cmd.Query.Get("id"))
}

func TestTranslateRESTDelete(t *testing.T) {
	stmt := &ast.DeleteQuery{
		Table: "users",
		Where: ast.Eq("id", ast.StringValue("doc456")),
	}
	cmd, err := TranslateREST(stmt)
	require.NoError(t, err)
	assert.Equal(t, "DELETE", cmd.Method)
	assert.Equal(t, "/users", cmd.Path)
	assert.Equal(t, "eq.doc456", cmd.Query.Get("id"))
	assert.Nil(t, cmd.Body)
}

func TestTranslateRESTUnsupportedConstructs(t *testing.T) {
	cases := map[string]ast.Statement{
		"not": &ast.SelectQuery{
			From:  "users",
			Where: &ast.Not{Clause: ast.Eq("active", ast.BooleanValue(true))},
		},
		"subquery": &ast.SelectQuery{
			From:  "users",
			Where: &ast.InSubQuery{Column: "id", SubQuery: &ast.SelectQuery{From: "orders"}},
		},
		"join": &ast.SelectQuery{
			From:  "users",
			Joins: []ast.JoinClause{{Type: ast.InnerJoin, Table: "orders"}},
		},
		"distinct": &ast.SelectQuery{From: "users", Distinct: true},
		"create table": &ast.CreateTableQuery{
			Table:   "users",
			Columns: []ast.ColumnDefinition{{Name: "id", Type: "INTEGER"}},
		},
		"raw": &ast.RawQuery{Text: "SELECT 1"},
	}
	for name, stmt := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := TranslateREST(stmt)
			var unsupported *UnsupportedError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, BackendREST, unsupported.Backend)
		})
	}
}
