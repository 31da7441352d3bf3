package aetherdb

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeyousef/aetherdb/engine/ast"
)

func newTestSQLDriver(t *testing.T) *SQLDriver {
	t.Helper()
	driver, err := NewSQLDriver("sqlite3", ":memory:", 1, 1, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close() })

	err = driver.ExecuteDDL(context.Background(), &ast.CreateTableQuery{
		Table: "users",
		Columns: []ast.ColumnDefinition{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "name", Type: "TEXT", Nullable: false},
			{Name: "age", Type: "INTEGER", Nullable: true},
			{Name: "active", Type: "BOOLEAN", Nullable: true},
		},
	})
	require.NoError(t, err)
	return driver
}

func insertUser(t *testing.T, driver *SQLDriver, name string, age int, active bool) {
	t.Helper()
	_, err := driver.ExecuteUpdate(context.Background(), &ast.InsertQuery{
		Table:   "users",
		Columns: []string{"name", "age", "active"},
		Values:  []ast.Value{ast.StringValue(name), ast.IntValue(int32(age)), ast.BooleanValue(active)},
	})
	require.NoError(t, err)
}

func TestSQLDriverRoundTrip(t *testing.T) {
	driver := newTestSQLDriver(t)
	ctx := context.Background()

	insertUser(t, driver, "alice", 30, true)
	insertUser(t, driver, "bob", 25, false)

	rows, err := driver.ExecuteQuery(ctx, &ast.SelectQuery{
		From:    "users",
		Where:   ast.Eq("active", ast.BooleanValue(true)),
		OrderBy: []ast.OrderByClause{{Column: ast.Col("name"), Direction: ast.Ascending}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	name, ok := rows[0].GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
	age, ok := rows[0].GetInt("age")
	assert.True(t, ok)
	assert.Equal(t, 30, age)
}

func TestSQLDriverUpdateAndDeleteCounts(t *testing.T) {
	driver := newTestSQLDriver(t)
	ctx := context.Background()

	insertUser(t, driver, "alice", 30, true)
	insertUser(t, driver, "bob", 25, true)
	insertUser(t, driver, "carol", 41, false)

	affected, err := driver.ExecuteUpdate(ctx, &ast.UpdateQuery{
		Table:       "users",
		Assignments: []ast.Assignment{{Column: "active", Value: ast.BooleanValue(false)}},
		Where:       ast.Eq("active", ast.BooleanValue(true)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	affected, err = driver.ExecuteUpdate(ctx, &ast.DeleteQuery{
		Table: "users",
		Where: &ast.Condition{Left: ast.Col("age"), Operator: ast.GreaterThan, Right: ast.Lit(ast.IntValue(40))},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestSQLDriverRejectsMismatchedStatementKinds(t *testing.T) {
	driver := newTestSQLDriver(t)
	ctx := context.Background()

	_, err := driver.ExecuteUpdate(ctx, &ast.SelectQuery{From: "users"})
	assert.Error(t, err)

	err = driver.ExecuteDDL(ctx, &ast.SelectQuery{From: "users"})
	assert.Error(t, err)
}

func TestSQLDriverGetTables(t *testing.T) {
	driver := newTestSQLDriver(t)

	tables, err := driver.GetTables(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tables, "users")
}

func TestSQLDriverGetColumns(t *testing.T) {
	driver := newTestSQLDriver(t)

	columns, err := driver.GetColumns(context.Background(), "users")
	require.NoError(t, err)

	byName := make(map[string]ast.ColumnDefinition, len(columns))
	for _, col := range columns {
		byName[col.Name] = col
	}
	require.Contains(t, byName, "id")
	require.Contains(t, byName, "name")
	assert.True(t, byName["id"].PrimaryKey)
	assert.False(t, byName["name"].Nullable)
	assert.True(t, byName["age"].Nullable)
}

func TestSQLDriverGetColumnsUnknownTable(t *testing.T) {
	driver := newTestSQLDriver(t)

	_, err := driver.GetColumns(context.Background(), "nope")
	var dbe *DatabaseError
	assert.ErrorAs(t, err, &dbe)
}

func TestSQLDriverExecuteRaw(t *testing.T) {
	driver := newTestSQLDriver(t)
	ctx := context.Background()
	insertUser(t, driver, "alice", 30, true)

	affected, err := driver.Execute(ctx, "UPDATE users SET age = age + 1 WHERE name = ?", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestSQLDriverNullColumnIsUnset(t *testing.T) {
	driver := newTestSQLDriver(t)
	ctx := context.Background()

	_, err := driver.ExecuteUpdate(ctx, &ast.InsertQuery{
		Table:   "users",
		Columns: []string{"name", "age"},
		Values:  []ast.Value{ast.StringValue("dana"), ast.NullValue{}},
	})
	require.NoError(t, err)

	rows, err := driver.ExecuteQuery(ctx, &ast.SelectQuery{From: "users"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, ok := rows[0].GetInt("age")
	assert.False(t, ok)
}
