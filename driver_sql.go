package aetherdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/codeyousef/aetherdb/engine/ast"
	"github.com/codeyousef/aetherdb/engine/translator"
	"github.com/codeyousef/aetherdb/engine/validator"
)

// SQLDriver executes statements against a relational backend over a bounded
// connection pool. Callers beyond the pool capacity wait for a free
// connection; they are not rejected.
type SQLDriver struct {
	db      *sqlx.DB
	dialect validator.Dialect
	logger  zerolog.Logger
}

// NewSQLDriver opens a pooled connection. driverName is the database/sql
// driver ("sqlite3", "postgres", "mysql"); maxOpenConns bounds the pool, 0
// keeps the database/sql default of unlimited. maxIdleConns 0 keeps idle
// connections at the open bound.
func NewSQLDriver(driverName, dsn string, maxOpenConns, maxIdleConns int, logger zerolog.Logger) (*SQLDriver, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, dbErr("connect", fmt.Sprintf("opening %s connection", driverName), err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns <= 0 {
		maxIdleConns = maxOpenConns
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	return &SQLDriver{
		db:      db,
		dialect: dialectFor(driverName),
		logger:  logger.With().Str("backend", "sql").Str("driver", driverName).Logger(),
	}, nil
}

func dialectFor(driverName string) validator.Dialect {
	switch {
	case strings.HasPrefix(driverName, "sqlite"):
		return validator.DialectSQLite
	case strings.HasPrefix(driverName, "mysql"):
		return validator.DialectMySQL
	default:
		return validator.DialectPostgreSQL
	}
}

func (d *SQLDriver) placeholderStyle() translator.PlaceholderStyle {
	if d.dialect == validator.DialectPostgreSQL {
		return translator.PlaceholderDollar
	}
	return translator.PlaceholderQuestion
}

// ExecuteQuery translates and runs a SELECT, converting each native row into
// a Row via a column-value map.
func (d *SQLDriver) ExecuteQuery(ctx context.Context, stmt ast.Statement) ([]Row, error) {
	cmd, err := translator.TranslateSQL(stmt, d.placeholderStyle())
	if err != nil {
		return nil, err
	}
	d.logger.Debug().Str("sql", cmd.SQL).Int("params", len(cmd.Params)).Msg("executing query")

	rows, err := d.db.QueryContext(ctx, cmd.SQL, cmd.Params...)
	if err != nil {
		return nil, dbErr("query", cmd.SQL, err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// ExecuteUpdate translates and runs a mutation, returning the affected row
// count.
func (d *SQLDriver) ExecuteUpdate(ctx context.Context, stmt ast.Statement) (int64, error) {
	switch stmt.(type) {
	case *ast.InsertQuery, *ast.UpdateQuery, *ast.DeleteQuery, *ast.RawQuery:
	default:
		return 0, dbErr("update", fmt.Sprintf("%T is not a mutation", stmt), nil)
	}
	cmd, err := translator.TranslateSQL(stmt, d.placeholderStyle())
	if err != nil {
		return 0, err
	}
	d.logger.Debug().Str("sql", cmd.SQL).Int("params", len(cmd.Params)).Msg("executing update")

	result, err := d.db.ExecContext(ctx, cmd.SQL, cmd.Params...)
	if err != nil {
		return 0, dbErr("update", cmd.SQL, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, dbErr("update", "reading affected row count", err)
	}
	return affected, nil
}

// ExecuteDDL translates and runs a schema statement.
func (d *SQLDriver) ExecuteDDL(ctx context.Context, stmt ast.Statement) error {
	switch stmt.(type) {
	case *ast.CreateTableQuery, *ast.RawQuery:
	default:
		return dbErr("ddl", fmt.Sprintf("%T is not a DDL statement", stmt), nil)
	}
	cmd, err := translator.TranslateSQL(stmt, d.placeholderStyle())
	if err != nil {
		return err
	}
	d.logger.Debug().Str("sql", cmd.SQL).Msg("executing ddl")

	if _, err := d.db.ExecContext(ctx, cmd.SQL, cmd.Params...); err != nil {
		return dbErr("ddl", cmd.SQL, err)
	}
	return nil
}

// GetTables lists user tables via dialect-specific catalog queries.
func (d *SQLDriver) GetTables(ctx context.Context) ([]string, error) {
	var query string
	switch d.dialect {
	case validator.DialectSQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	case validator.DialectMySQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	default:
		query = "SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = 'public' ORDER BY tablename"
	}

	var tables []string
	if err := d.db.SelectContext(ctx, &tables, query); err != nil {
		return nil, dbErr("tables", "listing tables", err)
	}
	return tables, nil
}

// GetColumns describes a table's columns via the dialect's catalog.
func (d *SQLDriver) GetColumns(ctx context.Context, table string) ([]ast.ColumnDefinition, error) {
	if d.dialect == validator.DialectSQLite {
		return d.sqliteColumns(ctx, table)
	}
	return d.standardColumns(ctx, table)
}

func (d *SQLDriver) sqliteColumns(ctx context.Context, table string) ([]ast.ColumnDefinition, error) {
	type tableInfo struct {
		Name    string         `db:"name"`
		Type    string         `db:"type"`
		NotNull int            `db:"notnull"`
		Pk      int            `db:"pk"`
		Default sql.NullString `db:"dflt_value"`
	}
	var infos []tableInfo
	query := `SELECT name, type, "notnull", pk, dflt_value FROM pragma_table_info(?)`
	if err := d.db.SelectContext(ctx, &infos, query, table); err != nil {
		return nil, dbErrf("columns", err, "describing table %s", table)
	}
	if len(infos) == 0 {
		return nil, dbErrf("columns", nil, "table %s does not exist", table)
	}

	columns := make([]ast.ColumnDefinition, 0, len(infos))
	for _, info := range infos {
		col := ast.ColumnDefinition{
			Name:       info.Name,
			Type:       info.Type,
			Nullable:   info.NotNull == 0 && info.Pk == 0,
			PrimaryKey: info.Pk > 0,
		}
		if info.Default.Valid {
			col.DefaultValue = ast.StringValue(info.Default.String)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func (d *SQLDriver) standardColumns(ctx context.Context, table string) ([]ast.ColumnDefinition, error) {
	type columnInfo struct {
		Name     string         `db:"column_name"`
		Type     string         `db:"data_type"`
		Nullable string         `db:"is_nullable"`
		Default  sql.NullString `db:"column_default"`
	}
	var query string
	if d.dialect == validator.DialectMySQL {
		query = `SELECT column_name, data_type, is_nullable, column_default
			FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position`
	} else {
		query = `SELECT column_name, data_type, is_nullable, column_default
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position`
	}

	var infos []columnInfo
	if err := d.db.SelectContext(ctx, &infos, query, table); err != nil {
		return nil, dbErrf("columns", err, "describing table %s", table)
	}
	if len(infos) == 0 {
		return nil, dbErrf("columns", nil, "table %s does not exist", table)
	}

	columns := make([]ast.ColumnDefinition, 0, len(infos))
	for _, info := range infos {
		col := ast.ColumnDefinition{
			Name:     info.Name,
			Type:     info.Type,
			Nullable: strings.EqualFold(info.Nullable, "YES"),
		}
		if info.Default.Valid {
			col.DefaultValue = ast.StringValue(info.Default.String)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// Execute validates and runs raw SQL text with positional parameters.
func (d *SQLDriver) Execute(ctx context.Context, raw string, params ...any) (int64, error) {
	if err := validator.Validate(raw, d.dialect); err != nil {
		return 0, dbErr("execute", "invalid SQL", err)
	}
	d.logger.Debug().Str("sql", raw).Int("params", len(params)).Msg("executing raw")

	result, err := d.db.ExecContext(ctx, raw, params...)
	if err != nil {
		return 0, dbErr("execute", raw, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, dbErr("execute", "reading affected row count", err)
	}
	return affected, nil
}

// Close releases the pool. database/sql makes repeated Close a no-op.
func (d *SQLDriver) Close() error {
	return d.db.Close()
}

// scanRows converts native rows into Rows, stringifying []byte values the
// way text-mode drivers hand them back.
func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, dbErr("query", "reading result columns", err)
	}

	var results []Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, dbErr("query", "scanning result row", err)
		}

		record := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		results = append(results, NewRow(record))
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("query", "iterating result rows", err)
	}
	return results, nil
}
