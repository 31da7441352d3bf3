package aetherdb

import (
	"context"
	"fmt"

	"github.com/codeyousef/aetherdb/engine/ast"
)

// DatabaseDriver executes translated statements against one backend. All
// operations return domain errors: a construct the backend cannot express
// surfaces as *translator.UnsupportedError before any I/O, transport and
// parse failures as *DatabaseError wrapping the cause. Implementations are
// safe for concurrent use; no operation retries or wraps calls in implicit
// transactions.
type DatabaseDriver interface {
	// ExecuteQuery runs a SELECT and returns the result rows.
	ExecuteQuery(ctx context.Context, stmt ast.Statement) ([]Row, error)

	// ExecuteUpdate runs an INSERT, UPDATE or DELETE and returns the
	// affected row count.
	ExecuteUpdate(ctx context.Context, stmt ast.Statement) (int64, error)

	// ExecuteDDL runs a schema statement.
	ExecuteDDL(ctx context.Context, stmt ast.Statement) error

	// GetTables lists the tables or collections the backend exposes.
	GetTables(ctx context.Context) ([]string, error)

	// GetColumns describes the columns of one table.
	GetColumns(ctx context.Context, table string) ([]ast.ColumnDefinition, error)

	// Execute runs raw backend-native command text with positional
	// parameters. Only the SQL backend supports it.
	Execute(ctx context.Context, raw string, params ...any) (int64, error)

	// Close releases the underlying transport. Closing an already closed
	// driver is a no-op.
	Close() error
}

// DatabaseError wraps a transport or backend failure, always carrying the
// original cause.
type DatabaseError struct {
	Op      string
	Message string
	Err     error
}

func (e *DatabaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// dbErr builds a DatabaseError.
func dbErr(op, message string, cause error) error {
	return &DatabaseError{Op: op, Message: message, Err: cause}
}

func dbErrf(op string, cause error, format string, args ...any) error {
	return &DatabaseError{Op: op, Message: fmt.Sprintf(format, args...), Err: cause}
}
