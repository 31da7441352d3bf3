// Package validator checks raw SQL text before execution. Generated SQL
// never reaches it; only caller-supplied raw statements do.
package validator

import (
	"fmt"
)

// Dialect names a SQL dialect with a validator.
type Dialect string

const (
	DialectPostgreSQL Dialect = "postgres"
	DialectMySQL      Dialect = "mysql"
	DialectSQLite     Dialect = "sqlite"
)

// ValidationResult contains detailed validation info.
type ValidationResult struct {
	Valid bool
	Error string
}

// Validate checks SQL syntax for the given dialect. SQLite has no standalone
// parser in the stack; its statements pass through and fail at execution.
func Validate(query string, dialect Dialect) error {
	switch dialect {
	case DialectPostgreSQL:
		return ValidatePostgreSQL(query)
	case DialectMySQL:
		return ValidateMySQL(query)
	case DialectSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported SQL dialect: %s", dialect)
	}
}

// ValidateWithDetails returns a detailed validation result.
func ValidateWithDetails(query string, dialect Dialect) (*ValidationResult, error) {
	err := Validate(query, dialect)
	if err != nil {
		return &ValidationResult{Valid: false, Error: err.Error()}, nil
	}
	return &ValidationResult{Valid: true}, nil
}
