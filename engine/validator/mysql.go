package validator

import (
	"github.com/xwb1989/sqlparser"
)

// ValidateMySQL validates MySQL SQL syntax.
func ValidateMySQL(query string) error {
	_, err := sqlparser.Parse(query)
	return err
}
