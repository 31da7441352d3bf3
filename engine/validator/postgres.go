package validator

import (
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// ValidatePostgreSQL validates PostgreSQL SQL syntax.
func ValidatePostgreSQL(query string) error {
	_, err := pg_query.Parse(query)
	return err
}
