// Package naming publishes the model-name to table/collection naming
// convention shared with the model layer: lowercase the entity name and
// pluralize it.
package naming

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// TableName converts a model/entity name to its relational table name.
func TableName(entity string) string {
	return inflection.Plural(strings.ToLower(entity))
}

// CollectionName converts a model/entity name to its document-store
// collection name. Same rule as TableName.
func CollectionName(entity string) string {
	return TableName(entity)
}

// EntityName converts a table or collection name back to the singular
// entity form.
func EntityName(table string) string {
	return inflection.Singular(strings.ToLower(table))
}
