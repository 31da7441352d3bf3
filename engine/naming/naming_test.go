package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableName(t *testing.T) {
	assert.Equal(t, "users", TableName("User"))
	assert.Equal(t, "people", TableName("Person"))
	assert.Equal(t, "categories", TableName("Category"))
	assert.Equal(t, "orders", TableName("orders"))
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "users", CollectionName("User"))
}

func TestEntityName(t *testing.T) {
	assert.Equal(t, "user", EntityName("users"))
	assert.Equal(t, "person", EntityName("people"))
}
