package aetherdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeyousef/aetherdb/engine/ast"
	"github.com/codeyousef/aetherdb/engine/translator"
)

func newTestFirestoreDriver(server *httptest.Server) *FirestoreDriver {
	return NewFirestoreDriver(server.URL, "demo", "", time.Second, zerolog.Nop())
}

func TestFirestoreDriverQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/projects/demo/databases/(default)/documents:runQuery", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "structuredQuery")

		json.NewEncoder(w).Encode([]map[string]any{
			{"document": map[string]any{
				"name": "projects/demo/databases/(default)/documents/users/doc123",
				"fields": map[string]any{
					"name":   map[string]any{"stringValue": "alice"},
					"age":    map[string]any{"integerValue": "30"},
					"score":  map[string]any{"doubleValue": 9.5},
					"active": map[string]any{"booleanValue": true},
				},
			}},
			{"readTime": "2026-01-01T00:00:00Z"},
		})
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	rows, err := driver.ExecuteQuery(context.Background(), &ast.SelectQuery{
		From:  "users",
		Where: ast.Eq("active", ast.BooleanValue(true)),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	id, ok := rows[0].GetString("id")
	assert.True(t, ok)
	assert.Equal(t, "doc123", id)

	age, ok := rows[0].GetLong("age")
	assert.True(t, ok)
	assert.Equal(t, int64(30), age)

	score, ok := rows[0].GetDouble("score")
	assert.True(t, ok)
	assert.Equal(t, 9.5, score)

	active, ok := rows[0].GetBoolean("active")
	assert.True(t, ok)
	assert.True(t, active)
}

func TestFirestoreDriverInsertWithExplicitID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/projects/demo/databases/(default)/documents/users", r.URL.Path)
		assert.Equal(t, "doc123", r.URL.Query().Get("documentId"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	affected, err := driver.ExecuteUpdate(context.Background(), &ast.InsertQuery{
		Table:   "users",
		Columns: []string{"id", "name"},
		Values:  []ast.Value{ast.StringValue("doc123"), ast.StringValue("alice")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestFirestoreDriverInsertMintsIDWhenAbsent(t *testing.T) {
	var gotID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("documentId")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	_, err := driver.ExecuteUpdate(context.Background(), &ast.InsertQuery{
		Table:   "users",
		Columns: []string{"name"},
		Values:  []ast.Value{ast.StringValue("bob")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, gotID)
}

func TestFirestoreDriverUpdateSendsMask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/projects/demo/databases/(default)/documents/users/doc456", r.URL.Path)
		assert.Equal(t, []string{"name"}, r.URL.Query()["updateMask.fieldPaths"])
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	affected, err := driver.ExecuteUpdate(context.Background(), &ast.UpdateQuery{
		Table:       "users",
		Assignments: []ast.Assignment{{Column: "name", Value: ast.StringValue("carol")}},
		Where:       ast.Eq("id", ast.StringValue("doc456")),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestFirestoreDriverDeleteByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/projects/demo/databases/(default)/documents/users/doc456", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	affected, err := driver.ExecuteUpdate(context.Background(), &ast.DeleteQuery{
		Table: "users",
		Where: ast.Eq("id", ast.StringValue("doc456")),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestFirestoreDriverEscapesMetacharacterID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		// The update mask stays exactly what the translator set; the id's
		// metacharacters stay inside the path segment.
		assert.Equal(t, []string{"name"}, r.URL.Query()["updateMask.fieldPaths"])
		assert.Equal(t,
			"/projects/demo/databases/(default)/documents/users/doc1?updateMask.fieldPaths=secret",
			r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	affected, err := driver.ExecuteUpdate(context.Background(), &ast.UpdateQuery{
		Table:       "users",
		Assignments: []ast.Assignment{{Column: "name", Value: ast.StringValue("carol")}},
		Where:       ast.Eq("id", ast.StringValue("doc1?updateMask.fieldPaths=secret")),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestFirestoreDriverEscapesTraversalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.EscapedPath(), "/users/..%2F..%2Fother%2Fdoc2"),
			"escaped path %q", r.URL.EscapedPath())
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	_, err := driver.ExecuteUpdate(context.Background(), &ast.DeleteQuery{
		Table: "users",
		Where: ast.Eq("id", ast.StringValue("../../other/doc2")),
	})
	require.NoError(t, err)
}

func TestFirestoreDriverGetTables(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/demo/databases/(default)/documents:listCollectionIds", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"collectionIds": []string{"users", "orders"}})
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	tables, err := driver.GetTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "orders"}, tables)
}

func TestFirestoreDriverUnsupportedMakesNoCall(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	ctx := context.Background()

	// Filter-based mutation cannot address a single document.
	_, err := driver.ExecuteUpdate(ctx, &ast.DeleteQuery{
		Table: "users",
		Where: ast.Eq("age", ast.IntValue(30)),
	})
	var unsupported *translator.UnsupportedError
	assert.ErrorAs(t, err, &unsupported)

	_, err = driver.ExecuteQuery(ctx, &ast.SelectQuery{
		From:  "users",
		Where: &ast.Like{Column: "email", Pattern: "%x%"},
	})
	assert.ErrorAs(t, err, &unsupported)

	_, err = driver.GetColumns(ctx, "users")
	assert.ErrorAs(t, err, &unsupported)

	_, err = driver.Execute(ctx, "SELECT 1")
	assert.ErrorAs(t, err, &unsupported)

	assert.Zero(t, hits)
}

func TestFirestoreDriverErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"missing document"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	driver := newTestFirestoreDriver(server)
	_, err := driver.ExecuteUpdate(context.Background(), &ast.DeleteQuery{
		Table: "users",
		Where: ast.Eq("id", ast.StringValue("ghost")),
	})

	var dbe *DatabaseError
	require.ErrorAs(t, err, &dbe)
	assert.Contains(t, dbe.Message, "404")
}

func TestDecodeFirestoreValueNested(t *testing.T) {
	raw := json.RawMessage(`{
		"mapValue": {"fields": {
			"tags": {"arrayValue": {"values": [
				{"stringValue": "a"},
				{"integerValue": "2"}
			]}},
			"deleted": {"nullValue": null}
		}}
	}`)
	decoded := decodeFirestoreValue(raw)
	assert.Equal(t, map[string]any{
		"tags":    []any{"a", int64(2)},
		"deleted": nil,
	}, decoded)
}

func TestDocumentIDFromName(t *testing.T) {
	assert.Equal(t, "doc1", documentIDFromName("projects/p/databases/d/documents/users/doc1"))
	assert.Equal(t, "bare", documentIDFromName("bare"))
}
