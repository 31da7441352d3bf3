package aetherdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codeyousef/aetherdb/engine/ast"
	"github.com/codeyousef/aetherdb/engine/translator"
)

const defaultFirestoreEndpoint = "https://firestore.googleapis.com/v1"

// FirestoreDriver executes statements against a Firestore-style document
// store over its REST surface. Mutations address exactly one document;
// catalog and raw-text operations are domain errors.
type FirestoreDriver struct {
	baseURL string
	parent  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewFirestoreDriver builds a driver for one project database. baseURL
// overrides the public endpoint for emulators and tests; database defaults
// to "(default)".
func NewFirestoreDriver(baseURL, projectID, database string, timeout time.Duration, logger zerolog.Logger) *FirestoreDriver {
	if baseURL == "" {
		baseURL = defaultFirestoreEndpoint
	}
	if database == "" {
		database = "(default)"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FirestoreDriver{
		baseURL: strings.TrimRight(baseURL, "/"),
		parent:  fmt.Sprintf("projects/%s/databases/%s/documents", projectID, database),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("backend", "firestore").Logger(),
	}
}

func (d *FirestoreDriver) ExecuteQuery(ctx context.Context, stmt ast.Statement) ([]Row, error) {
	cmd, err := translator.TranslateFirestore(stmt)
	if err != nil {
		return nil, err
	}
	if cmd.Method != http.MethodPost || cmd.Body["structuredQuery"] == nil {
		return nil, dbErr("query", fmt.Sprintf("%s is not a query", cmd.Method), nil)
	}

	target := fmt.Sprintf("%s/%s:runQuery", d.baseURL, d.parent)
	payload, err := d.call(ctx, http.MethodPost, target, cmd.Body)
	if err != nil {
		return nil, err
	}

	// runQuery answers with one entry per matched document, plus bare
	// progress entries that carry no document.
	var entries []struct {
		Document *struct {
			Name   string                     `json:"name"`
			Fields map[string]json.RawMessage `json:"fields"`
		} `json:"document"`
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, dbErr("query", "malformed query response", err)
	}

	var rows []Row
	for _, entry := range entries {
		if entry.Document == nil {
			continue
		}
		record := make(map[string]any, len(entry.Document.Fields)+1)
		for field, raw := range entry.Document.Fields {
			record[field] = decodeFirestoreValue(raw)
		}
		if _, ok := record["id"]; !ok {
			record["id"] = documentIDFromName(entry.Document.Name)
		}
		rows = append(rows, NewRow(record))
	}
	return rows, nil
}

func (d *FirestoreDriver) ExecuteUpdate(ctx context.Context, stmt ast.Statement) (int64, error) {
	cmd, err := translator.TranslateFirestore(stmt)
	if err != nil {
		return 0, err
	}

	// Collection and document ids are caller-supplied and must stay inside
	// their path segment, so they are never concatenated raw.
	var target string
	switch cmd.Method {
	case http.MethodPost:
		// Document creation. A translated identity value becomes the
		// document id; otherwise one is minted client-side so the caller
		// can observe the address.
		docID := cmd.DocumentID
		if docID == "" {
			docID = uuid.NewString()
		}
		params := url.Values{"documentId": []string{docID}}
		target = fmt.Sprintf("%s/%s/%s?%s", d.baseURL, d.parent, url.PathEscape(cmd.Collection), params.Encode())
	case http.MethodPatch, http.MethodDelete:
		target = fmt.Sprintf("%s/%s/%s/%s", d.baseURL, d.parent, url.PathEscape(cmd.Collection), url.PathEscape(cmd.DocumentID))
		if len(cmd.Query) > 0 {
			target += "?" + cmd.Query.Encode()
		}
	default:
		return 0, dbErr("update", fmt.Sprintf("%s is not a mutation", cmd.Method), nil)
	}

	if _, err := d.call(ctx, cmd.Method, target, cmd.Body); err != nil {
		return 0, err
	}
	// Every mutation addresses exactly one document.
	return 1, nil
}

// ExecuteDDL is rejected by translation: document collections have no
// schema statements.
func (d *FirestoreDriver) ExecuteDDL(ctx context.Context, stmt ast.Statement) error {
	_, err := translator.TranslateFirestore(stmt)
	if err != nil {
		return err
	}
	return translator.Unsupported(translator.BackendFirestore, "DDL")
}

// GetTables lists collection ids under the database root.
func (d *FirestoreDriver) GetTables(ctx context.Context) ([]string, error) {
	target := fmt.Sprintf("%s/%s:listCollectionIds", d.baseURL, d.parent)
	payload, err := d.call(ctx, http.MethodPost, target, map[string]any{})
	if err != nil {
		return nil, err
	}
	var result struct {
		CollectionIDs []string `json:"collectionIds"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, dbErr("tables", "malformed collection listing", err)
	}
	return result.CollectionIDs, nil
}

// GetColumns is a domain error: documents in one collection need not share
// a shape, so there is no column catalog to read.
func (d *FirestoreDriver) GetColumns(ctx context.Context, table string) ([]ast.ColumnDefinition, error) {
	return nil, translator.Unsupported(translator.BackendFirestore, "column introspection")
}

// Execute is a domain error: the document store has no raw query text.
func (d *FirestoreDriver) Execute(ctx context.Context, raw string, params ...any) (int64, error) {
	return 0, translator.Unsupported(translator.BackendFirestore, "raw query text")
}

// Close drops idle connections. Safe to call repeatedly.
func (d *FirestoreDriver) Close() error {
	d.client.CloseIdleConnections()
	return nil
}

func (d *FirestoreDriver) call(ctx context.Context, method, target string, body map[string]any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, dbErr(strings.ToLower(method), "encoding request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, dbErr(strings.ToLower(method), "building request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	d.logger.Debug().Str("method", method).Str("url", target).Msg("document store call")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, dbErrf(strings.ToLower(method), err, "%s %s", method, target)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dbErr(strings.ToLower(method), "reading response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, dbErrf(strings.ToLower(method), nil, "%s %s returned %d: %s",
			method, target, resp.StatusCode, truncate(string(payload), 200))
	}
	return payload, nil
}

// decodeFirestoreValue unwraps one type-tagged value object into a native
// Go value. Unknown tags come back as the raw JSON text.
func decodeFirestoreValue(raw json.RawMessage) any {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return string(raw)
	}
	for tag, inner := range tagged {
		switch tag {
		case "stringValue", "timestampValue", "referenceValue":
			var s string
			if json.Unmarshal(inner, &s) == nil {
				return s
			}
		case "integerValue":
			// Integers travel as decimal strings.
			var s string
			if json.Unmarshal(inner, &s) == nil {
				if n, err := strconv.ParseInt(s, 10, 64); err == nil {
					return n
				}
				return s
			}
		case "doubleValue":
			var f float64
			if json.Unmarshal(inner, &f) == nil {
				return f
			}
		case "booleanValue":
			var b bool
			if json.Unmarshal(inner, &b) == nil {
				return b
			}
		case "nullValue":
			return nil
		case "arrayValue":
			var arr struct {
				Values []json.RawMessage `json:"values"`
			}
			if json.Unmarshal(inner, &arr) == nil {
				out := make([]any, 0, len(arr.Values))
				for _, v := range arr.Values {
					out = append(out, decodeFirestoreValue(v))
				}
				return out
			}
		case "mapValue":
			var m struct {
				Fields map[string]json.RawMessage `json:"fields"`
			}
			if json.Unmarshal(inner, &m) == nil {
				out := make(map[string]any, len(m.Fields))
				for k, v := range m.Fields {
					out[k] = decodeFirestoreValue(v)
				}
				return out
			}
		}
	}
	return string(raw)
}

// documentIDFromName extracts the last path segment of a full document name.
func documentIDFromName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
