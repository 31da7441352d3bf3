package aetherdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/codeyousef/aetherdb/engine/ast"
	"github.com/codeyousef/aetherdb/engine/translator"
)

// RESTDriver executes statements against a PostgREST-style backend. Each
// logical operation is one HTTP call; requests share a client for standard
// keep-alive and nothing else.
type RESTDriver struct {
	baseURL string
	token   string
	client  *http.Client
	logger  zerolog.Logger
}

// NewRESTDriver builds a driver for the given base URL. token, when set, is
// sent as a bearer token.
func NewRESTDriver(baseURL, token string, timeout time.Duration, logger zerolog.Logger) *RESTDriver {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RESTDriver{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("backend", "rest").Logger(),
	}
}

func (d *RESTDriver) ExecuteQuery(ctx context.Context, stmt ast.Statement) ([]Row, error) {
	cmd, err := translator.TranslateREST(stmt)
	if err != nil {
		return nil, err
	}
	if cmd.Method != http.MethodGet {
		return nil, dbErr("query", fmt.Sprintf("%s is not a query", cmd.Method), nil)
	}

	var records []map[string]any
	if err := d.do(ctx, cmd, nil, &records); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, NewRow(record))
	}
	return rows, nil
}

func (d *RESTDriver) ExecuteUpdate(ctx context.Context, stmt ast.Statement) (int64, error) {
	cmd, err := translator.TranslateREST(stmt)
	if err != nil {
		return 0, err
	}
	if cmd.Method == http.MethodGet {
		return 0, dbErr("update", "SELECT is not a mutation", nil)
	}

	// Prefer: return=representation makes the backend echo the affected
	// records, which is the affected-row count.
	var records []map[string]any
	headers := map[string]string{"Prefer": "return=representation"}
	if err := d.do(ctx, cmd, headers, &records); err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}

// ExecuteDDL is rejected by translation: the filter protocol has no schema
// statements.
func (d *RESTDriver) ExecuteDDL(ctx context.Context, stmt ast.Statement) error {
	_, err := translator.TranslateREST(stmt)
	if err != nil {
		return err
	}
	return translator.Unsupported(translator.BackendREST, "DDL")
}

// GetTables reads the backend's OpenAPI description served at the root path
// and lists its definitions.
func (d *RESTDriver) GetTables(ctx context.Context) ([]string, error) {
	doc, err := d.openAPIDocument(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]string, 0, len(doc.Definitions))
	for name := range doc.Definitions {
		tables = append(tables, name)
	}
	return tables, nil
}

// GetColumns reads column descriptions from the OpenAPI definitions.
func (d *RESTDriver) GetColumns(ctx context.Context, table string) ([]ast.ColumnDefinition, error) {
	doc, err := d.openAPIDocument(ctx)
	if err != nil {
		return nil, err
	}
	def, ok := doc.Definitions[table]
	if !ok {
		return nil, dbErrf("columns", nil, "table %s does not exist", table)
	}
	required := make(map[string]bool, len(def.Required))
	for _, name := range def.Required {
		required[name] = true
	}
	columns := make([]ast.ColumnDefinition, 0, len(def.Properties))
	for name, prop := range def.Properties {
		columns = append(columns, ast.ColumnDefinition{
			Name:     name,
			Type:     prop.Type,
			Nullable: !required[name],
		})
	}
	return columns, nil
}

// Execute is a domain error: raw SQL cannot run on the filter protocol.
func (d *RESTDriver) Execute(ctx context.Context, raw string, params ...any) (int64, error) {
	return 0, translator.Unsupported(translator.BackendREST, "raw query text")
}

// Close drops idle connections. Safe to call repeatedly.
func (d *RESTDriver) Close() error {
	d.client.CloseIdleConnections()
	return nil
}

type openAPIDoc struct {
	Definitions map[string]struct {
		Required   []string `json:"required"`
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	} `json:"definitions"`
}

func (d *RESTDriver) openAPIDocument(ctx context.Context) (*openAPIDoc, error) {
	cmd := &translator.RESTCommand{Method: http.MethodGet, Path: "/", Query: url.Values{}}
	var doc openAPIDoc
	if err := d.do(ctx, cmd, map[string]string{"Accept": "application/openapi+json"}, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// do issues one HTTP call for a translated command and decodes the JSON
// response into out (skipped when out is nil or the body is empty).
func (d *RESTDriver) do(ctx context.Context, cmd *translator.RESTCommand, headers map[string]string, out any) error {
	target := d.baseURL + cmd.Path
	if len(cmd.Query) > 0 {
		target += "?" + cmd.Query.Encode()
	}

	var body io.Reader
	if cmd.Body != nil {
		encoded, err := json.Marshal(cmd.Body)
		if err != nil {
			return dbErr(strings.ToLower(cmd.Method), "encoding request body", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, cmd.Method, target, body)
	if err != nil {
		return dbErr(strings.ToLower(cmd.Method), "building request", err)
	}
	if cmd.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	d.logger.Debug().Str("method", cmd.Method).Str("url", target).Msg("rest call")

	resp, err := d.client.Do(req)
	if err != nil {
		return dbErrf(strings.ToLower(cmd.Method), err, "%s %s", cmd.Method, target)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return dbErr(strings.ToLower(cmd.Method), "reading response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dbErrf(strings.ToLower(cmd.Method), nil, "%s %s returned %d: %s",
			cmd.Method, target, resp.StatusCode, truncate(string(payload), 200))
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return dbErr(strings.ToLower(cmd.Method), "malformed response body", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
