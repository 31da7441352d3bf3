package translator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/codeyousef/aetherdb/engine/ast"
)

// RESTCommand is one HTTP call against a PostgREST-style backend. Body is
// JSON-encoded by the driver; filter values are carried in Query and
// percent-encoded by url.Values, never concatenated into the path.
type RESTCommand struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

// restOperators maps comparison operators to PostgREST filter prefixes.
var restOperators = map[ast.ComparisonOperator]string{
	ast.Equals:             "eq",
	ast.NotEquals:          "neq",
	ast.GreaterThan:        "gt",
	ast.GreaterThanOrEqual: "gte",
	ast.LessThan:           "lt",
	ast.LessThanOrEqual:    "lte",
}

// TranslateREST compiles a statement into a PostgREST-style HTTP command.
func TranslateREST(stmt ast.Statement) (*RESTCommand, error) {
	switch s := stmt.(type) {
	case *ast.SelectQuery:
		return translateRESTSelect(s)
	case *ast.InsertQuery:
		return translateRESTInsert(s)
	case *ast.UpdateQuery:
		return translateRESTUpdate(s)
	case *ast.DeleteQuery:
		return translateRESTDelete(s)
	default:
		return nil, Unsupported(BackendREST, statementName(stmt))
	}
}

func translateRESTSelect(q *ast.SelectQuery) (*RESTCommand, error) {
	if len(q.Joins) > 0 {
		return nil, Unsupported(BackendREST, "JOIN")
	}
	if q.Distinct {
		return nil, Unsupported(BackendREST, "DISTINCT")
	}

	params := url.Values{}
	if cols, ok := columnNames(q.Columns); ok {
		params.Set("select", strings.Join(cols, ","))
	}
	if q.Where != nil {
		if err := addRESTFilters(params, q.Where); err != nil {
			return nil, err
		}
	}
	if len(q.OrderBy) > 0 {
		var parts []string
		for _, ob := range q.OrderBy {
			col, ok := ob.Column.(*ast.ColumnRef)
			if !ok {
				return nil, Unsupported(BackendREST, "ordering by a non-column expression")
			}
			dir := "asc"
			if ob.Direction == ast.Descending {
				dir = "desc"
			}
			parts = append(parts, col.Column+"."+dir)
		}
		params.Set("order", strings.Join(parts, ","))
	}
	if q.Limit != nil {
		params.Set("limit", fmt.Sprintf("%d", *q.Limit))
	}
	if q.Offset != nil {
		params.Set("offset", fmt.Sprintf("%d", *q.Offset))
	}

	return &RESTCommand{Method: "GET", Path: "/" + q.From, Query: params}, nil
}

// columnNames extracts plain column names from a projection list. A missing
// or star projection selects everything, which PostgREST does by default.
func columnNames(columns []ast.Expression) ([]string, bool) {
	if len(columns) == 0 {
		return nil, false
	}
	var names []string
	for _, expr := range columns {
		switch e := expr.(type) {
		case *ast.Star:
			return nil, false
		case *ast.ColumnRef:
			names = append(names, e.Column)
		default:
			return nil, false
		}
	}
	return names, true
}

func translateRESTInsert(q *ast.InsertQuery) (*RESTCommand, error) {
	if len(q.Columns) != len(q.Values) {
		return nil, fmt.Errorf("insert into %s: %d columns but %d values", q.Table, len(q.Columns), len(q.Values))
	}
	body := make(map[string]any, len(q.Columns))
	for i, col := range q.Columns {
		body[col] = ast.Native(q.Values[i])
	}
	params := url.Values{}
	if len(q.Returning) > 0 {
		params.Set("select", strings.Join(q.Returning, ","))
	}
	return &RESTCommand{Method: "POST", Path: "/" + q.Table, Query: params, Body: body}, nil
}

func translateRESTUpdate(q *ast.UpdateQuery) (*RESTCommand, error) {
	if len(q.Assignments) == 0 {
		return nil, fmt.Errorf("update %s: no assignments", q.Table)
	}
	body := make(map[string]any, len(q.Assignments))
	for _, a := range q.Assignments {
		body[a.Column] = ast.Native(a.Value)
	}
	params := url.Values{}
	if q.Where != nil {
		if err := addRESTFilters(params, q.Where); err != nil {
			return nil, err
		}
	}
	return &RESTCommand{Method: "PATCH", Path: "/" + q.Table, Query: params, Body: body}, nil
}

func translateRESTDelete(q *ast.DeleteQuery) (*RESTCommand, error) {
	params := url.Values{}
	if q.Where != nil {
		if err := addRESTFilters(params, q.Where); err != nil {
			return nil, err
		}
	}
	return &RESTCommand{Method: "DELETE", Path: "/" + q.Table, Query: params}, nil
}

// addRESTFilters renders a filter tree into query parameters. Top-level AND
// flattens to repeated parameters, which the protocol combines implicitly.
func addRESTFilters(params url.Values, clause ast.WhereClause) error {
	switch w := clause.(type) {
	case *ast.Condition:
		col, value, ok := conditionOnLiteral(w)
		if !ok {
			return Unsupported(BackendREST, "conditions comparing anything but a column to a literal")
		}
		params.Add(col.Column, restOperators[w.Operator]+"."+ast.Format(value))
		return nil

	case *ast.And:
		for _, child := range w.Clauses {
			if err := addRESTFilters(params, child); err != nil {
				return err
			}
		}
		return nil

	case *ast.Or:
		var parts []string
		for _, child := range w.Clauses {
			token, err := restFilterToken(child)
			if err != nil {
				return err
			}
			parts = append(parts, token)
		}
		params.Add("or", "("+strings.Join(parts, ",")+")")
		return nil

	case *ast.In:
		if len(w.Values) == 0 {
			return fmt.Errorf("IN on %s: empty value list", w.Column)
		}
		var parts []string
		for _, v := range w.Values {
			parts = append(parts, quoteRESTListValue(v))
		}
		params.Add(w.Column, "in.("+strings.Join(parts, ",")+")")
		return nil

	case *ast.IsNull:
		params.Add(w.Column, "is.null")
		return nil

	case *ast.IsNotNull:
		params.Add(w.Column, "not.is.null")
		return nil

	case *ast.Between:
		params.Add(w.Column, "gte."+ast.Format(w.Lower))
		params.Add(w.Column, "lte."+ast.Format(w.Upper))
		return nil

	case *ast.Like:
		params.Add(w.Column, "like."+w.Pattern)
		return nil

	case *ast.Not:
		return Unsupported(BackendREST, "NOT")

	case *ast.InSubQuery:
		return Unsupported(BackendREST, "sub-queries")

	default:
		return Unsupported(BackendREST, fmt.Sprintf("%T", clause))
	}
}

// restFilterToken renders a single condition in the dotted form used inside
// or=(...) groups.
func restFilterToken(clause ast.WhereClause) (string, error) {
	switch w := clause.(type) {
	case *ast.Condition:
		col, value, ok := conditionOnLiteral(w)
		if !ok {
			return "", Unsupported(BackendREST, "conditions comparing anything but a column to a literal")
		}
		return col.Column + "." + restOperators[w.Operator] + "." + quoteRESTListValue(value), nil
	case *ast.IsNull:
		return w.Column + ".is.null", nil
	case *ast.IsNotNull:
		return w.Column + ".not.is.null", nil
	default:
		return "", Unsupported(BackendREST, "nesting anything but plain conditions inside OR")
	}
}

// quoteRESTListValue quotes string values inside in.(...) lists and or=(...)
// groups so commas or parentheses in the data cannot split the group.
func quoteRESTListValue(v ast.Value) string {
	if s, ok := v.(ast.StringValue); ok {
		return `"` + strings.ReplaceAll(string(s), `"`, `\"`) + `"`
	}
	return ast.Format(v)
}
