package translator

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/codeyousef/aetherdb/engine/ast"
)

// FirestoreCommand is one HTTP call against a Firestore-style document
// store. Method GET/POST/PATCH/DELETE decides the request shape; a
// structured query travels in Body, single-document mutations address
// DocumentID under Collection.
type FirestoreCommand struct {
	Collection string
	Method     string
	Body       map[string]any
	DocumentID string
	Query      url.Values
}

// firestoreOperators maps comparison operators to structured-query
// fieldFilter operator names.
var firestoreOperators = map[ast.ComparisonOperator]string{
	ast.Equals:             "EQUAL",
	ast.NotEquals:          "NOT_EQUAL",
	ast.GreaterThan:        "GREATER_THAN",
	ast.GreaterThanOrEqual: "GREATER_THAN_OR_EQUAL",
	ast.LessThan:           "LESS_THAN",
	ast.LessThanOrEqual:    "LESS_THAN_OR_EQUAL",
}

// TranslateFirestore compiles a statement into a document-store command.
// Constructs the protocol cannot express fail with UnsupportedError before
// any translation output is produced.
func TranslateFirestore(stmt ast.Statement) (*FirestoreCommand, error) {
	if err := checkFirestoreSupport(stmt); err != nil {
		return nil, err
	}
	switch s := stmt.(type) {
	case *ast.SelectQuery:
		return translateFirestoreSelect(s)
	case *ast.InsertQuery:
		return translateFirestoreInsert(s)
	case *ast.UpdateQuery:
		return translateFirestoreUpdate(s)
	case *ast.DeleteQuery:
		return translateFirestoreDelete(s)
	default:
		return nil, Unsupported(BackendFirestore, statementName(stmt))
	}
}

// checkFirestoreSupport is the capability gate: it rejects every AST shape
// the structured-query protocol has no encoding for. Keeping the check ahead
// of translation makes the unsupported-operation signal a designed contract
// rather than an accident of traversal order.
func checkFirestoreSupport(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.SelectQuery:
		if len(s.Joins) > 0 {
			return Unsupported(BackendFirestore, "JOIN")
		}
		if s.Distinct {
			return Unsupported(BackendFirestore, "DISTINCT")
		}
		return checkFirestoreClause(s.Where)
	case *ast.InsertQuery:
		return nil
	case *ast.UpdateQuery:
		if s.Where == nil {
			return Unsupported(BackendFirestore, "filter-based mutation (single-document mutation requires an identity filter)")
		}
		_, err := identityDocumentID(s.Where, BackendFirestore)
		return err
	case *ast.DeleteQuery:
		if s.Where == nil {
			return Unsupported(BackendFirestore, "filter-based mutation (single-document mutation requires an identity filter)")
		}
		_, err := identityDocumentID(s.Where, BackendFirestore)
		return err
	case *ast.CreateTableQuery:
		return Unsupported(BackendFirestore, "CREATE TABLE")
	case *ast.RawQuery:
		return Unsupported(BackendFirestore, "raw query text")
	default:
		return Unsupported(BackendFirestore, statementName(stmt))
	}
}

func checkFirestoreClause(clause ast.WhereClause) error {
	switch w := clause.(type) {
	case nil:
		return nil
	case *ast.Condition:
		if _, _, ok := conditionOnLiteral(w); !ok {
			return Unsupported(BackendFirestore, "conditions comparing anything but a column to a literal")
		}
		return nil
	case *ast.And:
		for _, child := range w.Clauses {
			if err := checkFirestoreClause(child); err != nil {
				return err
			}
		}
		return nil
	case *ast.Or:
		for _, child := range w.Clauses {
			if err := checkFirestoreClause(child); err != nil {
				return err
			}
		}
		return nil
	case *ast.In, *ast.IsNull, *ast.IsNotNull, *ast.Between:
		return nil
	case *ast.Like:
		return Unsupported(BackendFirestore, "LIKE")
	case *ast.Not:
		return Unsupported(BackendFirestore, "NOT")
	case *ast.InSubQuery:
		return Unsupported(BackendFirestore, "sub-queries")
	default:
		return Unsupported(BackendFirestore, fmt.Sprintf("%T", clause))
	}
}

func translateFirestoreSelect(q *ast.SelectQuery) (*FirestoreCommand, error) {
	structured := map[string]any{
		"from": []any{map[string]any{"collectionId": q.From}},
	}

	if cols, ok := columnNames(q.Columns); ok {
		fields := make([]any, 0, len(cols))
		for _, col := range cols {
			fields = append(fields, map[string]any{"fieldPath": col})
		}
		structured["select"] = map[string]any{"fields": fields}
	}

	if q.Where != nil {
		filter, err := firestoreFilter(q.Where)
		if err != nil {
			return nil, err
		}
		structured["where"] = filter
	}

	if len(q.OrderBy) > 0 {
		var orderBy []any
		for _, ob := range q.OrderBy {
			col, ok := ob.Column.(*ast.ColumnRef)
			if !ok {
				return nil, Unsupported(BackendFirestore, "ordering by a non-column expression")
			}
			direction := "ASCENDING"
			if ob.Direction == ast.Descending {
				direction = "DESCENDING"
			}
			orderBy = append(orderBy, map[string]any{
				"field":     map[string]any{"fieldPath": col.Column},
				"direction": direction,
			})
		}
		structured["orderBy"] = orderBy
	}

	if q.Limit != nil {
		structured["limit"] = *q.Limit
	}
	if q.Offset != nil {
		structured["offset"] = *q.Offset
	}

	return &FirestoreCommand{
		Collection: q.From,
		Method:     "POST",
		Body:       map[string]any{"structuredQuery": structured},
	}, nil
}

// firestoreFilter renders a filter tree into the structured-query filter
// object. Between has no native operator in the protocol, so it is rewritten
// into an AND of the two boundary comparisons.
func firestoreFilter(clause ast.WhereClause) (map[string]any, error) {
	switch w := clause.(type) {
	case *ast.Condition:
		col, value, ok := conditionOnLiteral(w)
		if !ok {
			return nil, Unsupported(BackendFirestore, "conditions comparing anything but a column to a literal")
		}
		return fieldFilter(col.Column, firestoreOperators[w.Operator], encodeFirestoreValue(value)), nil

	case *ast.And:
		return compositeFilter("AND", w.Clauses)

	case *ast.Or:
		return compositeFilter("OR", w.Clauses)

	case *ast.In:
		values := make([]any, 0, len(w.Values))
		for _, v := range w.Values {
			values = append(values, encodeFirestoreValue(v))
		}
		array := map[string]any{"arrayValue": map[string]any{"values": values}}
		return fieldFilter(w.Column, "IN", array), nil

	case *ast.IsNull:
		return unaryFilter(w.Column, "IS_NULL"), nil

	case *ast.IsNotNull:
		return unaryFilter(w.Column, "IS_NOT_NULL"), nil

	case *ast.Between:
		return map[string]any{
			"compositeFilter": map[string]any{
				"op": "AND",
				"filters": []any{
					fieldFilter(w.Column, "GREATER_THAN_OR_EQUAL", encodeFirestoreValue(w.Lower)),
					fieldFilter(w.Column, "LESS_THAN_OR_EQUAL", encodeFirestoreValue(w.Upper)),
				},
			},
		}, nil

	default:
		return nil, Unsupported(BackendFirestore, fmt.Sprintf("%T", clause))
	}
}

func compositeFilter(op string, clauses []ast.WhereClause) (map[string]any, error) {
	filters := make([]any, 0, len(clauses))
	for _, child := range clauses {
		filter, err := firestoreFilter(child)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}
	return map[string]any{
		"compositeFilter": map[string]any{"op": op, "filters": filters},
	}, nil
}

func fieldFilter(column, op string, value any) map[string]any {
	return map[string]any{
		"fieldFilter": map[string]any{
			"field": map[string]any{"fieldPath": column},
			"op":    op,
			"value": value,
		},
	}
}

func unaryFilter(column, op string) map[string]any {
	return map[string]any{
		"unaryFilter": map[string]any{
			"field": map[string]any{"fieldPath": column},
			"op":    op,
		},
	}
}

// encodeFirestoreValue renders a literal as the protocol's type-tagged value
// object. Integers are string-encoded to avoid precision loss in JSON.
func encodeFirestoreValue(v ast.Value) map[string]any {
	switch val := v.(type) {
	case ast.StringValue:
		return map[string]any{"stringValue": string(val)}
	case ast.IntValue:
		return map[string]any{"integerValue": strconv.FormatInt(int64(val), 10)}
	case ast.LongValue:
		return map[string]any{"integerValue": strconv.FormatInt(int64(val), 10)}
	case ast.DoubleValue:
		return map[string]any{"doubleValue": float64(val)}
	case ast.BooleanValue:
		return map[string]any{"booleanValue": bool(val)}
	case ast.NullValue:
		return map[string]any{"nullValue": nil}
	default:
		return map[string]any{"nullValue": nil}
	}
}

func translateFirestoreInsert(q *ast.InsertQuery) (*FirestoreCommand, error) {
	if len(q.Columns) != len(q.Values) {
		return nil, fmt.Errorf("insert into %s: %d columns but %d values", q.Table, len(q.Columns), len(q.Values))
	}
	fields := make(map[string]any, len(q.Columns))
	documentID := ""
	for i, col := range q.Columns {
		// An explicit identity column becomes the document address, not a
		// stored field.
		if isIdentityColumn(col) {
			documentID = ast.Format(q.Values[i])
			continue
		}
		fields[col] = encodeFirestoreValue(q.Values[i])
	}
	return &FirestoreCommand{
		Collection: q.Table,
		Method:     "POST",
		Body:       map[string]any{"fields": fields},
		DocumentID: documentID,
	}, nil
}

func translateFirestoreUpdate(q *ast.UpdateQuery) (*FirestoreCommand, error) {
	docID, err := identityDocumentID(q.Where, BackendFirestore)
	if err != nil {
		return nil, err
	}
	if len(q.Assignments) == 0 {
		return nil, fmt.Errorf("update %s: no assignments", q.Table)
	}
	fields := make(map[string]any, len(q.Assignments))
	params := url.Values{}
	for _, a := range q.Assignments {
		fields[a.Column] = encodeFirestoreValue(a.Value)
		params.Add("updateMask.fieldPaths", a.Column)
	}
	return &FirestoreCommand{
		Collection: q.Table,
		Method:     "PATCH",
		Body:       map[string]any{"fields": fields},
		DocumentID: docID,
		Query:      params,
	}, nil
}

func translateFirestoreDelete(q *ast.DeleteQuery) (*FirestoreCommand, error) {
	docID, err := identityDocumentID(q.Where, BackendFirestore)
	if err != nil {
		return nil, err
	}
	return &FirestoreCommand{
		Collection: q.Table,
		Method:     "DELETE",
		DocumentID: docID,
	}, nil
}
