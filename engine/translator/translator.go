// Package translator compiles the backend-neutral query AST into per-backend
// wire commands. Every translator is a pure function: no I/O, no shared
// state, safe to call from any number of goroutines.
package translator

import (
	"fmt"

	"github.com/codeyousef/aetherdb/engine/ast"
)

// Backend identifies a translation target.
type Backend string

const (
	BackendSQL       Backend = "SQL"
	BackendREST      Backend = "REST"
	BackendFirestore Backend = "Firestore"
	BackendMongoDB   Backend = "MongoDB"
)

// UnsupportedError reports a construct the target backend cannot express.
// It is raised during translation, before any network call, and is never
// retried or downgraded: the caller built an AST the active backend cannot
// run.
type UnsupportedError struct {
	Backend   Backend
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s backend does not support %s", e.Backend, e.Construct)
}

// Unsupported builds an UnsupportedError.
func Unsupported(backend Backend, construct string) error {
	return &UnsupportedError{Backend: backend, Construct: construct}
}

// statementName names a statement kind for error messages.
func statementName(stmt ast.Statement) string {
	switch stmt.(type) {
	case *ast.SelectQuery:
		return "SELECT"
	case *ast.InsertQuery:
		return "INSERT"
	case *ast.UpdateQuery:
		return "UPDATE"
	case *ast.DeleteQuery:
		return "DELETE"
	case *ast.CreateTableQuery:
		return "CREATE TABLE"
	case *ast.RawQuery:
		return "raw query text"
	default:
		return fmt.Sprintf("%T", stmt)
	}
}

// conditionOnLiteral checks that a condition compares a plain column against
// a literal, the only condition shape the HTTP filter protocols can express.
func conditionOnLiteral(cond *ast.Condition) (*ast.ColumnRef, ast.Value, bool) {
	col, ok := cond.Left.(*ast.ColumnRef)
	if !ok {
		return nil, nil, false
	}
	lit, ok := cond.Right.(*ast.Literal)
	if !ok {
		return nil, nil, false
	}
	return col, lit.Value, true
}

// isIdentityColumn reports whether a column addresses the document identity.
func isIdentityColumn(name string) bool {
	return name == "id" || name == "_id"
}

// identityDocumentID extracts the document id from a mutation WHERE clause.
// The clause must be a single equality condition on the identity column;
// anything else cannot address a single document.
func identityDocumentID(where ast.WhereClause, backend Backend) (string, error) {
	cond, ok := where.(*ast.Condition)
	if !ok {
		return "", Unsupported(backend, "filter-based mutation (single-document mutation requires an identity filter)")
	}
	col, value, ok := conditionOnLiteral(cond)
	if !ok || cond.Operator != ast.Equals || !isIdentityColumn(col.Column) {
		return "", Unsupported(backend, "filter-based mutation (single-document mutation requires an identity filter)")
	}
	switch value.(type) {
	case ast.StringValue, ast.IntValue, ast.LongValue:
		return ast.Format(value), nil
	default:
		return "", Unsupported(backend, fmt.Sprintf("%T as document id", value))
	}
}
