package translator

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/codeyousef/aetherdb/engine/ast"
)

// MongoCommand is one MongoDB operation: a find with its options, or a
// single mutation.
type MongoCommand struct {
	Collection string
	Operation  string // find, insertOne, updateMany, deleteMany
	Filter     bson.M
	Document   bson.M
	Update     bson.M
	Projection bson.D
	Sort       bson.D
	Limit      *int64
	Skip       *int64
}

// mongoOperators maps comparison operators to MongoDB query operators.
var mongoOperators = map[ast.ComparisonOperator]string{
	ast.Equals:             "$eq",
	ast.NotEquals:          "$ne",
	ast.GreaterThan:        "$gt",
	ast.GreaterThanOrEqual: "$gte",
	ast.LessThan:           "$lt",
	ast.LessThanOrEqual:    "$lte",
}

// TranslateMongoDB compiles a statement into a MongoDB command. Unlike the
// Firestore protocol, filter-based mutations are expressible here and map to
// updateMany/deleteMany.
func TranslateMongoDB(stmt ast.Statement) (*MongoCommand, error) {
	switch s := stmt.(type) {
	case *ast.SelectQuery:
		return translateMongoFind(s)
	case *ast.InsertQuery:
		return translateMongoInsert(s)
	case *ast.UpdateQuery:
		return translateMongoUpdate(s)
	case *ast.DeleteQuery:
		return translateMongoDelete(s)
	default:
		return nil, Unsupported(BackendMongoDB, statementName(stmt))
	}
}

func translateMongoFind(q *ast.SelectQuery) (*MongoCommand, error) {
	if len(q.Joins) > 0 {
		return nil, Unsupported(BackendMongoDB, "JOIN")
	}
	if q.Distinct {
		return nil, Unsupported(BackendMongoDB, "DISTINCT")
	}

	cmd := &MongoCommand{Collection: q.From, Operation: "find", Filter: bson.M{}}

	if q.Where != nil {
		filter, err := mongoFilter(q.Where)
		if err != nil {
			return nil, err
		}
		cmd.Filter = filter
	}
	if cols, ok := columnNames(q.Columns); ok {
		for _, col := range cols {
			cmd.Projection = append(cmd.Projection, bson.E{Key: col, Value: 1})
		}
	}
	for _, ob := range q.OrderBy {
		col, ok := ob.Column.(*ast.ColumnRef)
		if !ok {
			return nil, Unsupported(BackendMongoDB, "ordering by a non-column expression")
		}
		direction := 1
		if ob.Direction == ast.Descending {
			direction = -1
		}
		cmd.Sort = append(cmd.Sort, bson.E{Key: col.Column, Value: direction})
	}
	if q.Limit != nil {
		limit := int64(*q.Limit)
		cmd.Limit = &limit
	}
	if q.Offset != nil {
		skip := int64(*q.Offset)
		cmd.Skip = &skip
	}
	return cmd, nil
}

func mongoFilter(clause ast.WhereClause) (bson.M, error) {
	switch w := clause.(type) {
	case *ast.Condition:
		col, value, ok := conditionOnLiteral(w)
		if !ok {
			return nil, Unsupported(BackendMongoDB, "conditions comparing anything but a column to a literal")
		}
		return bson.M{col.Column: bson.M{mongoOperators[w.Operator]: ast.Native(value)}}, nil

	case *ast.And:
		children, err := mongoFilters(w.Clauses)
		if err != nil {
			return nil, err
		}
		return bson.M{"$and": children}, nil

	case *ast.Or:
		children, err := mongoFilters(w.Clauses)
		if err != nil {
			return nil, err
		}
		return bson.M{"$or": children}, nil

	case *ast.Not:
		inner, err := mongoFilter(w.Clause)
		if err != nil {
			return nil, err
		}
		return bson.M{"$nor": bson.A{inner}}, nil

	case *ast.In:
		values := make(bson.A, 0, len(w.Values))
		for _, v := range w.Values {
			values = append(values, ast.Native(v))
		}
		return bson.M{w.Column: bson.M{"$in": values}}, nil

	case *ast.IsNull:
		return bson.M{w.Column: bson.M{"$eq": nil}}, nil

	case *ast.IsNotNull:
		return bson.M{w.Column: bson.M{"$ne": nil}}, nil

	case *ast.Between:
		return bson.M{w.Column: bson.M{
			"$gte": ast.Native(w.Lower),
			"$lte": ast.Native(w.Upper),
		}}, nil

	case *ast.Like:
		return bson.M{w.Column: bson.M{"$regex": likePatternToRegex(w.Pattern)}}, nil

	case *ast.InSubQuery:
		return nil, Unsupported(BackendMongoDB, "sub-queries")

	default:
		return nil, Unsupported(BackendMongoDB, fmt.Sprintf("%T", clause))
	}
}

func mongoFilters(clauses []ast.WhereClause) (bson.A, error) {
	result := make(bson.A, 0, len(clauses))
	for _, clause := range clauses {
		filter, err := mongoFilter(clause)
		if err != nil {
			return nil, err
		}
		result = append(result, filter)
	}
	return result, nil
}

// likePatternToRegex converts a SQL LIKE pattern to an anchored regex.
func likePatternToRegex(pattern string) string {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, "%", ".*")
	quoted = strings.ReplaceAll(quoted, "_", ".")
	return "^" + quoted + "$"
}

func translateMongoInsert(q *ast.InsertQuery) (*MongoCommand, error) {
	if len(q.Columns) != len(q.Values) {
		return nil, fmt.Errorf("insert into %s: %d columns but %d values", q.Table, len(q.Columns), len(q.Values))
	}
	doc := make(bson.M, len(q.Columns))
	for i, col := range q.Columns {
		doc[col] = ast.Native(q.Values[i])
	}
	return &MongoCommand{Collection: q.Table, Operation: "insertOne", Document: doc}, nil
}

func translateMongoUpdate(q *ast.UpdateQuery) (*MongoCommand, error) {
	if len(q.Assignments) == 0 {
		return nil, fmt.Errorf("update %s: no assignments", q.Table)
	}
	set := make(bson.M, len(q.Assignments))
	for _, a := range q.Assignments {
		set[a.Column] = ast.Native(a.Value)
	}
	cmd := &MongoCommand{
		Collection: q.Table,
		Operation:  "updateMany",
		Filter:     bson.M{},
		Update:     bson.M{"$set": set},
	}
	if q.Where != nil {
		filter, err := mongoFilter(q.Where)
		if err != nil {
			return nil, err
		}
		cmd.Filter = filter
	}
	return cmd, nil
}

func translateMongoDelete(q *ast.DeleteQuery) (*MongoCommand, error) {
	cmd := &MongoCommand{Collection: q.Table, Operation: "deleteMany", Filter: bson.M{}}
	if q.Where != nil {
		filter, err := mongoFilter(q.Where)
		if err != nil {
			return nil, err
		}
		cmd.Filter = filter
	}
	return cmd, nil
}
