package aetherdb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codeyousef/aetherdb/engine/ast"
	"github.com/codeyousef/aetherdb/engine/translator"
)

// MongoDriver executes statements against a MongoDB database. Unlike the
// Firestore protocol, filter-based mutations are native here and report real
// affected counts.
type MongoDriver struct {
	client   *mongo.Client
	database *mongo.Database
	logger   zerolog.Logger
}

// NewMongoDriver connects to the given URI and pings the deployment before
// returning.
func NewMongoDriver(ctx context.Context, uri, database string, logger zerolog.Logger) (*MongoDriver, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, dbErr("connect", "opening mongodb connection", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, dbErr("connect", "pinging mongodb deployment", err)
	}
	return &MongoDriver{
		client:   client,
		database: client.Database(database),
		logger:   logger.With().Str("backend", "mongodb").Str("database", database).Logger(),
	}, nil
}

func (d *MongoDriver) ExecuteQuery(ctx context.Context, stmt ast.Statement) ([]Row, error) {
	cmd, err := translator.TranslateMongoDB(stmt)
	if err != nil {
		return nil, err
	}
	if cmd.Operation != "find" {
		return nil, dbErr("query", fmt.Sprintf("%s is not a query", cmd.Operation), nil)
	}
	d.logger.Debug().Str("collection", cmd.Collection).Interface("filter", cmd.Filter).Msg("executing find")

	opts := options.Find()
	if len(cmd.Projection) > 0 {
		opts.SetProjection(cmd.Projection)
	}
	if len(cmd.Sort) > 0 {
		opts.SetSort(cmd.Sort)
	}
	if cmd.Limit != nil {
		opts.SetLimit(*cmd.Limit)
	}
	if cmd.Skip != nil {
		opts.SetSkip(*cmd.Skip)
	}

	cursor, err := d.database.Collection(cmd.Collection).Find(ctx, cmd.Filter, opts)
	if err != nil {
		return nil, dbErrf("query", err, "finding in %s", cmd.Collection)
	}
	defer cursor.Close(ctx)

	var rows []Row
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, dbErr("query", "decoding result document", err)
		}
		rows = append(rows, NewRow(flattenBSON(doc)))
	}
	if err := cursor.Err(); err != nil {
		return nil, dbErr("query", "iterating result cursor", err)
	}
	return rows, nil
}

func (d *MongoDriver) ExecuteUpdate(ctx context.Context, stmt ast.Statement) (int64, error) {
	cmd, err := translator.TranslateMongoDB(stmt)
	if err != nil {
		return 0, err
	}
	coll := d.database.Collection(cmd.Collection)
	d.logger.Debug().Str("collection", cmd.Collection).Str("operation", cmd.Operation).Msg("executing mutation")

	switch cmd.Operation {
	case "insertOne":
		if _, err := coll.InsertOne(ctx, cmd.Document); err != nil {
			return 0, dbErrf("update", err, "inserting into %s", cmd.Collection)
		}
		return 1, nil
	case "updateMany":
		result, err := coll.UpdateMany(ctx, cmd.Filter, cmd.Update)
		if err != nil {
			return 0, dbErrf("update", err, "updating %s", cmd.Collection)
		}
		return result.ModifiedCount, nil
	case "deleteMany":
		result, err := coll.DeleteMany(ctx, cmd.Filter)
		if err != nil {
			return 0, dbErrf("update", err, "deleting from %s", cmd.Collection)
		}
		return result.DeletedCount, nil
	default:
		return 0, dbErr("update", fmt.Sprintf("%s is not a mutation", cmd.Operation), nil)
	}
}

// ExecuteDDL is a domain error: collections are created on first write.
func (d *MongoDriver) ExecuteDDL(ctx context.Context, stmt ast.Statement) error {
	if _, err := translator.TranslateMongoDB(stmt); err != nil {
		return err
	}
	return translator.Unsupported(translator.BackendMongoDB, "DDL")
}

// GetTables lists collection names in the database.
func (d *MongoDriver) GetTables(ctx context.Context) ([]string, error) {
	names, err := d.database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, dbErr("tables", "listing collections", err)
	}
	return names, nil
}

// GetColumns is a domain error: documents in one collection need not share
// a shape.
func (d *MongoDriver) GetColumns(ctx context.Context, table string) ([]ast.ColumnDefinition, error) {
	return nil, translator.Unsupported(translator.BackendMongoDB, "column introspection")
}

// Execute is a domain error: raw SQL text has no MongoDB rendering.
func (d *MongoDriver) Execute(ctx context.Context, raw string, params ...any) (int64, error) {
	return 0, translator.Unsupported(translator.BackendMongoDB, "raw query text")
}

// Close disconnects the client.
func (d *MongoDriver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// flattenBSON converts a decoded document into a plain column-value map,
// stringifying ObjectIDs so the id column coerces like any other backend's.
func flattenBSON(doc bson.M) map[string]any {
	record := make(map[string]any, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case primitive.ObjectID:
			record[k] = val.Hex()
		case primitive.DateTime:
			record[k] = val.Time()
		case primitive.A:
			record[k] = []any(val)
		default:
			record[k] = v
		}
	}
	return record
}
