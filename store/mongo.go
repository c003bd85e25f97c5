package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// Mongo stores results as documents keyed by run id.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongo connects to uri and verifies the connection.
func NewMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{client: client, collection: client.Database(database).Collection(collection)}, nil
}

// Save upserts res by id.
func (m *Mongo) Save(ctx context.Context, res *analysis.AnalysisResult) error {
	if res == nil || res.ID == "" {
		return errors.New("store: result has no id")
	}
	filter := bson.M{"_id": res.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, filter, res, opts); err != nil {
		return fmt.Errorf("save analysis %s: %w", res.ID, err)
	}
	return nil
}

func (m *Mongo) Get(ctx context.Context, id string) (*analysis.AnalysisResult, error) {
	var res analysis.AnalysisResult
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return &res, nil
}

func (m *Mongo) List(ctx context.Context, limit int) ([]*analysis.AnalysisResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*analysis.AnalysisResult
	for cursor.Next(ctx) {
		var res analysis.AnalysisResult
		if err := cursor.Decode(&res); err != nil {
			continue // skip documents from older schemas
		}
		out = append(out, &res)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
