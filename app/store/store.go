package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sarkarihub/sarkarihub/app/feed"
)

var _ RecordStore = (*Store)(nil)

// collectionSpec maps a content kind to its collection and the field holding
// the external key.
type collectionSpec struct {
	name     string
	keyField string
}

var collections = map[feed.ContentKind]collectionSpec{
	feed.KindJob:       {name: "jobs", keyField: "application_url"},
	feed.KindResult:    {name: "results", keyField: "result_url"},
	feed.KindAdmission: {name: "admissions", keyField: "application_url"},
}

type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

func New(ctx context.Context, uri, dbName string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{
		client:   client,
		database: client.Database(dbName),
	}

	if err := s.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return s, nil
}

func (s *Store) createIndexes(ctx context.Context) error {
	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for kind, spec := range collections {
		collection := s.database.Collection(spec.name)

		models := []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: spec.keyField, Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}},
			},
		}

		if _, err := collection.Indexes().CreateMany(indexCtx, models); err != nil {
			return fmt.Errorf("indexes for %s: %w", kind, err)
		}
	}

	return nil
}

func (s *Store) collectionFor(kind feed.ContentKind) (*mongo.Collection, collectionSpec, error) {
	spec, ok := collections[kind]
	if !ok {
		return nil, collectionSpec{}, fmt.Errorf("no collection for kind %q", kind)
	}
	return s.database.Collection(spec.name), spec, nil
}

func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.client.Ping(pingCtx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
