// Package mongo stores the usage ledger as a single MongoDB document with
// an integer version field used for conditional updates.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/promocanvas/pkg/ledger"
)

// Defaults for [Config].
const (
	DefaultDatabase   = "promocanvas"
	DefaultCollection = "ledgers"
	DefaultName       = "default"
)

// Config locates the ledger document.
type Config struct {
	URI        string
	Database   string
	Collection string
	// Name is the document _id, so several ledgers can share a collection.
	Name string
}

// collection is the subset of *mongo.Collection the store uses.
type collection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// document is the stored shape of a ledger.
type document struct {
	Name      string          `bson:"_id"`
	Version   int64           `bson:"version"`
	Records   []ledger.Record `bson:"records"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// Store implements ledger.Store on MongoDB.
type Store struct {
	coll   collection
	name   string
	client *mongo.Client
}

// Open connects to cfg.URI and returns a store. Call Close when done.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo: URI is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	s := newStore(client.Database(cfg.Database).Collection(cfg.Collection), cfg.Name)
	s.client = client
	return s, nil
}

func newStore(coll collection, name string) *Store {
	if name == "" {
		name = DefaultName
	}
	return &Store{coll: coll, name: name}
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Read implements ledger.Store.
func (s *Store) Read(ctx context.Context) (*ledger.Snapshot, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": s.name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo read ledger %q: %w", s.name, err)
	}
	for i := range doc.Records {
		doc.Records[i].Timestamp = doc.Records[i].Timestamp.UTC()
	}
	return &ledger.Snapshot{Records: doc.Records, Version: strconv.FormatInt(doc.Version, 10)}, nil
}

// Create implements ledger.Store.
func (s *Store) Create(ctx context.Context, records []ledger.Record) (string, error) {
	doc := document{Name: s.name, Version: 1, Records: records, UpdatedAt: time.Now().UTC()}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: ledger %q already exists", ledger.ErrConflict, s.name)
		}
		return "", fmt.Errorf("mongo create ledger %q: %w", s.name, err)
	}
	return "1", nil
}

// Update implements ledger.Store.
func (s *Store) Update(ctx context.Context, records []ledger.Record, version string) (string, error) {
	v, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: malformed version %q", ledger.ErrConflict, version)
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": s.name, "version": v},
		bson.M{"$set": bson.M{
			"version":    v + 1,
			"records":    records,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return "", fmt.Errorf("mongo update ledger %q: %w", s.name, err)
	}
	if res.MatchedCount == 0 {
		return "", fmt.Errorf("%w: ledger %q is not at version %d", ledger.ErrConflict, s.name, v)
	}
	return strconv.FormatInt(v+1, 10), nil
}
