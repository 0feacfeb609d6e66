// Package mongodb implements the document store on MongoDB, keeping the
// collection names and singleton tag documents of the bot's existing database.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"hellmusic/internal/config"
	"hellmusic/internal/logging"
	"hellmusic/internal/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers     = "users"
	collChats     = "chats"
	collAutoend   = "autoend"
	collAuthUsers = "authusers"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zerolog.Logger

	users     *mongo.Collection
	chats     *mongo.Collection
	autoend   *mongo.Collection
	authusers *mongo.Collection
	sets      map[models.SetName]*mongo.Collection
}

// Connect creates a client for cfg.URL and binds the collections of cfg.Name.
// The driver connects lazily; use Ping to verify liveness.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.URL)
	if cfg.Timeout > 0 {
		opts.SetConnectTimeout(cfg.Timeout).SetServerSelectionTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = models.DefaultDatabaseName
	}
	return New(client.Database(name), logger), nil
}

// New binds a store to an existing database handle.
func New(db *mongo.Database, logger *zerolog.Logger) *Store {
	s := &Store{
		client:    db.Client(),
		db:        db,
		logger:    logging.Component(logger, "mongodb"),
		users:     db.Collection(collUsers),
		chats:     db.Collection(collChats),
		autoend:   db.Collection(collAutoend),
		authusers: db.Collection(collAuthUsers),
		sets:      make(map[models.SetName]*mongo.Collection, len(models.AllSets)),
	}
	for _, set := range models.AllSets {
		s.sets[set] = db.Collection(set.Collection())
	}
	return s
}

func (s *Store) Backend() string {
	return models.DriverMongo
}

// Ping issues the admin ping command.
func (s *Store) Ping(ctx context.Context) error {
	err := s.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	if err != nil {
		return fmt.Errorf("failed to ping mongo: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// cursorSeq decodes each document of a find cursor lazily.
func cursorSeq[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		cur, err := coll.Find(ctx, filter)
		if err != nil {
			yield(nil, fmt.Errorf("find %s: %w", coll.Name(), err))
			return
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			v := new(T)
			if err := cur.Decode(v); err != nil {
				yield(nil, fmt.Errorf("decode %s: %w", coll.Name(), err))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate %s: %w", coll.Name(), err))
		}
	}
}

// findOne decodes the first match into out and reports whether one existed.
func findOne(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}, opts ...*options.FindOneOptions) (bool, error) {
	err := coll.FindOne(ctx, filter, opts...).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func exists(ctx context.Context, coll *mongo.Collection, filter interface{}) (bool, error) {
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
