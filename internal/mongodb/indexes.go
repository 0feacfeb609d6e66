package mongodb

import (
	"context"
	"fmt"

	"hellmusic/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes makes every singleton tag and the per-chat auth document
// unique, so concurrent first upserts cannot create a second document.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, set := range models.AllSets {
		if err := uniqueIndex(ctx, s.sets[set], string(set)); err != nil {
			return err
		}
	}
	if err := uniqueIndex(ctx, s.authusers, "chat_id"); err != nil {
		return err
	}
	if err := uniqueIndex(ctx, s.autoend, models.AutoendTag); err != nil {
		return err
	}
	s.logger.Debug().Msg("Unique indexes ensured")
	return nil
}

func uniqueIndex(ctx context.Context, coll *mongo.Collection, field string) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create unique index on %s.%s: %w", coll.Name(), field, err)
	}
	return nil
}

// upsertOne applies update with upsert. A losing concurrent insert fails on
// the unique index with a duplicate key; the retry then matches the winner.
func upsertOne(ctx context.Context, coll *mongo.Collection, filter, update interface{}) error {
	opts := options.Update().SetUpsert(true)
	_, err := coll.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		_, err = coll.UpdateOne(ctx, filter, update, opts)
	}
	return err
}
