package mongodb

import (
	"context"
	"fmt"

	"hellmusic/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

var autoendFilter = bson.M{models.AutoendTag: models.AutoendTag}

// GetAutoend reports whether the tag document exists; its fields are ignored.
// An absent flag is (false, nil), a failing store wraps ErrStoreUnavailable.
func (s *Store) GetAutoend(ctx context.Context) (bool, error) {
	var doc bson.M
	found, err := findOne(ctx, s.autoend, autoendFilter, &doc)
	if err != nil {
		return false, fmt.Errorf("%w: get autoend: %w", models.ErrStoreUnavailable, err)
	}
	return found, nil
}

func (s *Store) SetAutoend(ctx context.Context, enabled bool) error {
	if !enabled {
		if _, err := s.autoend.DeleteOne(ctx, autoendFilter); err != nil {
			return fmt.Errorf("failed to disable autoend: %w", err)
		}
		return nil
	}

	update := bson.M{"$set": bson.M{"status": true}}
	if err := upsertOne(ctx, s.autoend, autoendFilter, update); err != nil {
		return fmt.Errorf("failed to enable autoend: %w", err)
	}
	return nil
}
