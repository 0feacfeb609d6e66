package mongodb

import (
	"context"
	"fmt"
	"strconv"

	"hellmusic/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// authChatDoc holds every authorized user of one chat keyed by user id:
// {"chat_id": -100, "users": {"42": {...details}}}.
type authChatDoc struct {
	ChatID int64             `bson:"chat_id"`
	Users  map[string]bson.M `bson:"users"`
}

func userKey(userID int64) string {
	return "users." + strconv.FormatInt(userID, 10)
}

func (s *Store) AddAuthUser(ctx context.Context, chatID, userID int64, details models.AuthDetails) error {
	payload := bson.M{}
	for k, v := range details {
		payload[k] = v
	}

	update := bson.M{"$set": bson.M{userKey(userID): payload}}
	if err := upsertOne(ctx, s.authusers, bson.M{"chat_id": chatID}, update); err != nil {
		return fmt.Errorf("failed to add auth user: %w", err)
	}
	return nil
}

func (s *Store) IsAuthUser(ctx context.Context, chatID, userID int64) (bool, error) {
	filter := bson.M{"chat_id": chatID, userKey(userID): bson.M{"$exists": true}}
	ok, err := exists(ctx, s.authusers, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check auth user: %w", err)
	}
	return ok, nil
}

func (s *Store) GetAuthUser(ctx context.Context, chatID, userID int64) (models.AuthDetails, error) {
	var doc authChatDoc
	opts := options.FindOne().SetProjection(bson.M{"chat_id": 1, userKey(userID): 1})
	found, err := findOne(ctx, s.authusers, bson.M{"chat_id": chatID}, &doc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth user: %w", err)
	}
	if !found {
		return models.AuthDetails{}, nil
	}
	raw, ok := doc.Users[strconv.FormatInt(userID, 10)]
	if !ok {
		return models.AuthDetails{}, nil
	}
	return toDetails(raw), nil
}

func (s *Store) GetAllAuthUsers(ctx context.Context, chatID int64) (map[int64]models.AuthDetails, error) {
	var doc authChatDoc
	found, err := findOne(ctx, s.authusers, bson.M{"chat_id": chatID}, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth users: %w", err)
	}

	users := make(map[int64]models.AuthDetails, len(doc.Users))
	if !found {
		return users, nil
	}
	for key, raw := range doc.Users {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.logger.Warn().Str("key", key).Int64("chat_id", chatID).Msg("Skipping malformed auth user key")
			continue
		}
		users[userID] = toDetails(raw)
	}
	return users, nil
}

func (s *Store) RemoveAuthUser(ctx context.Context, chatID, userID int64) error {
	update := bson.M{"$unset": bson.M{userKey(userID): ""}}
	if _, err := s.authusers.UpdateOne(ctx, bson.M{"chat_id": chatID}, update); err != nil {
		return fmt.Errorf("failed to remove auth user: %w", err)
	}
	return nil
}

func toDetails(raw bson.M) models.AuthDetails {
	details := make(models.AuthDetails, len(raw))
	for k, v := range raw {
		if dt, ok := v.(primitive.DateTime); ok {
			details[k] = dt.Time()
			continue
		}
		details[k] = v
	}
	return details
}
