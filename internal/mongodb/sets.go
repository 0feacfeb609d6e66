package mongodb

import (
	"context"
	"fmt"

	"hellmusic/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// setDoc is the singleton tag document, e.g. {"sudo": "sudo", "user_ids": [...]}.
type setDoc struct {
	UserIDs []int64 `bson:"user_ids,omitempty"`
	ChatIDs []int64 `bson:"chat_ids,omitempty"`
}

func (s *Store) setCollection(set models.SetName) (*mongo.Collection, error) {
	coll, ok := s.sets[set]
	if !ok {
		return nil, fmt.Errorf("%q: %w", set, models.ErrUnknownSet)
	}
	return coll, nil
}

func tagFilter(set models.SetName) bson.M {
	return bson.M{string(set): string(set)}
}

func (s *Store) SetMembers(ctx context.Context, set models.SetName) ([]int64, error) {
	coll, err := s.setCollection(set)
	if err != nil {
		return nil, err
	}

	var doc setDoc
	found, err := findOne(ctx, coll, tagFilter(set), &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s members: %w", set, err)
	}

	members := doc.UserIDs
	if set.HoldsChats() {
		members = doc.ChatIDs
	}
	if !found || members == nil {
		return []int64{}, nil
	}
	return members, nil
}

// AddSetMember appends id with $addToSet and leaves an existing member in
// place. The unique tag index keeps concurrent first adds on one document.
func (s *Store) AddSetMember(ctx context.Context, set models.SetName, id int64) error {
	coll, err := s.setCollection(set)
	if err != nil {
		return err
	}

	update := bson.M{"$addToSet": bson.M{set.Field(): id}}
	if err := upsertOne(ctx, coll, tagFilter(set), update); err != nil {
		return fmt.Errorf("failed to add %d to %s: %w", id, set, err)
	}
	return nil
}

// RemoveSetMember pulls id in a single update. The filter only matches when id
// is present, which is how an absent member is reported as ErrNotMember.
func (s *Store) RemoveSetMember(ctx context.Context, set models.SetName, id int64) error {
	coll, err := s.setCollection(set)
	if err != nil {
		return err
	}

	filter := tagFilter(set)
	filter[set.Field()] = id
	res, err := coll.UpdateOne(ctx, filter, bson.M{"$pull": bson.M{set.Field(): id}})
	if err != nil {
		return fmt.Errorf("failed to remove %d from %s: %w", id, set, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("remove %d from %s: %w", id, set, models.ErrNotMember)
	}
	return nil
}

func (s *Store) IsSetMember(ctx context.Context, set models.SetName, id int64) (bool, error) {
	coll, err := s.setCollection(set)
	if err != nil {
		return false, err
	}

	filter := tagFilter(set)
	filter[set.Field()] = id
	ok, err := exists(ctx, coll, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check %s membership: %w", set, err)
	}
	return ok, nil
}
