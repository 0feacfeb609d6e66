package mongodb

import (
	"context"
	"fmt"
	"iter"

	"hellmusic/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

func (s *Store) AddUser(ctx context.Context, user *models.User) error {
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := s.users.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *Store) IsUserExist(ctx context.Context, userID int64) (bool, error) {
	ok, err := exists(ctx, s.users, bson.M{"user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return ok, nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	found, err := findOne(ctx, s.users, bson.M{"user_id": userID}, &u)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) GetAllUsers(ctx context.Context) iter.Seq2[*models.User, error] {
	return cursorSeq[models.User](ctx, s.users, bson.M{})
}

func (s *Store) TotalUsersCount(ctx context.Context) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *Store) AddChat(ctx context.Context, chat *models.Chat) error {
	if _, err := s.chats.InsertOne(ctx, chat); err != nil {
		return fmt.Errorf("failed to add chat: %w", err)
	}
	return nil
}

func (s *Store) DeleteChat(ctx context.Context, chatID int64) error {
	if _, err := s.chats.DeleteOne(ctx, bson.M{"chat_id": chatID}); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

func (s *Store) IsChatExist(ctx context.Context, chatID int64) (bool, error) {
	ok, err := exists(ctx, s.chats, bson.M{"chat_id": chatID})
	if err != nil {
		return false, fmt.Errorf("failed to check chat: %w", err)
	}
	return ok, nil
}

func (s *Store) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	var c models.Chat
	found, err := findOne(ctx, s.chats, bson.M{"chat_id": chatID}, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) GetAllChats(ctx context.Context) iter.Seq2[*models.Chat, error] {
	return cursorSeq[models.Chat](ctx, s.chats, bson.M{})
}

func (s *Store) TotalChatsCount(ctx context.Context) (int64, error) {
	n, err := s.chats.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count chats: %w", err)
	}
	return n, nil
}
