package service

import (
	"context"
	"iter"
	"time"

	"hellmusic/internal/models"
)

// AddUser inserts a fresh record. Existing records are not checked, so a
// repeated call stores a second document.
func (d *Database) AddUser(ctx context.Context, userID int64) error {
	return observe(ctx, d, "add_user", func(ctx context.Context) error {
		return d.store.AddUser(ctx, models.NewUser(userID, time.Now()))
	})
}

func (d *Database) DeleteUser(ctx context.Context, userID int64) error {
	return observe(ctx, d, "delete_user", func(ctx context.Context) error {
		return d.store.DeleteUser(ctx, userID)
	})
}

func (d *Database) IsUserExist(ctx context.Context, userID int64) (bool, error) {
	return observeValue(ctx, d, "is_user_exist", func(ctx context.Context) (bool, error) {
		return d.store.IsUserExist(ctx, userID)
	})
}

// GetUser returns nil without error when the user is unknown.
func (d *Database) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return observeValue(ctx, d, "get_user", func(ctx context.Context) (*models.User, error) {
		return d.store.GetUser(ctx, userID)
	})
}

func (d *Database) GetAllUsers(ctx context.Context) iter.Seq2[*models.User, error] {
	return observeSeq(d, "get_all_users", d.store.GetAllUsers(ctx))
}

func (d *Database) TotalUsersCount(ctx context.Context) (int64, error) {
	return observeValue(ctx, d, "total_users_count", func(ctx context.Context) (int64, error) {
		return d.store.TotalUsersCount(ctx)
	})
}

func (d *Database) AddChat(ctx context.Context, chatID int64) error {
	return observe(ctx, d, "add_chat", func(ctx context.Context) error {
		return d.store.AddChat(ctx, models.NewChat(chatID, time.Now()))
	})
}

func (d *Database) DeleteChat(ctx context.Context, chatID int64) error {
	return observe(ctx, d, "delete_chat", func(ctx context.Context) error {
		return d.store.DeleteChat(ctx, chatID)
	})
}

func (d *Database) IsChatExist(ctx context.Context, chatID int64) (bool, error) {
	return observeValue(ctx, d, "is_chat_exist", func(ctx context.Context) (bool, error) {
		return d.store.IsChatExist(ctx, chatID)
	})
}

func (d *Database) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	return observeValue(ctx, d, "get_chat", func(ctx context.Context) (*models.Chat, error) {
		return d.store.GetChat(ctx, chatID)
	})
}

func (d *Database) GetAllChats(ctx context.Context) iter.Seq2[*models.Chat, error] {
	return observeSeq(d, "get_all_chats", d.store.GetAllChats(ctx))
}

func (d *Database) TotalChatsCount(ctx context.Context) (int64, error) {
	return observeValue(ctx, d, "total_chats_count", func(ctx context.Context) (int64, error) {
		return d.store.TotalChatsCount(ctx)
	})
}
