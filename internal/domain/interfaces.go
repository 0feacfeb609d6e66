package domain

import (
	"context"
	"iter"

	"hellmusic/internal/models"
)

// Store is the persistent document store behind the facade.
type Store interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Backend() string

	AddUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID int64) error
	IsUserExist(ctx context.Context, userID int64) (bool, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetAllUsers(ctx context.Context) iter.Seq2[*models.User, error]
	TotalUsersCount(ctx context.Context) (int64, error)

	AddChat(ctx context.Context, chat *models.Chat) error
	DeleteChat(ctx context.Context, chatID int64) error
	IsChatExist(ctx context.Context, chatID int64) (bool, error)
	GetChat(ctx context.Context, chatID int64) (*models.Chat, error)
	GetAllChats(ctx context.Context) iter.Seq2[*models.Chat, error]
	TotalChatsCount(ctx context.Context) (int64, error)

	GetAutoend(ctx context.Context) (bool, error)
	SetAutoend(ctx context.Context, enabled bool) error

	SetMembers(ctx context.Context, set models.SetName) ([]int64, error)
	AddSetMember(ctx context.Context, set models.SetName, id int64) error
	RemoveSetMember(ctx context.Context, set models.SetName, id int64) error
	IsSetMember(ctx context.Context, set models.SetName, id int64) (bool, error)

	AddAuthUser(ctx context.Context, chatID, userID int64, details models.AuthDetails) error
	IsAuthUser(ctx context.Context, chatID, userID int64) (bool, error)
	GetAuthUser(ctx context.Context, chatID, userID int64) (models.AuthDetails, error)
	GetAllAuthUsers(ctx context.Context, chatID int64) (map[int64]models.AuthDetails, error)
	RemoveAuthUser(ctx context.Context, chatID, userID int64) error
}

// RuntimeRepository keeps process state that is not part of the document store:
// active voice chats, loop counters and watcher flags.
type RuntimeRepository interface {
	GetActiveVC(ctx context.Context) ([]models.ActiveVC, error)
	AddActiveVC(ctx context.Context, vc models.ActiveVC) error
	IsActiveVC(ctx context.Context, chatID int64) (bool, error)
	RemoveActiveVC(ctx context.Context, chatID int64) error

	SetLoop(ctx context.Context, chatID int64, loop int) error
	GetLoop(ctx context.Context, chatID int64) (int, error)

	SetWatcher(ctx context.Context, chatID int64, key string, watch bool) error
	GetWatcher(ctx context.Context, chatID int64, key string) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
