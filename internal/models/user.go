package models

import "time"

// User is a bot user record, created on first interaction.
type User struct {
	UserID      int64     `bson:"user_id" json:"user_id"`
	JoinDate    time.Time `bson:"join_date" json:"join_date"`
	SongsPlayed int64     `bson:"songs_played" json:"songs_played"`
	Level       int64     `bson:"level" json:"level"`
}

// NewUser returns a fresh user record with zero counters.
func NewUser(userID int64, joined time.Time) *User {
	return &User{
		UserID:   userID,
		JoinDate: joined,
	}
}

// Chat is a group chat the bot has joined.
type Chat struct {
	ChatID   int64     `bson:"chat_id" json:"chat_id"`
	JoinDate time.Time `bson:"join_date" json:"join_date"`
}

func NewChat(chatID int64, joined time.Time) *Chat {
	return &Chat{
		ChatID:   chatID,
		JoinDate: joined,
	}
}
