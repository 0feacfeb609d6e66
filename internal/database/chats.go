package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"hellmusic/internal/models"
)

func (db *DB) AddChat(ctx context.Context, chat *models.Chat) error {
	_, err := db.ExecContext(ctx, `INSERT INTO chats (chat_id, join_date) VALUES (?, ?)`, chat.ChatID, chat.JoinDate)
	if err != nil {
		return fmt.Errorf("failed to add chat: %w", err)
	}
	return nil
}

func (db *DB) DeleteChat(ctx context.Context, chatID int64) error {
	query := `DELETE FROM chats WHERE id = (SELECT id FROM chats WHERE chat_id = ? ORDER BY id LIMIT 1)`
	if _, err := db.ExecContext(ctx, query, chatID); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

func (db *DB) IsChatExist(ctx context.Context, chatID int64) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM chats WHERE chat_id = ?)`, chatID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check chat: %w", err)
	}
	return exists, nil
}

func (db *DB) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	var c models.Chat
	err := db.QueryRowContext(ctx, `SELECT chat_id, join_date FROM chats WHERE chat_id = ? ORDER BY id LIMIT 1`, chatID).
		Scan(&c.ChatID, &c.JoinDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &c, nil
}

func (db *DB) GetAllChats(ctx context.Context) iter.Seq2[*models.Chat, error] {
	return scanSeq(ctx, db, `SELECT chat_id, join_date FROM chats ORDER BY id`, func(rows *sql.Rows) (*models.Chat, error) {
		c := &models.Chat{}
		if err := rows.Scan(&c.ChatID, &c.JoinDate); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		return c, nil
	})
}

func (db *DB) TotalChatsCount(ctx context.Context) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chats: %w", err)
	}
	return count, nil
}
