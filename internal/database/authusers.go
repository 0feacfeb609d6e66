package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hellmusic/internal/models"
)

// AddAuthUser stores or replaces the details of one authorized user of a chat.
func (db *DB) AddAuthUser(ctx context.Context, chatID, userID int64, details models.AuthDetails) error {
	if details == nil {
		details = models.AuthDetails{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal auth details: %w", err)
	}

	query := `INSERT INTO auth_users (chat_id, user_id, details, updated_at) VALUES (?, ?, ?, ?)
              ON CONFLICT(chat_id, user_id) DO UPDATE SET
                details = excluded.details,
                updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, chatID, userID, string(raw), time.Now()); err != nil {
		return fmt.Errorf("failed to add auth user: %w", err)
	}
	return nil
}

func (db *DB) IsAuthUser(ctx context.Context, chatID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM auth_users WHERE chat_id = ? AND user_id = ?)`
	if err := db.QueryRowContext(ctx, query, chatID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check auth user: %w", err)
	}
	return exists, nil
}

// GetAuthUser returns an empty map when the user is not authorized in the chat.
func (db *DB) GetAuthUser(ctx context.Context, chatID, userID int64) (models.AuthDetails, error) {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT details FROM auth_users WHERE chat_id = ? AND user_id = ?`, chatID, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AuthDetails{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auth user: %w", err)
	}
	return decodeDetails(raw)
}

func (db *DB) GetAllAuthUsers(ctx context.Context, chatID int64) (map[int64]models.AuthDetails, error) {
	rows, err := db.QueryContext(ctx, `SELECT user_id, details FROM auth_users WHERE chat_id = ? ORDER BY user_id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth users: %w", err)
	}
	defer rows.Close()

	users := make(map[int64]models.AuthDetails)
	for rows.Next() {
		var (
			userID int64
			raw    string
		)
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan auth user: %w", err)
		}
		details, err := decodeDetails(raw)
		if err != nil {
			return nil, err
		}
		users[userID] = details
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read auth users: %w", err)
	}
	return users, nil
}

func (db *DB) RemoveAuthUser(ctx context.Context, chatID, userID int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM auth_users WHERE chat_id = ? AND user_id = ?`, chatID, userID); err != nil {
		return fmt.Errorf("failed to remove auth user: %w", err)
	}
	return nil
}

func decodeDetails(raw string) (models.AuthDetails, error) {
	details := models.AuthDetails{}
	if raw == "" {
		return details, nil
	}
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth details: %w", err)
	}
	return details, nil
}
