package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"hellmusic/internal/models"
)

func (db *DB) AddUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (user_id, join_date, songs_played, level) VALUES (?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, user.UserID, user.JoinDate, user.SongsPlayed, user.Level)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	return nil
}

// DeleteUser removes only the oldest record of the user.
func (db *DB) DeleteUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM users WHERE id = (SELECT id FROM users WHERE user_id = ? ORDER BY id LIMIT 1)`
	if _, err := db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (db *DB) IsUserExist(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = ?)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

// GetUser returns nil without error when the user is unknown.
func (db *DB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT user_id, join_date, songs_played, level
              FROM users WHERE user_id = ? ORDER BY id LIMIT 1`
	var u models.User
	err := db.QueryRowContext(ctx, query, userID).Scan(&u.UserID, &u.JoinDate, &u.SongsPlayed, &u.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (db *DB) GetAllUsers(ctx context.Context) iter.Seq2[*models.User, error] {
	query := `SELECT user_id, join_date, songs_played, level FROM users ORDER BY id`
	return scanSeq(ctx, db, query, func(rows *sql.Rows) (*models.User, error) {
		u := &models.User{}
		if err := rows.Scan(&u.UserID, &u.JoinDate, &u.SongsPlayed, &u.Level); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		return u, nil
	})
}

func (db *DB) TotalUsersCount(ctx context.Context) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
