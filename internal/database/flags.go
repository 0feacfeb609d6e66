package database

import (
	"context"
	"fmt"
	"time"

	"hellmusic/internal/models"
)

// GetAutoend reports whether the autoend flag row exists; the status column
// is not consulted. Any failure is ErrStoreUnavailable.
func (db *DB) GetAutoend(ctx context.Context) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM flags WHERE name = ?)`, models.AutoendTag).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: get autoend: %w", models.ErrStoreUnavailable, err)
	}
	return exists, nil
}

func (db *DB) SetAutoend(ctx context.Context, enabled bool) error {
	if !enabled {
		if _, err := db.ExecContext(ctx, `DELETE FROM flags WHERE name = ?`, models.AutoendTag); err != nil {
			return fmt.Errorf("failed to disable autoend: %w", err)
		}
		return nil
	}

	query := `INSERT INTO flags (name, status, updated_at) VALUES (?, 1, ?)
              ON CONFLICT(name) DO NOTHING`
	if _, err := db.ExecContext(ctx, query, models.AutoendTag, time.Now()); err != nil {
		return fmt.Errorf("failed to enable autoend: %w", err)
	}
	return nil
}
