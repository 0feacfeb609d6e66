package database

import (
	"context"
	"fmt"
	"time"

	"hellmusic/internal/models"
)

// SetMembers returns the members of a named set in insertion order.
func (db *DB) SetMembers(ctx context.Context, set models.SetName) ([]int64, error) {
	if !set.Valid() {
		return nil, fmt.Errorf("%q: %w", set, models.ErrUnknownSet)
	}

	rows, err := db.QueryContext(ctx, `SELECT member_id FROM set_members WHERE set_name = ? ORDER BY seq`, string(set))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s members: %w", set, err)
	}
	defer rows.Close()

	members := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s member: %w", set, err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s members: %w", set, err)
	}
	return members, nil
}

// AddSetMember is idempotent: adding an existing member keeps its position.
func (db *DB) AddSetMember(ctx context.Context, set models.SetName, id int64) error {
	if !set.Valid() {
		return fmt.Errorf("%q: %w", set, models.ErrUnknownSet)
	}

	query := `INSERT OR IGNORE INTO set_members (set_name, member_id, added_at) VALUES (?, ?, ?)`
	if _, err := db.ExecContext(ctx, query, string(set), id, time.Now()); err != nil {
		return fmt.Errorf("failed to add %d to %s: %w", id, set, err)
	}
	return nil
}

func (db *DB) RemoveSetMember(ctx context.Context, set models.SetName, id int64) error {
	if !set.Valid() {
		return fmt.Errorf("%q: %w", set, models.ErrUnknownSet)
	}

	res, err := db.ExecContext(ctx, `DELETE FROM set_members WHERE set_name = ? AND member_id = ?`, string(set), id)
	if err != nil {
		return fmt.Errorf("failed to remove %d from %s: %w", id, set, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove %d from %s: %w", id, set, err)
	}
	if affected == 0 {
		return fmt.Errorf("remove %d from %s: %w", id, set, models.ErrNotMember)
	}
	return nil
}

func (db *DB) IsSetMember(ctx context.Context, set models.SetName, id int64) (bool, error) {
	if !set.Valid() {
		return false, fmt.Errorf("%q: %w", set, models.ErrUnknownSet)
	}

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM set_members WHERE set_name = ? AND member_id = ?)`
	if err := db.QueryRowContext(ctx, query, string(set), id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s membership: %w", set, err)
	}
	return exists, nil
}
