package service

import (
	"context"

	"hellmusic/internal/models"
)

// Stats collects counts for the admin endpoint and the export sheet.
func (d *Database) Stats(ctx context.Context) (*models.Stats, error) {
	users, err := d.TotalUsersCount(ctx)
	if err != nil {
		return nil, err
	}
	chats, err := d.TotalChatsCount(ctx)
	if err != nil {
		return nil, err
	}
	active, err := d.GetActiveVC(ctx)
	if err != nil {
		return nil, err
	}
	autoend, err := d.GetAutoend(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{
		Backend:          d.store.Backend(),
		Users:            users,
		Chats:            chats,
		ActiveVoiceChats: len(active),
		Autoend:          autoend,
		Sets:             make(map[models.SetName]int, len(models.AllSets)),
	}
	for _, set := range models.AllSets {
		members, err := d.members(ctx, set)
		if err != nil {
			return nil, err
		}
		stats.Sets[set] = len(members)
	}
	return stats, nil
}

// Members exposes a named set for callers that iterate all sets, such as the
// xlsx export.
func (d *Database) Members(ctx context.Context, set models.SetName) ([]int64, error) {
	if !set.Valid() {
		return nil, models.ErrUnknownSet
	}
	return d.members(ctx, set)
}
