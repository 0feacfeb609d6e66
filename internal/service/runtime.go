package service

import (
	"context"
	"time"

	"hellmusic/internal/metrics"
	"hellmusic/internal/models"
)

func (d *Database) GetActiveVC(ctx context.Context) ([]models.ActiveVC, error) {
	return d.runtime.GetActiveVC(ctx)
}

// AddActiveVC registers a session joined now. A chat that is already active
// keeps its first session.
func (d *Database) AddActiveVC(ctx context.Context, chatID int64, vcType string) error {
	vc := models.ActiveVC{ChatID: chatID, JoinTime: time.Now(), VCType: vcType}
	if err := d.runtime.AddActiveVC(ctx, vc); err != nil {
		return err
	}
	d.refreshActiveGauge(ctx)
	return nil
}

func (d *Database) IsActiveVC(ctx context.Context, chatID int64) (bool, error) {
	return d.runtime.IsActiveVC(ctx, chatID)
}

func (d *Database) RemoveActiveVC(ctx context.Context, chatID int64) error {
	if err := d.runtime.RemoveActiveVC(ctx, chatID); err != nil {
		return err
	}
	d.refreshActiveGauge(ctx)
	return nil
}

func (d *Database) refreshActiveGauge(ctx context.Context) {
	list, err := d.runtime.GetActiveVC(ctx)
	if err != nil {
		d.logger.Warn().Err(err).Msg("Failed to count active voice chats")
		return
	}
	metrics.SetActiveVoiceChats(len(list))
}

func (d *Database) SetLoop(ctx context.Context, chatID int64, loop int) error {
	return d.runtime.SetLoop(ctx, chatID, loop)
}

// GetLoop returns 0 for a chat that never had a loop set.
func (d *Database) GetLoop(ctx context.Context, chatID int64) (int, error) {
	return d.runtime.GetLoop(ctx, chatID)
}

func (d *Database) SetWatcher(ctx context.Context, chatID int64, key string, watch bool) error {
	return d.runtime.SetWatcher(ctx, chatID, key, watch)
}

func (d *Database) GetWatcher(ctx context.Context, chatID int64, key string) (bool, error) {
	return d.runtime.GetWatcher(ctx, chatID, key)
}
