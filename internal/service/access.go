package service

import (
	"context"

	"hellmusic/internal/events"
	"hellmusic/internal/models"
)

func (d *Database) members(ctx context.Context, set models.SetName) ([]int64, error) {
	return observeValue(ctx, d, "get_"+string(set), func(ctx context.Context) ([]int64, error) {
		return d.store.SetMembers(ctx, set)
	})
}

func (d *Database) addMember(ctx context.Context, set models.SetName, id int64) error {
	err := observe(ctx, d, "add_"+string(set), func(ctx context.Context) error {
		return d.store.AddSetMember(ctx, set, id)
	})
	if err != nil {
		return err
	}

	payload := events.NewAccessEventPayload()
	payload.Set = string(set)
	payload.MemberID = id
	d.publish(events.EventSetMemberAdded, payload)
	return nil
}

// removeMember fails with models.ErrNotMember when id is not in the set.
func (d *Database) removeMember(ctx context.Context, set models.SetName, id int64) error {
	err := observe(ctx, d, "remove_"+string(set), func(ctx context.Context) error {
		return d.store.RemoveSetMember(ctx, set, id)
	})
	if err != nil {
		return err
	}

	payload := events.NewAccessEventPayload()
	payload.Set = string(set)
	payload.MemberID = id
	d.publish(events.EventSetMemberRemoved, payload)
	return nil
}

func (d *Database) isMember(ctx context.Context, set models.SetName, id int64) (bool, error) {
	return observeValue(ctx, d, "is_"+string(set), func(ctx context.Context) (bool, error) {
		return d.store.IsSetMember(ctx, set, id)
	})
}

func (d *Database) GetSudoUsers(ctx context.Context) ([]int64, error) {
	return d.members(ctx, models.SetSudo)
}

func (d *Database) AddSudo(ctx context.Context, userID int64) error {
	return d.addMember(ctx, models.SetSudo, userID)
}

func (d *Database) RemoveSudo(ctx context.Context, userID int64) error {
	return d.removeMember(ctx, models.SetSudo, userID)
}

func (d *Database) IsSudo(ctx context.Context, userID int64) (bool, error) {
	return d.isMember(ctx, models.SetSudo, userID)
}

func (d *Database) GetBlockedUsers(ctx context.Context) ([]int64, error) {
	return d.members(ctx, models.SetBlocked)
}

func (d *Database) AddBlockedUser(ctx context.Context, userID int64) error {
	return d.addMember(ctx, models.SetBlocked, userID)
}

func (d *Database) RemoveBlockedUser(ctx context.Context, userID int64) error {
	return d.removeMember(ctx, models.SetBlocked, userID)
}

func (d *Database) IsBlockedUser(ctx context.Context, userID int64) (bool, error) {
	return d.isMember(ctx, models.SetBlocked, userID)
}

func (d *Database) GetGbannedUsers(ctx context.Context) ([]int64, error) {
	return d.members(ctx, models.SetGbanned)
}

func (d *Database) AddGbannedUser(ctx context.Context, userID int64) error {
	return d.addMember(ctx, models.SetGbanned, userID)
}

func (d *Database) RemoveGbannedUser(ctx context.Context, userID int64) error {
	return d.removeMember(ctx, models.SetGbanned, userID)
}

func (d *Database) IsGbannedUser(ctx context.Context, userID int64) (bool, error) {
	return d.isMember(ctx, models.SetGbanned, userID)
}

func (d *Database) GetAuthChats(ctx context.Context) ([]int64, error) {
	return d.members(ctx, models.SetAuthChats)
}

func (d *Database) AddAuthChat(ctx context.Context, chatID int64) error {
	return d.addMember(ctx, models.SetAuthChats, chatID)
}

func (d *Database) RemoveAuthChat(ctx context.Context, chatID int64) error {
	return d.removeMember(ctx, models.SetAuthChats, chatID)
}

func (d *Database) IsAuthChat(ctx context.Context, chatID int64) (bool, error) {
	return d.isMember(ctx, models.SetAuthChats, chatID)
}

func (d *Database) GetBlacklistedChats(ctx context.Context) ([]int64, error) {
	return d.members(ctx, models.SetBlacklistedChats)
}

func (d *Database) AddBlacklistedChat(ctx context.Context, chatID int64) error {
	return d.addMember(ctx, models.SetBlacklistedChats, chatID)
}

func (d *Database) RemoveBlacklistedChat(ctx context.Context, chatID int64) error {
	return d.removeMember(ctx, models.SetBlacklistedChats, chatID)
}

func (d *Database) IsBlacklistedChat(ctx context.Context, chatID int64) (bool, error) {
	return d.isMember(ctx, models.SetBlacklistedChats, chatID)
}

// AddAuthUser merges userID into the chat's authorized users, replacing any
// previous details for that user.
func (d *Database) AddAuthUser(ctx context.Context, chatID, userID int64, details models.AuthDetails) error {
	if details == nil {
		details = models.AuthDetails{}
	}
	err := observe(ctx, d, "add_authuser", func(ctx context.Context) error {
		return d.store.AddAuthUser(ctx, chatID, userID, details)
	})
	if err != nil {
		return err
	}

	payload := events.NewAccessEventPayload()
	payload.ChatID = chatID
	payload.MemberID = userID
	d.publish(events.EventAuthUserAdded, payload)
	return nil
}

func (d *Database) IsAuthUser(ctx context.Context, chatID, userID int64) (bool, error) {
	return observeValue(ctx, d, "is_authuser", func(ctx context.Context) (bool, error) {
		return d.store.IsAuthUser(ctx, chatID, userID)
	})
}

// GetAuthUser returns an empty map for an unknown user.
func (d *Database) GetAuthUser(ctx context.Context, chatID, userID int64) (models.AuthDetails, error) {
	return observeValue(ctx, d, "get_authuser", func(ctx context.Context) (models.AuthDetails, error) {
		return d.store.GetAuthUser(ctx, chatID, userID)
	})
}

func (d *Database) GetAllAuthUsers(ctx context.Context, chatID int64) (map[int64]models.AuthDetails, error) {
	return observeValue(ctx, d, "get_all_authusers", func(ctx context.Context) (map[int64]models.AuthDetails, error) {
		return d.store.GetAllAuthUsers(ctx, chatID)
	})
}

func (d *Database) RemoveAuthUser(ctx context.Context, chatID, userID int64) error {
	err := observe(ctx, d, "remove_authuser", func(ctx context.Context) error {
		return d.store.RemoveAuthUser(ctx, chatID, userID)
	})
	if err != nil {
		return err
	}

	payload := events.NewAccessEventPayload()
	payload.ChatID = chatID
	payload.MemberID = userID
	d.publish(events.EventAuthUserRemoved, payload)
	return nil
}

// GetAutoend reports false for an absent flag. Store failures are returned
// wrapped in models.ErrStoreUnavailable rather than read as false.
func (d *Database) GetAutoend(ctx context.Context) (bool, error) {
	return observeValue(ctx, d, "get_autoend", func(ctx context.Context) (bool, error) {
		return d.store.GetAutoend(ctx)
	})
}

func (d *Database) SetAutoend(ctx context.Context, enabled bool) error {
	err := observe(ctx, d, "set_autoend", func(ctx context.Context) error {
		return d.store.SetAutoend(ctx, enabled)
	})
	if err != nil {
		return err
	}

	payload := events.NewAccessEventPayload()
	payload.Enabled = &enabled
	d.publish(events.EventAutoendChanged, payload)
	return nil
}
