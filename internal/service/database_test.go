package service

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"hellmusic/internal/database"
	"hellmusic/internal/events"
	"hellmusic/internal/models"
	"hellmusic/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recorder) handle(event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func setupDatabase(t *testing.T) (*Database, *database.DB, *recorder) {
	t.Helper()
	logger := zerolog.Nop()

	store, err := database.NewDB(filepath.Join(t.TempDir(), "musicdb.sqlite"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	bus := events.NewEventBus()
	rec := &recorder{}
	bus.SubscribeAll(rec.handle)

	db := NewDatabase(store, repository.NewMemoryRuntimeRepository(), bus, &logger)
	require.NoError(t, db.Connect(context.Background()))
	return db, store, rec
}

func TestDatabase_Users(t *testing.T) {
	db, _, _ := setupDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.AddUser(ctx, 5))

	ok, err := db.IsUserExist(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := db.GetUser(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(5), u.UserID)
	assert.Equal(t, int64(0), u.SongsPlayed)
	assert.Equal(t, int64(0), u.Level)

	require.NoError(t, db.DeleteUser(ctx, 5))
	ok, err = db.IsUserExist(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	missing, err := db.GetUser(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDatabase_DuplicateUserInsert(t *testing.T) {
	db, _, _ := setupDatabase(t)
	ctx := context.Background()

	before, err := db.TotalUsersCount(ctx)
	require.NoError(t, err)

	require.NoError(t, db.AddUser(ctx, 8))
	require.NoError(t, db.AddUser(ctx, 8))

	after, err := db.TotalUsersCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+2, after)

	var ids []int64
	for u, err := range db.GetAllUsers(ctx) {
		require.NoError(t, err)
		ids = append(ids, u.UserID)
	}
	assert.Equal(t, []int64{8, 8}, ids)
}

func TestDatabase_Chats(t *testing.T) {
	db, _, _ := setupDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.AddChat(ctx, -100))
	require.NoError(t, db.AddChat(ctx, -200))

	n, err := db.TotalChatsCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	c, err := db.GetChat(ctx, -200)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.False(t, c.JoinDate.IsZero())

	require.NoError(t, db.DeleteChat(ctx, -100))
	ok, _ := db.IsChatExist(ctx, -100)
	assert.False(t, ok)

	count := 0
	for _, err := range db.GetAllChats(ctx) {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 1, count)
}

func TestDatabase_SudoSequence(t *testing.T) {
	db, _, rec := setupDatabase(t)
	ctx := context.Background()

	users, err := db.GetSudoUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, db.AddSudo(ctx, 5))
	users, _ = db.GetSudoUsers(ctx)
	assert.Equal(t, []int64{5}, users)

	require.NoError(t, db.AddSudo(ctx, 7))
	users, _ = db.GetSudoUsers(ctx)
	assert.Equal(t, []int64{5, 7}, users)

	require.NoError(t, db.RemoveSudo(ctx, 5))
	users, _ = db.GetSudoUsers(ctx)
	assert.Equal(t, []int64{7}, users)

	err = db.RemoveSudo(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotMember)

	isSudo, err := db.IsSudo(ctx, 7)
	require.NoError(t, err)
	assert.True(t, isSudo)

	assert.Equal(t, []string{
		events.EventSetMemberAdded,
		events.EventSetMemberAdded,
		events.EventSetMemberRemoved,
	}, rec.types())

	var payload events.AccessEventPayload
	require.NoError(t, json.Unmarshal(rec.events[0].Payload, &payload))
	assert.Equal(t, string(models.SetSudo), payload.Set)
	assert.Equal(t, int64(5), payload.MemberID)
	assert.NotEmpty(t, payload.ID)
}

func TestDatabase_AccessLists(t *testing.T) {
	db, _, _ := setupDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.AddBlockedUser(ctx, 1))
	require.NoError(t, db.AddGbannedUser(ctx, 2))
	require.NoError(t, db.AddAuthChat(ctx, -3))
	require.NoError(t, db.AddBlacklistedChat(ctx, -4))

	blocked, _ := db.GetBlockedUsers(ctx)
	assert.Equal(t, []int64{1}, blocked)
	gbanned, _ := db.GetGbannedUsers(ctx)
	assert.Equal(t, []int64{2}, gbanned)
	authChats, _ := db.GetAuthChats(ctx)
	assert.Equal(t, []int64{-3}, authChats)
	blChats, _ := db.GetBlacklistedChats(ctx)
	assert.Equal(t, []int64{-4}, blChats)

	ok, _ := db.IsGbannedUser(ctx, 2)
	assert.True(t, ok)
	ok, _ = db.IsGbannedUser(ctx, 1)
	assert.False(t, ok)
	ok, _ = db.IsBlockedUser(ctx, 1)
	assert.True(t, ok)
	ok, _ = db.IsAuthChat(ctx, -3)
	assert.True(t, ok)
	ok, _ = db.IsBlacklistedChat(ctx, -4)
	assert.True(t, ok)

	require.NoError(t, db.RemoveBlockedUser(ctx, 1))
	require.NoError(t, db.RemoveGbannedUser(ctx, 2))
	require.NoError(t, db.RemoveAuthChat(ctx, -3))
	require.NoError(t, db.RemoveBlacklistedChat(ctx, -4))
	assert.ErrorIs(t, db.RemoveAuthChat(ctx, -3), models.ErrNotMember)

	blocked, _ = db.GetBlockedUsers(ctx)
	assert.Empty(t, blocked)
}

func TestDatabase_AuthUsers(t *testing.T) {
	db, _, rec := setupDatabase(t)
	ctx := context.Background()

	details, err := db.GetAuthUser(ctx, -100, 42)
	require.NoError(t, err)
	assert.Empty(t, details)

	require.NoError(t, db.AddAuthUser(ctx, -100, 42, models.AuthDetails{"auth_by_name": "admin", "auth_by_id": int64(1)}))
	require.NoError(t, db.AddAuthUser(ctx, -100, 43, nil))

	ok, err := db.IsAuthUser(ctx, -100, 42)
	require.NoError(t, err)
	assert.True(t, ok)

	details, err = db.GetAuthUser(ctx, -100, 42)
	require.NoError(t, err)
	assert.Equal(t, "admin", details.GetString("auth_by_name"))
	assert.Equal(t, int64(1), details.GetInt64("auth_by_id"))

	all, err := db.GetAllAuthUsers(ctx, -100)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, db.RemoveAuthUser(ctx, -100, 42))
	ok, _ = db.IsAuthUser(ctx, -100, 42)
	assert.False(t, ok)

	assert.Equal(t, []string{
		events.EventAuthUserAdded,
		events.EventAuthUserAdded,
		events.EventAuthUserRemoved,
	}, rec.types())
}

func TestDatabase_Autoend(t *testing.T) {
	db, store, rec := setupDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.SetAutoend(ctx, false))
	enabled, err := db.GetAutoend(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, db.SetAutoend(ctx, true))
	require.NoError(t, db.SetAutoend(ctx, true))
	enabled, err = db.GetAutoend(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, db.SetAutoend(ctx, false))
	enabled, _ = db.GetAutoend(ctx)
	assert.False(t, enabled)

	require.Len(t, rec.events, 4)
	var payload events.AccessEventPayload
	require.NoError(t, json.Unmarshal(rec.events[1].Payload, &payload))
	require.NotNil(t, payload.Enabled)
	assert.True(t, *payload.Enabled)

	require.NoError(t, store.Close(ctx))
	enabled, err = db.GetAutoend(ctx)
	assert.False(t, enabled)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestDatabase_ActiveVC(t *testing.T) {
	db, _, _ := setupDatabase(t)
	ctx := context.Background()

	list, err := db.GetActiveVC(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, db.AddActiveVC(ctx, 100, models.VCTypeVoice))
	require.NoError(t, db.AddActiveVC(ctx, 100, models.VCTypeVideo))

	list, err = db.GetActiveVC(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.VCTypeVoice, list[0].VCType)

	ok, _ := db.IsActiveVC(ctx, 100)
	assert.True(t, ok)

	require.NoError(t, db.RemoveActiveVC(ctx, 100))
	ok, _ = db.IsActiveVC(ctx, 100)
	assert.False(t, ok)
}

func TestDatabase_LoopAndWatcher(t *testing.T) {
	db, _, _ := setupDatabase(t)
	ctx := context.Background()

	loop, err := db.GetLoop(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, loop)

	watch, err := db.GetWatcher(ctx, 1, "anykey")
	require.NoError(t, err)
	assert.False(t, watch)

	require.NoError(t, db.SetLoop(ctx, 1, 5))
	require.NoError(t, db.SetWatcher(ctx, 1, "anykey", true))

	loop, _ = db.GetLoop(ctx, 1)
	assert.Equal(t, 5, loop)
	watch, _ = db.GetWatcher(ctx, 1, "anykey")
	assert.True(t, watch)
}

func TestDatabase_ConnectFailure(t *testing.T) {
	logger := zerolog.Nop()
	store, err := database.NewDB(filepath.Join(t.TempDir(), "closed.sqlite"), &logger)
	require.NoError(t, err)
	require.NoError(t, store.Close(context.Background()))

	db := NewDatabase(store, repository.NewMemoryRuntimeRepository(), nil, &logger)
	err = db.Connect(context.Background())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.Equal(t, models.DriverSQLite, db.Backend())
}

type indexedStore struct {
	*database.DB
	calls int
	err   error
}

func (s *indexedStore) EnsureIndexes(context.Context) error {
	s.calls++
	return s.err
}

func TestDatabase_ConnectKeepsCause(t *testing.T) {
	db, _, _ := setupDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.Connect(ctx)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	err = db.Ping(ctx)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDatabase_ConnectEnsuresIndexes(t *testing.T) {
	logger := zerolog.Nop()
	sqlite, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer sqlite.Close(context.Background())

	store := &indexedStore{DB: sqlite}
	db := NewDatabase(store, repository.NewMemoryRuntimeRepository(), nil, &logger)
	require.NoError(t, db.Connect(context.Background()))
	assert.Equal(t, 1, store.calls)

	require.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, 1, store.calls)

	indexErr := errors.New("E11000 duplicate key")
	store.err = indexErr
	err = db.Connect(context.Background())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, err, indexErr)
}

func TestDatabase_PingIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	store, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer store.Close(context.Background())

	db := NewDatabase(store, repository.NewMemoryRuntimeRepository(), nil, &logger)
	buf.Reset()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Ping(context.Background()))
	}
	assert.Empty(t, buf.String())

	require.NoError(t, db.Connect(context.Background()))
	assert.Contains(t, buf.String(), "Database connected")
}

func TestDatabase_NilBus(t *testing.T) {
	logger := zerolog.Nop()
	store, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer store.Close(context.Background())

	db := NewDatabase(store, repository.NewMemoryRuntimeRepository(), nil, nil)
	assert.NoError(t, db.AddSudo(context.Background(), 1))
}

func TestDatabase_Stats(t *testing.T) {
	db, _, _ := setupDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.AddUser(ctx, 1))
	require.NoError(t, db.AddUser(ctx, 2))
	require.NoError(t, db.AddChat(ctx, -1))
	require.NoError(t, db.AddSudo(ctx, 1))
	require.NoError(t, db.AddGbannedUser(ctx, 2))
	require.NoError(t, db.AddGbannedUser(ctx, 3))
	require.NoError(t, db.AddActiveVC(ctx, -1, models.VCTypeVideo))
	require.NoError(t, db.SetAutoend(ctx, true))

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DriverSQLite, stats.Backend)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(1), stats.Chats)
	assert.Equal(t, 1, stats.ActiveVoiceChats)
	assert.True(t, stats.Autoend)
	assert.Equal(t, 1, stats.Sets[models.SetSudo])
	assert.Equal(t, 2, stats.Sets[models.SetGbanned])
	assert.Equal(t, 0, stats.Sets[models.SetBlacklistedChats])

	_, err = db.Members(ctx, "bogus")
	assert.ErrorIs(t, err, models.ErrUnknownSet)
}
