package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hellmusic/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "music.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return db
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close(context.Background())

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
	assert.Equal(t, models.DriverSQLite, db.Backend())
}

func TestNewDB_InMemory(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close(context.Background())

	ctx := context.Background()
	require.NoError(t, db.AddSetMember(ctx, models.SetSudo, 1))

	members, err := db.SetMembers(ctx, models.SetSudo)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, members)
}

func TestCreateTablesIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, createTables(db.DB))
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}

func TestDB_ErrorPaths(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "closed.db"), &logger)
	require.NoError(t, err)
	require.NoError(t, db.Close(context.Background()))

	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		assert.Error(t, db.Ping(ctx))
	})

	t.Run("AddUser", func(t *testing.T) {
		assert.Error(t, db.AddUser(ctx, models.NewUser(1, time.Now())))
	})

	t.Run("GetAllUsers", func(t *testing.T) {
		var iterErr error
		for _, err := range db.GetAllUsers(ctx) {
			iterErr = err
		}
		assert.Error(t, iterErr)
	})

	t.Run("GetAutoend", func(t *testing.T) {
		enabled, err := db.GetAutoend(ctx)
		assert.False(t, enabled)
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	})

	t.Run("SetMembers", func(t *testing.T) {
		_, err := db.SetMembers(ctx, models.SetSudo)
		assert.Error(t, err)
	})
}
