package mongodb

import (
	"context"
	"testing"

	"hellmusic/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestStore_SetMembers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("absent document", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns("sudousers"), mtest.FirstBatch))

		members, err := store.SetMembers(ctx, models.SetSudo)
		require.NoError(mt, err)
		assert.NotNil(mt, members)
		assert.Empty(mt, members)
	})

	mt.Run("user ids", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns("sudousers"), mtest.FirstBatch, bson.D{
			{Key: "sudo", Value: "sudo"},
			{Key: "user_ids", Value: bson.A{int32(5), int64(7)}},
		}))

		members, err := store.SetMembers(ctx, models.SetSudo)
		require.NoError(mt, err)
		assert.Equal(mt, []int64{5, 7}, members)
	})

	mt.Run("chat ids", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns("authchats"), mtest.FirstBatch, bson.D{
			{Key: "authchats", Value: "authchats"},
			{Key: "chat_ids", Value: bson.A{int64(-100)}},
		}))

		members, err := store.SetMembers(ctx, models.SetAuthChats)
		require.NoError(mt, err)
		assert.Equal(mt, []int64{-100}, members)
	})

	mt.Run("unknown set", func(mt *mtest.T) {
		store := newMockStore(mt)
		_, err := store.SetMembers(ctx, "bogus")
		assert.ErrorIs(mt, err, models.ErrUnknownSet)
	})
}

func TestStore_AddRemoveSetMember(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("add upserts", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(1)},
		))
		require.NoError(mt, store.AddSetMember(ctx, models.SetBlocked, 9))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)

		cmd := started.Command
		assert.Equal(mt, "blocked", cmd.Lookup("updates", "0", "q", "blocked").StringValue())
		assert.True(mt, cmd.Lookup("updates", "0", "upsert").Boolean())
		assert.Equal(mt, int64(9), cmd.Lookup("updates", "0", "u", "$addToSet", "user_ids").Int64())
	})

	mt.Run("add retries after duplicate key", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}),
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: int32(1)},
				bson.E{Key: "nModified", Value: int32(1)},
			),
		)
		require.NoError(mt, store.AddSetMember(ctx, models.SetSudo, 3))

		for i := 0; i < 2; i++ {
			started := mt.GetStartedEvent()
			require.NotNil(mt, started)
			assert.Equal(mt, "update", started.CommandName)
			assert.Equal(mt, int64(3), started.Command.Lookup("updates", "0", "u", "$addToSet", "user_ids").Int64())
		}
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("add chat to chat set", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))
		require.NoError(mt, store.AddSetMember(ctx, models.SetBlacklistedChats, -100))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "blchats", cmd.Lookup("updates", "0", "q", "blchats").StringValue())
		assert.Equal(mt, int64(-100), cmd.Lookup("updates", "0", "u", "$addToSet", "chat_ids").Int64())
	})

	mt.Run("remove member", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(1)},
		))
		assert.NoError(mt, store.RemoveSetMember(ctx, models.SetGbanned, 9))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "gbanned", cmd.Lookup("updates", "0", "q", "gbanned").StringValue())
		assert.Equal(mt, int64(9), cmd.Lookup("updates", "0", "q", "user_ids").Int64())
		assert.Equal(mt, int64(9), cmd.Lookup("updates", "0", "u", "$pull", "user_ids").Int64())
		_, err := cmd.LookupErr("updates", "0", "upsert")
		assert.Error(mt, err)
	})

	mt.Run("remove absent member", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(0)},
			bson.E{Key: "nModified", Value: int32(0)},
		))
		err := store.RemoveSetMember(ctx, models.SetGbanned, 99)
		assert.ErrorIs(mt, err, models.ErrNotMember)
	})

	mt.Run("is member", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns("gban_db"), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		ok, err := store.IsSetMember(ctx, models.SetGbanned, 9)
		require.NoError(mt, err)
		assert.True(mt, ok)
	})
}

func TestStore_Autoend(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("absent", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collAutoend), mtest.FirstBatch))

		enabled, err := store.GetAutoend(ctx)
		require.NoError(mt, err)
		assert.False(mt, enabled)
	})

	mt.Run("enabled", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collAutoend), mtest.FirstBatch, bson.D{
			{Key: "autoend", Value: "autoend"},
			{Key: "status", Value: true},
		}))

		enabled, err := store.GetAutoend(ctx)
		require.NoError(mt, err)
		assert.True(mt, enabled)
	})

	mt.Run("store error", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Message: "shutting down"}))

		enabled, err := store.GetAutoend(ctx)
		assert.False(mt, enabled)
		assert.ErrorIs(mt, err, models.ErrStoreUnavailable)

		var cmdErr mongo.CommandError
		require.ErrorAs(mt, err, &cmdErr)
		assert.Equal(mt, int32(91), cmdErr.Code)
	})

	mt.Run("tag only document", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collAutoend), mtest.FirstBatch, bson.D{
			{Key: "autoend", Value: "autoend"},
		}))

		enabled, err := store.GetAutoend(ctx)
		require.NoError(mt, err)
		assert.True(mt, enabled)
	})

	mt.Run("set", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}),
		)
		require.NoError(mt, store.SetAutoend(ctx, true))
		require.NoError(mt, store.SetAutoend(ctx, false))

		enable := mt.GetStartedEvent()
		assert.Equal(mt, "update", enable.CommandName)
		assert.Equal(mt, "autoend", enable.Command.Lookup("updates", "0", "q", "autoend").StringValue())
		assert.True(mt, enable.Command.Lookup("updates", "0", "upsert").Boolean())
		assert.Equal(mt, "delete", mt.GetStartedEvent().CommandName)
	})
}

func TestStore_AuthUsers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	doc := bson.D{
		{Key: "chat_id", Value: int64(-100)},
		{Key: "users", Value: bson.D{
			{Key: "42", Value: bson.D{{Key: "auth_by_name", Value: "admin"}, {Key: "auth_by_id", Value: int64(1)}}},
			{Key: "43", Value: bson.D{}},
		}},
	}

	mt.Run("add", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))
		require.NoError(mt, store.AddAuthUser(ctx, -100, 42, models.AuthDetails{"auth_by_name": "admin"}))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, int64(-100), cmd.Lookup("updates", "0", "q", "chat_id").Int64())
		assert.True(mt, cmd.Lookup("updates", "0", "upsert").Boolean())
		assert.Equal(mt, "admin", cmd.Lookup("updates", "0", "u", "$set", "users.42", "auth_by_name").StringValue())
	})

	mt.Run("get", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collAuthUsers), mtest.FirstBatch, doc))

		details, err := store.GetAuthUser(ctx, -100, 42)
		require.NoError(mt, err)
		assert.Equal(mt, "admin", details.GetString("auth_by_name"))
		assert.Equal(mt, int64(1), details.GetInt64("auth_by_id"))
	})

	mt.Run("get missing chat", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collAuthUsers), mtest.FirstBatch))

		details, err := store.GetAuthUser(ctx, -100, 42)
		require.NoError(mt, err)
		assert.NotNil(mt, details)
		assert.Empty(mt, details)
	})

	mt.Run("all", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collAuthUsers), mtest.FirstBatch, doc))

		all, err := store.GetAllAuthUsers(ctx, -100)
		require.NoError(mt, err)
		assert.Len(mt, all, 2)
		assert.Equal(mt, "admin", all[42].GetString("auth_by_name"))
		assert.Empty(mt, all[43])
	})

	mt.Run("is auth user", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collAuthUsers), mtest.FirstBatch))

		ok, err := store.IsAuthUser(ctx, -100, 7)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("remove", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))
		assert.NoError(mt, store.RemoveAuthUser(ctx, -100, 7))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, int64(-100), cmd.Lookup("updates", "0", "q", "chat_id").Int64())
		_, err := cmd.LookupErr("updates", "0", "u", "$unset", "users.7")
		assert.NoError(mt, err)
	})
}
