package mongo

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sariqm/brandmate/internal/models"
	"github.com/sariqm/brandmate/internal/utils"
)

// Integration tests against a real MongoDB. Enabled by MONGO_TEST_URI, ex:
//
//	MONGO_TEST_URI=mongodb://localhost:27017 go test ./internal/repositories/mongo/
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("brandmate_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestNextIDConcurrentUniqueness(t *testing.T) {
	repo := NewMessageRepo(testDatabase(t))
	ctx := context.Background()

	const workers = 50
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = repo.NextID(ctx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	// every id handed out exactly once, 1..N with no gaps when nothing failed
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for i, id := range ids {
		require.Equal(t, int64(i+1), id)
	}
}

func TestStoreAssignsSequentialIDs(t *testing.T) {
	repo := NewMessageRepo(testDatabase(t))
	ctx := context.Background()

	first, err := repo.Store(ctx, &models.Message{Text: "one", Sender: models.SenderUser, UserID: 1})
	require.NoError(t, err)
	second, err := repo.Store(ctx, &models.Message{Text: "two", Sender: models.SenderBot, UserID: 1})
	require.NoError(t, err)

	require.Equal(t, first+1, second)
}

func TestStoreBurnsIDOnInsertFailure(t *testing.T) {
	db := testDatabase(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	// a unique index on id lets us force the insert (not the counter bump)
	// to fail
	_, err := db.Collection("messages").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	require.NoError(t, err)

	first, err := repo.Store(ctx, &models.Message{Text: "one", Sender: models.SenderUser, UserID: 1})
	require.NoError(t, err)

	// occupy the id the next Store will draw
	_, err = db.Collection("messages").InsertOne(ctx, models.Message{
		ID: first + 1, Text: "squatter", Sender: models.SenderUser, UserID: 1, CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = repo.Store(ctx, &models.Message{Text: "two", Sender: models.SenderUser, UserID: 1})
	require.Error(t, err)

	// the failed attempt consumed its id; the sequence moved past it
	third, err := repo.Store(ctx, &models.Message{Text: "three", Sender: models.SenderUser, UserID: 1})
	require.NoError(t, err)
	require.Equal(t, first+2, third)
}

func TestListByUserNewestFirstAndScoped(t *testing.T) {
	repo := NewMessageRepo(testDatabase(t))
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 5; i++ {
		_, err := repo.Store(ctx, &models.Message{
			Text:      fmt.Sprintf("mine %d", i),
			Sender:    models.SenderUser,
			UserID:    1,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	_, err := repo.Store(ctx, &models.Message{
		Text: "someone else's", Sender: models.SenderUser, UserID: 2, CreatedAt: base,
	})
	require.NoError(t, err)

	got, err := repo.ListByUser(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "mine 4", got[0].Text)
	require.Equal(t, "mine 3", got[1].Text)
	require.Equal(t, "mine 2", got[2].Text)
	for _, m := range got {
		require.Equal(t, int64(1), m.UserID)
	}
}

func TestUserRepoRoundTrip(t *testing.T) {
	repo := NewUserRepo(testDatabase(t))
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "ana@example.com")
	require.ErrorIs(t, err, utils.ErrNotFound)

	id, err := repo.Insert(ctx, &models.User{
		UserName: "ana", UserEmail: "ana@example.com", Password: "hash",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	byID, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", byID.UserEmail)

	byEmail, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.UserID)

	require.NoError(t, repo.Delete(ctx, id))
	require.ErrorIs(t, repo.Delete(ctx, id), utils.ErrNotFound)
	_, err = repo.FindByID(ctx, id)
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestMessageAndUserCountersAreIndependent(t *testing.T) {
	db := testDatabase(t)
	messages := NewMessageRepo(db)
	users := NewUserRepo(db)
	ctx := context.Background()

	mid, err := messages.NextID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), mid)

	uid, err := users.Insert(ctx, &models.User{UserName: "a", UserEmail: "a@b.c", Password: "h"})
	require.NoError(t, err)
	require.Equal(t, int64(1), uid)
}
