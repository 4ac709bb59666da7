package mongo

import (
	"context"
	"time"

	"github.com/sariqm/brandmate/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCounterKey = "message_id"

type MessageRepository interface {
	// NextID atomically increments and returns the message sequence.
	NextID(ctx context.Context) (int64, error)
	// Store assigns the next id to m, inserts it, and returns the id. The id
	// is consumed even when the insert fails; the sequence never runs
	// backwards and never hands out duplicates.
	Store(ctx context.Context, m *models.Message) (int64, error)
	// ListByUser returns at most limit messages for userID, newest first.
	ListByUser(ctx context.Context, userID int64, limit int64) ([]models.Message, error)
}

type messageRepo struct {
	messages *mongo.Collection
	counters *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepository {
	return &messageRepo{
		messages: db.Collection("messages"),
		counters: db.Collection("counters"),
	}
}

// NextID is a single find-and-modify round trip; the counter document is
// created on first use. Splitting this into a read plus a write would allow
// two concurrent callers to observe the same value.
func (r *messageRepo) NextID(ctx context.Context) (int64, error) {
	return nextSeq(ctx, r.counters, messageCounterKey)
}

func (r *messageRepo) Store(ctx context.Context, m *models.Message) (int64, error) {
	id, err := r.NextID(ctx)
	if err != nil {
		return 0, err
	}

	m.ID = id
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if _, err := r.messages.InsertOne(ctx, m); err != nil {
		// id stays burnt: gaps are fine, duplicates are not
		return 0, err
	}
	return id, nil
}

func (r *messageRepo) ListByUser(ctx context.Context, userID int64, limit int64) ([]models.Message, error) {
	if limit <= 0 {
		limit = 20
	}

	cur, err := r.messages.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// nextSeq bumps the named counter with an upsert and returns the
// post-increment value.
func nextSeq(ctx context.Context, counters *mongo.Collection, key string) (int64, error) {
	var doc models.Counter
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
