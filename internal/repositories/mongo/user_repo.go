package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/sariqm/brandmate/internal/models"
	"github.com/sariqm/brandmate/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const userCounterKey = "user_id"

type UserRepository interface {
	FindByID(ctx context.Context, userID int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Insert assigns the next user id and stores the user.
	Insert(ctx context.Context, u *models.User) (int64, error)
	Delete(ctx context.Context, userID int64) error
}

type userRepo struct {
	users    *mongo.Collection
	counters *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepository {
	return &userRepo{
		users:    db.Collection("users"),
		counters: db.Collection("counters"),
	}
}

func (r *userRepo) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	err := r.users.FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.users.FindOne(ctx, bson.M{"user_email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Insert(ctx context.Context, u *models.User) (int64, error) {
	id, err := nextSeq(ctx, r.counters, userCounterKey)
	if err != nil {
		return 0, err
	}

	u.UserID = id
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := r.users.InsertOne(ctx, u); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *userRepo) Delete(ctx context.Context, userID int64) error {
	res, err := r.users.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
