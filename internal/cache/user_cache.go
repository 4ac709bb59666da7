package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sariqm/brandmate/internal/models"
)

// UserLookup is the read-through cache in front of the user directory.
type UserLookup interface {
	Get(ctx context.Context, email string) (*models.User, bool, error)
	Set(ctx context.Context, u *models.User) error
	Invalidate(ctx context.Context, email string) error
}

const userKeyPrefix = "user:email:"

// UserCache keeps user lookups in Redis for a short TTL so token-auth does
// not hit Mongo on every request.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UserCache{rdb: rdb, ttl: ttl}
}

func (c *UserCache) Get(ctx context.Context, email string) (*models.User, bool, error) {
	s, err := c.rdb.Get(ctx, userKeyPrefix+email).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var u models.User
	if err := json.Unmarshal([]byte(s), &u); err != nil {
		// corrupt entry: drop it and treat as a miss
		_ = c.rdb.Del(ctx, userKeyPrefix+email).Err()
		return nil, false, nil
	}
	return &u, true, nil
}

func (c *UserCache) Set(ctx context.Context, u *models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, userKeyPrefix+u.UserEmail, b, c.ttl).Err()
}

func (c *UserCache) Invalidate(ctx context.Context, email string) error {
	return c.rdb.Del(ctx, userKeyPrefix+email).Err()
}
