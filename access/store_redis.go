package access

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/theConCreator/OnyxShopbot/model"
)

var redisAccessPrefix = "access/"

// RedisStore keeps access state in one redis hash per user.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &RedisStore{Client: rdb}, nil
}

func redisAccessKey(userID int64) string {
	return redisAccessPrefix + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (model.AccessState, error) {
	st := model.AccessState{UserID: userID}
	fields, err := s.Client.HGetAll(ctx, redisAccessKey(userID)).Result()
	if err != nil {
		return st, err
	}
	st.Banned = fields["banned"] == "1"
	if v, ok := fields["last_published_at"]; ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return st, err
		}
		st.LastPublishedAt = time.UnixMilli(ms)
	}
	return st, nil
}

func (s *RedisStore) SetBanned(ctx context.Context, userID int64, banned bool) error {
	v := "0"
	if banned {
		v = "1"
	}
	return s.Client.HSet(ctx, redisAccessKey(userID), "banned", v).Err()
}

func (s *RedisStore) SetLastPublished(ctx context.Context, userID int64, at time.Time) error {
	return s.Client.HSet(ctx, redisAccessKey(userID), "last_published_at", at.UnixMilli()).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
