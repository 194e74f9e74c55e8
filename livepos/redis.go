package livepos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Live positions are transient: keys expire so stale sessions fade out
// without explicit cleanup.
const liveTTL = 24 * time.Hour

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func posKey(sessionID int64) string {
	return fmt.Sprintf("pigontime:session:%d:pos", sessionID)
}

func (r *RedisStore) SetLatest(ctx context.Context, lp *LivePosition) error {
	data, err := json.Marshal(lp)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, posKey(lp.SessionID), data, liveTTL).Err()
}

func (r *RedisStore) GetLatest(ctx context.Context, sessionID int64) (*LivePosition, error) {
	data, err := r.client.Get(ctx, posKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lp LivePosition
	return &lp, json.Unmarshal(data, &lp)
}

func (r *RedisStore) Clear(ctx context.Context, sessionID int64) error {
	return r.client.Del(ctx, posKey(sessionID)).Err()
}
