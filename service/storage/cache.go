package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"marketgram/logger"
)

const participantsKeyPrefix = "mg:conv:participants:"

// CachedStore decorates a Store with a read-through redis cache for
// conversation participant pairs — the one storage read on the hot send
// path. Participant pairs never change for a two-party thread, so the TTL
// exists only to bound the keyspace.
type CachedStore struct {
	Store
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{Store: inner, rdb: rdb, ttl: ttl}
}

func participantsKey(conversationID string) string {
	return participantsKeyPrefix + conversationID
}

func (c *CachedStore) GetConversationParticipants(ctx context.Context, conversationID string) ([2]string, error) {
	key := participantsKey(conversationID)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var pair [2]string
		if jerr := json.Unmarshal(raw, &pair); jerr == nil {
			return pair, nil
		}
		// poisoned entry, fall through to the source of truth
		_ = c.rdb.Del(ctx, key).Err()
	}

	pair, err := c.Store.GetConversationParticipants(ctx, conversationID)
	if err != nil {
		return pair, err
	}

	if raw, jerr := json.Marshal(pair); jerr == nil {
		if serr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); serr != nil {
			logger.Debugf("[cache] set %s: %v", key, serr)
		}
	}
	return pair, nil
}
