package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps each session as JSON under "sessions:{id}" with a
// TTL, plus two index sets: "sessions" (all ids) and "sessions:userId:{uid}".
// Index sets do not expire; members whose session has expired are pruned
// when an index is read.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: "sessions",
		ttl:    SessionTTL,
	}
}

func (r *RedisSessionStore) key(sessionID string) string {
	return r.prefix + ":" + sessionID
}

func (r *RedisSessionStore) userKey(userID string) string {
	return r.prefix + ":userId:" + userID
}

func (r *RedisSessionStore) Save(ctx context.Context, s CachedSession) error {
	if s.ID == "" {
		return fmt.Errorf("cache: missing session id")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key(s.ID), data, r.ttl)
		p.SAdd(ctx, r.prefix, s.ID)
		if s.UserID != "" {
			p.SAdd(ctx, r.userKey(s.UserID), s.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisSessionStore) FindByID(ctx context.Context, sessionID string) (*CachedSession, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get session %s: %w", sessionID, err)
	}

	var s CachedSession
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("cache: failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) FindByUserID(ctx context.Context, userID string) ([]CachedSession, error) {
	return r.fromIndex(ctx, r.userKey(userID))
}

func (r *RedisSessionStore) FindAll(ctx context.Context) ([]CachedSession, error) {
	return r.fromIndex(ctx, r.prefix)
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	s, err := r.FindByID(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.key(sessionID))
		p.SRem(ctx, r.prefix, sessionID)
		if s != nil && s.UserID != "" {
			p.SRem(ctx, r.userKey(s.UserID), sessionID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: delete session %s: %w", sessionID, err)
	}
	return nil
}

// fromIndex loads every live session listed in indexKey, ordered by creation
// time, and removes index members whose session has expired.
func (r *RedisSessionStore) fromIndex(ctx context.Context, indexKey string) ([]CachedSession, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: read index %s: %w", indexKey, err)
	}

	sessions := []CachedSession{}
	if len(ids) == 0 {
		return sessions, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: load sessions: %w", err)
	}

	var stale []any
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var s CachedSession
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("cache: failed to unmarshal session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, indexKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("cache: prune index %s: %w", indexKey, err)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt != sessions[j].CreatedAt {
			return sessions[i].CreatedAt < sessions[j].CreatedAt
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions, nil
}

// RedisValueStore keeps arbitrary values under a fixed key prefix.
type RedisValueStore struct {
	client *redis.Client
	prefix string
}

func NewRedisValueStore(client *redis.Client) *RedisValueStore {
	return &RedisValueStore{
		client: client,
		prefix: "cache:",
	}
}

func (r *RedisValueStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

func (r *RedisValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisValueStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("cache: delete %s: %w", key, err)
	}
	return nil
}
