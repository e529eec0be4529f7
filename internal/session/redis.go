package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"medicalbot/internal/config"
	"medicalbot/internal/helper"
)

// RedisStore keeps each history as a list under <prefix>:session:<id>:history,
// with a marker key so that sessions with no history yet still exist.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	maxEntries int
}

func NewRedisStore(cfg config.RedisConfig, ttl time.Duration, maxEntries int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(rdb, cfg.Prefix, ttl, maxEntries)
}

func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration, maxEntries int) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, maxEntries: maxEntries}
}

func (s *RedisStore) metaKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *RedisStore) historyKey(id string) string {
	return fmt.Sprintf("%s:session:%s:history", s.prefix, id)
}

func (s *RedisStore) EnsureSession(ctx context.Context, id string) (Session, error) {
	if validID(id) {
		exists, err := s.client.Exists(ctx, s.metaKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("check session: %w", err)
		}
		if exists == 1 {
			sess := &redisSession{store: s, id: id}
			if err := sess.touch(ctx); err != nil {
				return nil, err
			}
			return sess, nil
		}
	}

	newID, err := helper.GenerateUUID()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.client.Set(ctx, s.metaKey(newID), time.Now().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &redisSession{store: s, id: newID}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type redisSession struct {
	store *RedisStore
	id    string
}

func (r *redisSession) ID() string { return r.id }

func (r *redisSession) History(ctx context.Context) ([]string, error) {
	lines, err := r.store.client.LRange(ctx, r.store.historyKey(r.id), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return lines, nil
}

func (r *redisSession) Append(ctx context.Context, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	values := make([]interface{}, len(lines))
	for i, l := range lines {
		values[i] = l
	}
	key := r.store.historyKey(r.id)
	_, err := r.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if r.store.maxEntries > 0 {
			pipe.LTrim(ctx, key, int64(-r.store.maxEntries), -1)
		}
		if r.store.ttl > 0 {
			pipe.Expire(ctx, key, r.store.ttl)
			pipe.Expire(ctx, r.store.metaKey(r.id), r.store.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *redisSession) touch(ctx context.Context) error {
	if r.store.ttl <= 0 {
		return nil
	}
	_, err := r.store.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Expire(ctx, r.store.metaKey(r.id), r.store.ttl)
		pipe.Expire(ctx, r.store.historyKey(r.id), r.store.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}
