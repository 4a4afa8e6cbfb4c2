// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// saveScript writes the session unless it was already stored as submitted.
// KEYS[1] session, KEYS[2] submitted marker; ARGV payload, ttl ms, submitted.
const saveScript = `
if redis.call("EXISTS", KEYS[2]) == 1 then return 0 end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
if ARGV[3] == "1" then redis.call("SET", KEYS[2], "1", "PX", ARGV[2]) end
return 1
`

// releaseScript deletes the lock only while it still holds our owner value.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end
return 0
`

// RedisClient is the part of the go-redis client RedisStore uses.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Close() error
}

type RedisConfig struct {
	Prefix string
	TTL    time.Duration
	// LockTTL bounds how long a crashed submission can hold the lock.
	LockTTL time.Duration
}

// RedisStore keeps sessions as JSON under Prefix+id with a sliding TTL.
type RedisStore struct {
	client RedisClient
	cfg    RedisConfig
}

func NewRedisStore(client RedisClient, cfg RedisConfig) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = "survey:session:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &RedisStore{client: client, cfg: cfg}
}

// DialRedis parses a redis:// URL, connects and verifies the connection with
// PING.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	slog.Info("Connected to Redis", "addr", opts.Addr)
	return client, nil
}

func (r *RedisStore) key(id string) string { return r.cfg.Prefix + id }

func (r *RedisStore) lockKey(id string) string { return r.cfg.Prefix + "lock:" + id }

func (r *RedisStore) doneKey(id string) string { return r.cfg.Prefix + "done:" + id }

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// Save refuses with ErrSubmitted once a submitted version of the session was
// stored.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	submitted := "0"
	if s.Submitted {
		submitted = "1"
	}

	written, err := r.client.Eval(ctx, saveScript,
		[]string{r.key(s.ID), r.doneKey(s.ID)},
		string(raw), r.cfg.TTL.Milliseconds(), submitted,
	).Int()
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	if written == 0 {
		return ErrSubmitted
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id), r.doneKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// AcquireSubmit takes the submission lock with SETNX. The lock expires after
// LockTTL even if release is never called; release only deletes a lock that
// still carries this call's owner value.
func (r *RedisStore) AcquireSubmit(ctx context.Context, id string) (func(), error) {
	owner := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.lockKey(id), owner, r.cfg.LockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", id, err)
	}
	if !ok {
		return nil, ErrSubmitLocked
	}

	return func() {
		err := r.client.Eval(context.Background(), releaseScript, []string{r.lockKey(id)}, owner).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			slog.Error("Failed to release session lock", "session_id", id, "error", err)
		}
	}, nil
}

// Close closes the underlying client.
func (r *RedisStore) Close() error { return r.client.Close() }
