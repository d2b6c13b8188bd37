package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jw6ventures/callhistory/internal/calls"
)

const (
	sessionCookieName = "callhistory_sid"
	redisKeyPrefix    = "callhistory:filters:"
	// idleTTL drops filters of sessions that stopped making requests.
	idleTTL = 12 * time.Hour
)

// RedisConfig controls the Redis client used by RedisStore.
type RedisConfig struct {
	Addr         string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	PingTimeout  time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	out := c
	if out.DialTimeout <= 0 {
		out.DialTimeout = 3 * time.Second
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = 2 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 2 * time.Second
	}
	if out.PoolSize <= 0 {
		out.PoolSize = 10
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 2 * time.Second
	}
	return out
}

// OpenRedis initializes a Redis client and validates connectivity via PING.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisStore keeps filters in a Redis hash keyed by a random session id that
// travels in a session cookie.
type RedisStore struct {
	rdb    redis.Cmdable
	secure bool
}

func NewRedisStore(rdb redis.Cmdable, secure bool) *RedisStore {
	return &RedisStore{rdb: rdb, secure: secure}
}

// Load returns the filters of the session, or defaults for a new session.
func (s *RedisStore) Load(r *http.Request) (calls.Filters, error) {
	sid, ok := sessionID(r)
	if !ok {
		return calls.DefaultFilters(), nil
	}
	vals, err := s.rdb.HGetAll(r.Context(), redisKey(sid)).Result()
	if err != nil {
		return calls.DefaultFilters(), fmt.Errorf("load filters: %w", err)
	}
	if len(vals) == 0 {
		return calls.DefaultFilters(), nil
	}
	return calls.Filters{CallType: vals["call_type"], Direction: vals["direction"]}.Normalize(), nil
}

// Save stores f, issuing a session id cookie on first use.
func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, f calls.Filters) error {
	sid, ok := sessionID(r)
	if !ok {
		sid = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	f = f.Normalize()
	key := redisKey(sid)
	ctx := r.Context()
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "call_type", f.CallType, "direction", f.Direction)
		pipe.Expire(ctx, key, idleTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save filters: %w", err)
	}
	return nil
}

func sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func redisKey(sid string) string {
	return redisKeyPrefix + sid
}
