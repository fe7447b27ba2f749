package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Cache keys
const (
	SettingsKey      = "settings:app"
	revokedKeyPrefix = "auth:revoked:"
	failedKeyPrefix  = "auth:failed:"
)

// Cache is Redis when it is reachable and an in-process map otherwise.
// Both paths honour TTLs, so callers never need to know which one is live.
type Cache struct {
	client *redis.Client
	now    func() time.Time

	mu    sync.Mutex
	local map[string]entry
}

type entry struct {
	value   []byte
	count   int64
	expires time.Time
}

// New connects to Redis. On failure the cache degrades to local memory.
func New(addr, password string, db int) *Cache {
	c := NewLocal()
	if addr == "" {
		return c
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[Cache] Redis unavailable at %s, using in-process cache: %v", addr, err)
		client.Close()
		return c
	}

	log.Printf("[Cache] Connected to Redis at %s", addr)
	c.client = client
	return c
}

// NewLocal returns a cache that never talks to Redis
func NewLocal() *Cache {
	return &Cache{now: time.Now, local: make(map[string]entry)}
}

// IsHealthy reports whether Redis is in use and answering
func (c *Cache) IsHealthy(ctx context.Context) bool {
	if c.client == nil {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}

func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// GetCached returns cached data for a key
func (c *Cache) GetCached(ctx context.Context, key string) ([]byte, bool) {
	if c.client != nil {
		data, err := c.client.Get(ctx, key).Bytes()
		if err != nil {
			return nil, false
		}
		return data, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.alive(key)
	if !ok || e.value == nil {
		return nil, false
	}
	return append([]byte(nil), e.value...), true
}

// SetCached stores data for ttl
func (c *Cache) SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if c.client != nil {
		if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
			log.Warnf("[Cache] set %s failed: %v", key, err)
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[key] = entry{value: append([]byte(nil), data...), expires: c.now().Add(ttl)}
}

// InvalidateKeys removes the given keys
func (c *Cache) InvalidateKeys(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if c.client != nil {
		c.client.Del(ctx, keys...)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.local, k)
	}
}

// RevokeToken denies a token id until it would have expired anyway
func (c *Cache) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) {
	ttl := expiresAt.Sub(c.now())
	if ttl <= 0 {
		return
	}
	c.SetCached(ctx, revokedKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsRevoked reports whether logout revoked the token id
func (c *Cache) IsRevoked(ctx context.Context, tokenID string) bool {
	_, ok := c.GetCached(ctx, revokedKeyPrefix+tokenID)
	return ok
}

// RecordFailedLogin bumps the failure counter for identifier and returns the new count.
// The window starts at the first failure.
func (c *Cache) RecordFailedLogin(ctx context.Context, identifier string, window time.Duration) int64 {
	key := failedKeyPrefix + strings.ToLower(identifier)
	if c.client != nil {
		n, err := c.client.Incr(ctx, key).Result()
		if err != nil {
			return 0
		}
		if n == 1 {
			c.client.Expire(ctx, key, window)
		}
		return n
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.alive(key)
	if !ok {
		e = entry{expires: c.now().Add(window)}
	}
	e.count++
	c.local[key] = e
	return e.count
}

// FailedLogins returns the failures recorded in the current window
func (c *Cache) FailedLogins(ctx context.Context, identifier string) int64 {
	key := failedKeyPrefix + strings.ToLower(identifier)
	if c.client != nil {
		n, err := c.client.Get(ctx, key).Int64()
		if err != nil {
			return 0
		}
		return n
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.alive(key)
	if !ok {
		return 0
	}
	return e.count
}

// ResetFailedLogins clears the counter after a successful login
func (c *Cache) ResetFailedLogins(ctx context.Context, identifier string) {
	c.InvalidateKeys(ctx, failedKeyPrefix+strings.ToLower(identifier))
}

// alive returns the local entry if it has not expired. Caller holds mu.
func (c *Cache) alive(key string) (entry, bool) {
	e, ok := c.local[key]
	if !ok {
		return entry{}, false
	}
	if !c.now().Before(e.expires) {
		delete(c.local, key)
		return entry{}, false
	}
	return e, true
}
