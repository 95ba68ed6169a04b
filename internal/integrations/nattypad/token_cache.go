package nattypad

import (
	"context"
	"sync"
	"time"
)

// TokenCache holds one bearer token for a fixed TTL. Concurrent callers that
// miss share a single refresh because the lock is held across it.
type TokenCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	token     string
	expiresAt time.Time
}

func NewTokenCache(ttl time.Duration) *TokenCache {
	return &TokenCache{ttl: ttl, now: time.Now}
}

// GetOrRefresh returns the cached token, or calls refresh and caches its
// result when the cache is empty or expired. A failed refresh caches nothing.
func (c *TokenCache) GetOrRefresh(ctx context.Context, refresh func(context.Context) (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	token, err := refresh(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	c.expiresAt = c.now().Add(c.ttl)
	return token, nil
}

// Invalidate drops the cached token, e.g. after the upstream rejected it.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}
