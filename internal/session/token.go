package session

import "sync"

// TokenCache holds the current session credential in memory. The API client
// reads it on every call; the Manager writes it on transitions. Sharing this
// small cache breaks the construction cycle between the two.
type TokenCache struct {
	mu    sync.RWMutex
	token string
}

// NewTokenCache returns an empty cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{}
}

// Token implements api.TokenSource.
func (c *TokenCache) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.token != ""
}

// Set replaces the cached credential.
func (c *TokenCache) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Clear drops the cached credential.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}
