package oauth2

import (
	"strings"
	"sync"
)

// TokenCache shares tokens between the tests of one run. Tokens are keyed by
// token URL, client, user and scopes, so two tests with the same grant reuse
// one token.
type TokenCache struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

func NewTokenCache() *TokenCache {
	return &TokenCache{tokens: make(map[string]*Token)}
}

func cacheKey(cfg *Config) string {
	return strings.Join([]string{cfg.TokenURL, cfg.ClientID, cfg.Username, strings.Join(cfg.Scopes, ",")}, "|")
}

// Valid returns the cached token for cfg unless it is missing or about to
// expire. Expired tokens are evicted.
func (c *TokenCache) Valid(cfg *Config) (*Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(cfg)
	token, ok := c.tokens[key]
	if !ok {
		return nil, false
	}
	if token.IsExpired() {
		delete(c.tokens, key)
		return nil, false
	}
	return token, true
}

func (c *TokenCache) Store(cfg *Config, token *Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[cacheKey(cfg)] = token
}

// Len returns the number of cached tokens
func (c *TokenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tokens)
}
