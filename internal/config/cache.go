package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware. Only
// the public restaurant page is cached; order and stock reads are not.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       strings.TrimSpace(envStr("CACHE_PREFIX", "cache")),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
