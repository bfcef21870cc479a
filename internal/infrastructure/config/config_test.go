package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, validateConfig(cfg))

	assert.Equal(t, "recipe-importer", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.Empty(t, cfg.Taxonomy.Path)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("TAXONOMY_PATH", "/etc/recipes/taxonomy.yaml")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "/etc/recipes/taxonomy.yaml", cfg.Taxonomy.Path)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
		{"fetch timeout", func(c *Config) { c.Fetch.Timeout = 0 }},
		{"fetch retries", func(c *Config) { c.Fetch.Retries = -1 }},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"cache size", func(c *Config) { c.Cache.MaxSize = 0 }},
		{"cache ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"redis addr", func(c *Config) { c.Cache.Backend = CacheBackendRedis; c.Cache.RedisAddr = "" }},
		{"queue workers", func(c *Config) { c.Queue.Workers = 0 }},
		{"queue size", func(c *Config) { c.Queue.MaxSize = 0 }},
		{"rate limit", func(c *Config) { c.RateLimit.Requests = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestValidateConfigIgnoresDisabledCache(t *testing.T) {
	cfg := Default()
	cfg.Cache.Enabled = false
	cfg.Cache.Backend = "unknown"
	assert.NoError(t, validateConfig(cfg))
}
