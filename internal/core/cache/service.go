package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service Redis 緩存服務，多個實例共用匯入結果
type Service struct {
	client *redis.Client
	config config.CacheConfig
	hits   int64
	misses int64
}

// NewService 創建緩存服務並測試連線
func NewService(cfg config.CacheConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis cache connected", zap.String("addr", cfg.RedisAddr))
	return &Service{
		client: client,
		config: cfg,
	}, nil
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, url string) (*extract.ExtractedRecipe, error) {
	key := Key(url)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			common.LogCacheMiss("redis", key)
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var recipe extract.ExtractedRecipe
	if err := common.ParseJSONBytes(data, &recipe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	atomic.AddInt64(&s.hits, 1)
	common.LogCacheHit("redis", key)
	return &recipe, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, url string, recipe *extract.ExtractedRecipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	if err := s.client.Set(ctx, Key(url), data, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 獲取緩存統計信息
func (s *Service) Stats() map[string]interface{} {
	hits := atomic.LoadInt64(&s.hits)
	misses := atomic.LoadInt64(&s.misses)
	return map[string]interface{}{
		"backend":   config.CacheBackendRedis,
		"addr":      s.config.RedisAddr,
		"hits":      hits,
		"misses":    misses,
		"hit_ratio": hitRatio(hits, misses),
	}
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}
