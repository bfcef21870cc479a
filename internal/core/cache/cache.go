// Package cache 緩存已匯入的食譜，鍵為正規化後的來源網址。
// 提供行程內（CacheManager）與 Redis（Service）兩種後端。
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/infrastructure/config"
)

const keyPrefix = "recipe:import:"

// Cache 匯入結果緩存；未命中時回傳 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, url string) (*extract.ExtractedRecipe, error)
	Set(ctx context.Context, url string, recipe *extract.ExtractedRecipe) error
	Stats() map[string]interface{}
	Close() error
}

// New 依設定選擇後端；停用時回傳 nil
func New(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case config.CacheBackendRedis:
		s, err := NewService(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.CacheBackendMemory, "":
		return NewManager(cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key 計算來源網址的緩存鍵
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(hash[:])
}
