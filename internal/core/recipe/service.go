package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-importer/internal/core/cache"
	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/core/page"
	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

// ImportService 串接頁面抓取、結構化資料抽取與結果緩存
type ImportService struct {
	fetcher   PageFetcher
	extractor *extract.Extractor
	cache     cache.Cache
}

// NewImportService 創建匯入服務；resultCache 可為 nil
func NewImportService(fetcher PageFetcher, extractor *extract.Extractor, resultCache cache.Cache) *ImportService {
	return &ImportService{
		fetcher:   fetcher,
		extractor: extractor,
		cache:     resultCache,
	}
}

// ImportURL 抓取網址並轉換其中的食譜
func (s *ImportService) ImportURL(ctx context.Context, rawURL string) (recipe *extract.ExtractedRecipe, err error) {
	start := time.Now()
	defer func() {
		common.LogImport(rawURL, time.Since(start), err, common.RequestIDFrom(ctx))
	}()

	url, err := common.NormalizeURL(rawURL)
	if err != nil {
		return nil, common.ErrInvalidRequest.Wrap(err)
	}

	if cached, ok := s.fromCache(ctx, url); ok {
		return cached, nil
	}

	htmlContent, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := page.ParseDocument(url, htmlContent)
	if err != nil {
		return nil, common.ErrInvalidDocument.Wrap(fmt.Errorf("failed to parse page: %w", err))
	}

	node, ok := locate(doc.JSONLD)
	if !ok {
		return nil, common.ErrNoRecipeFound.Wrap(fmt.Errorf("%d JSON-LD blocks on %s", len(doc.JSONLD), url))
	}

	recipe = s.extractor.Extract(node)
	if recipe.Source == "" {
		recipe.Source = url
	}
	if recipe.AdditionalData.ImageURL == "" {
		recipe.AdditionalData.ImageURL = doc.Image()
	}

	s.toCache(ctx, url, recipe)
	return recipe, nil
}

// ImportDocument 轉換呼叫端已解析好的 JSON-LD 樹
func (s *ImportService) ImportDocument(ctx context.Context, tree interface{}) (*extract.ExtractedRecipe, error) {
	if tree == nil {
		return nil, common.ErrInvalidDocument
	}
	if _, ok := extract.FindRecipe(tree); !ok {
		// 沒有 Recipe 節點時，只有物件可以當作食譜本身
		if _, isRecord := tree.(map[string]interface{}); !isRecord {
			return nil, common.ErrNoRecipeFound
		}
	}

	recipe := s.extractor.Extract(tree)
	common.LogDebug("Document extracted",
		zap.String("name", recipe.Name),
		zap.String("request_id", common.RequestIDFrom(ctx)),
	)
	return recipe, nil
}

// ParseIngredients 解析自由格式的食材行
func (s *ImportService) ParseIngredients(lines []string) []extract.IngredientItem {
	return s.extractor.ParseIngredients(lines)
}

// CacheStats 回傳緩存統計；未啟用時為 nil
func (s *ImportService) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.Stats()
}

func (s *ImportService) fromCache(ctx context.Context, url string) (*extract.ExtractedRecipe, bool) {
	if s.cache == nil {
		return nil, false
	}
	recipe, err := s.cache.Get(ctx, url)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("Cache lookup failed", zap.String("url", url), zap.Error(err))
		}
		return nil, false
	}
	return recipe, true
}

func (s *ImportService) toCache(ctx context.Context, url string, recipe *extract.ExtractedRecipe) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, url, recipe); err != nil {
		common.LogWarn("Cache store failed", zap.String("url", url), zap.Error(err))
	}
}

// locate 依序在每個 JSON-LD 區塊中尋找 Recipe 節點
func locate(blocks []interface{}) (map[string]interface{}, bool) {
	for _, block := range blocks {
		if node, ok := extract.FindRecipe(block); ok {
			return node, true
		}
	}
	return nil, false
}
