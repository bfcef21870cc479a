package recipe

import (
	"context"
	"net/http"

	"recipe-importer/internal/core/extract"
	recipeService "recipe-importer/internal/core/recipe"
	"recipe-importer/internal/core/taxonomy"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Importer 匯入服務
type Importer interface {
	ImportURL(ctx context.Context, rawURL string) (*extract.ExtractedRecipe, error)
	ImportDocument(ctx context.Context, tree interface{}) (*extract.ExtractedRecipe, error)
	ParseIngredients(lines []string) []extract.IngredientItem
	CacheStats() map[string]interface{}
}

// BatchImporter 批次匯入服務
type BatchImporter interface {
	ImportBatch(ctx context.Context, urls []string) ([]recipeService.BatchResult, error)
}

// ImportRequest 以網址匯入食譜
type ImportRequest struct {
	URL string `json:"url" binding:"required"`
}

// BatchImportRequest 一次匯入多個網址
type BatchImportRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// BatchImportResponse 批次匯入結果，順序與請求相同
type BatchImportResponse struct {
	Results   []recipeService.BatchResult `json:"results"`
	Succeeded int                         `json:"succeeded"`
	Failed    int                         `json:"failed"`
}

// TaxonomyResponse 分類目錄
type TaxonomyResponse struct {
	Groups []taxonomy.Group `json:"groups"`
}

// Handler 食譜匯入處理程序
type Handler struct {
	importer Importer
	batch    BatchImporter
	catalog  *taxonomy.Catalog
	debug    bool
}

// NewHandler 創建新的食譜處理程序
func NewHandler(importer Importer, batch BatchImporter, catalog *taxonomy.Catalog, debug bool) *Handler {
	return &Handler{
		importer: importer,
		batch:    batch,
		catalog:  catalog,
		debug:    debug,
	}
}

// HandleImport 抓取網址並回傳轉換後的食譜
func (h *Handler) HandleImport(c *gin.Context) {
	requestID := requestid.Get(c)

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	common.LogInfo("開始處理食譜匯入請求",
		zap.String("request_id", requestID),
		zap.String("url", req.URL),
		zap.String("client_ip", c.ClientIP()),
	)

	recipe, err := h.importer.ImportURL(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	common.LogInfo("食譜匯入成功",
		zap.String("request_id", requestID),
		zap.String("name", recipe.Name),
		zap.Int("ingredient_sections", len(recipe.Ingredients)),
		zap.Int("method_sections", len(recipe.Method)),
	)
	c.JSON(http.StatusOK, recipe)
}

// HandleExtract 直接轉換請求體中的 JSON-LD 文件
func (h *Handler) HandleExtract(c *gin.Context) {
	tree, err := common.DecodeTree(c.Request.Body)
	if err != nil {
		respondError(c, common.ErrInvalidDocument.Wrap(err), h.debug)
		return
	}

	recipe, err := h.importer.ImportDocument(c.Request.Context(), tree)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// HandleBatchImport 並行匯入多個網址，單一網址失敗只反映在該筆結果
func (h *Handler) HandleBatchImport(c *gin.Context) {
	var req BatchImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	results, err := h.batch.ImportBatch(c.Request.Context(), req.URLs)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	resp := BatchImportResponse{Results: results}
	for _, r := range results {
		if r.Error != nil {
			resp.Failed++
			if !h.debug {
				r.Error.Details = ""
			}
			continue
		}
		resp.Succeeded++
	}

	common.LogInfo("批次匯入完成",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("succeeded", resp.Succeeded),
		zap.Int("failed", resp.Failed),
	)
	c.JSON(http.StatusOK, resp)
}

// HandleTaxonomy 回傳目前載入的分類目錄
func (h *Handler) HandleTaxonomy(c *gin.Context) {
	resp := TaxonomyResponse{Groups: []taxonomy.Group{}}
	if h.catalog != nil {
		resp.Groups = h.catalog.Groups()
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCacheStats 回傳結果緩存的統計
func (h *Handler) HandleCacheStats(c *gin.Context) {
	stats := h.importer.CacheStats()
	if stats == nil {
		respondError(c, common.ErrCacheDisabled, h.debug)
		return
	}
	c.JSON(http.StatusOK, stats)
}
