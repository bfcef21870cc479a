package api

import (
	"fmt"
	"time"

	"recipe-importer/internal/api/handlers/health"
	recipeHandler "recipe-importer/internal/api/handlers/recipe"
	"recipe-importer/internal/api/middleware"
	"recipe-importer/internal/core/cache"
	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/core/page"
	"recipe-importer/internal/core/queue"
	recipeService "recipe-importer/internal/core/recipe"
	"recipe-importer/internal/core/taxonomy"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由使用的服務集合
type Services struct {
	Catalog  *taxonomy.Catalog
	Importer *recipeService.ImportService
	Batch    *recipeService.BatchService
	Queue    *queue.Manager
}

// NewServices 初始化服務並啟動匯入隊列；resultCache 可為 nil
func NewServices(cfg *config.Config, resultCache cache.Cache) (*Services, error) {
	catalog, err := taxonomy.LoadFile(cfg.Taxonomy.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}

	extractor := extract.NewExtractor(catalog)
	fetcher := page.NewFetcher(cfg.Fetch)
	importer := recipeService.NewImportService(fetcher, extractor, resultCache)

	q := queue.NewManager(cfg.Queue)
	q.Start(importer.ImportURL)

	common.LogInfo("Services initialized",
		zap.Int("taxonomy_groups", len(catalog.Groups())),
		zap.Bool("cache_enabled", resultCache != nil),
		zap.Int("queue_workers", cfg.Queue.Workers),
		zap.Duration("fetch_timeout", cfg.Fetch.Timeout),
	)

	return &Services{
		Catalog:  catalog,
		Importer: importer,
		Batch:    recipeService.NewBatchService(q),
		Queue:    q,
	}, nil
}

// Close 停止匯入隊列
func (s *Services) Close() {
	if s.Queue != nil {
		s.Queue.Close()
	}
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *Services) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(abortWith(common.ErrNotFound))
	router.NoMethod(abortWith(common.ErrMethodNotAllowed))

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.RequestContext())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 健康檢查不受限流與重複請求檢查影響
	healthHandler := health.NewHandler(cfg.App.Version, svc.Queue, svc.Importer)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg.DedupWindow))
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	{
		h := recipeHandler.NewHandler(svc.Importer, svc.Batch, svc.Catalog, cfg.App.Debug)

		// 註冊食譜相關路由
		recipeGroup := api.Group("/recipe")
		{
			// 以網址匯入
			recipeGroup.POST("/import", h.HandleImport)

			// 批次匯入
			recipeGroup.POST("/import/batch", h.HandleBatchImport)

			// 直接轉換 JSON-LD
			recipeGroup.POST("/extract", h.HandleExtract)
		}

		api.POST("/ingredient/parse", h.HandleParseIngredients)
		api.GET("/taxonomy", h.HandleTaxonomy)
		api.GET("/cache/stats", h.HandleCacheStats)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

// abortWith 未註冊路由與方法也回傳統一的 ErrorResponse
func abortWith(e *common.CustomError) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(e.Status, common.ErrorResponse{
			Code:    e.Code,
			Message: e.Message,
		})
	}
}
