package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-importer/internal/core/queue"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QueueStatusProvider 提供匯入隊列狀態
type QueueStatusProvider interface {
	GetQueueStatus() *queue.Status
}

// CacheStatsProvider 提供緩存統計，未啟用時回傳 nil
type CacheStatsProvider interface {
	CacheStats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	queue   QueueStatusProvider
	cache   CacheStatsProvider
}

// NewHandler 創建健康檢查處理器；queue 與 cache 可為 nil
func NewHandler(version string, q QueueStatusProvider, c CacheStatsProvider) *Handler {
	return &Handler{version: version, queue: q, cache: c}
}

// HealthCheck 回傳版本、執行期與隊列資訊
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}
	if h.cache != nil {
		response.Cache = h.cache.CacheStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 隊列 worker 停止後回報未就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.queue != nil && !h.queue.GetQueueStatus().Running {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "import queue is not running",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
