package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-importer/internal/pkg/common"
)

// requestCache 最近出現過的請求指紋
type requestCache struct {
	mu       sync.Mutex
	requests map[string]time.Time
	window   time.Duration
	now      func() time.Time
}

func newRequestCache(window time.Duration) *requestCache {
	if window <= 0 {
		window = time.Second
	}
	return &requestCache{
		requests: make(map[string]time.Time),
		window:   window,
		now:      time.Now,
	}
}

// seen 記錄指紋，回傳是否在視窗內重複
func (rc *requestCache) seen(fingerprint string) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := rc.now()
	if last, exists := rc.requests[fingerprint]; exists && now.Sub(last) <= rc.window {
		return true
	}
	rc.requests[fingerprint] = now

	// 順手清掉過期的指紋，讓 map 不會無限成長
	if len(rc.requests) > 1024 {
		for k, t := range rc.requests {
			if now.Sub(t) > 10*rc.window {
				delete(rc.requests, k)
			}
		}
	}
	return false
}

// Deduplication 在 window 內拒絕相同路徑與相同內容的重複 POST
func Deduplication(window time.Duration) gin.HandlerFunc {
	cache := newRequestCache(window)

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogWarn("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
					Code:    common.ErrCodeTooLarge,
					Message: common.ErrTooLarge.Message,
				})
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if cache.seen(fingerprint) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "重複的請求",
			})
			return
		}

		c.Next()
	}
}
