package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"recipe-importer/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Timeout 為請求設置截止時間；處理器超時且尚未回應時回傳 504
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}
		common.LogError("Request timeout",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
			zap.Duration("timeout", d),
		)
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
			Code:    common.ErrCodeGatewayTimeout,
			Message: common.ErrGatewayTimeout.Message,
			Details: d.String(),
		})
	}
}
