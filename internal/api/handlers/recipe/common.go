package recipe

import (
	"context"
	"errors"
	"net/http"

	"recipe-importer/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 將錯誤轉換為統一的 ErrorResponse；Details 只在 debug 模式輸出
func respondError(c *gin.Context, err error, debug bool) {
	var ce *common.CustomError
	switch {
	case common.IsValidationError(err):
		ce = common.ErrInvalidRequest.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		// 抓取途中逾時會被 FETCH_FAILED 包住，仍回報 504
		ce = common.ErrGatewayTimeout.Wrap(err)
	case errors.As(err, &ce):
	case errors.Is(err, context.Canceled):
		ce = common.ErrRequestTimeout.Wrap(err)
	default:
		ce = common.ErrInternalError.Wrap(err)
	}

	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.Int("status", ce.Status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	resp := common.ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	if debug {
		resp.Details = err.Error()
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, resp)
}
