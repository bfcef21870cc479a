package recipe

import (
	"fmt"
	"net/http"

	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxIngredientLines 單次解析的行數上限
const maxIngredientLines = 200

// IngredientParseRequest 食材行解析請求
type IngredientParseRequest struct {
	Lines []string `json:"lines" binding:"required"`
}

// IngredientParseResponse 食材行解析響應，無法解析的行會被略過
type IngredientParseResponse struct {
	Items   []extract.IngredientItem `json:"items"`
	Skipped int                      `json:"skipped"`
}

// HandleParseIngredients 解析自由格式的食材行
func (h *Handler) HandleParseIngredients(c *gin.Context) {
	var req IngredientParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}
	if len(req.Lines) > maxIngredientLines {
		respondError(c, common.NewValidationError(fmt.Sprintf("at most %d lines per request", maxIngredientLines)), h.debug)
		return
	}

	items := h.importer.ParseIngredients(req.Lines)
	if items == nil {
		items = []extract.IngredientItem{}
	}

	common.LogDebug("Ingredient lines parsed",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("lines", len(req.Lines)),
		zap.Int("items", len(items)),
	)
	c.JSON(http.StatusOK, IngredientParseResponse{
		Items:   items,
		Skipped: len(req.Lines) - len(items),
	})
}
