package recipe

import (
	"context"

	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/pkg/common"
)

// MaxBatchSize 單次批次匯入的網址上限
const MaxBatchSize = 20

// PageFetcher 取得頁面 HTML
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// BatchResult 批次中單一網址的結果，Recipe 與 Error 只有一個有值
type BatchResult struct {
	URL    string                   `json:"url"`
	Recipe *extract.ExtractedRecipe `json:"recipe,omitempty"`
	Error  *common.ErrorResponse    `json:"error,omitempty"`
}

func newBatchError(url string, err error) BatchResult {
	ce := common.AsCustomError(err)
	return BatchResult{
		URL: url,
		Error: &common.ErrorResponse{
			Code:    ce.Code,
			Message: ce.Message,
			Details: err.Error(),
		},
	}
}
