package recipe

import (
	"context"
	"fmt"

	"recipe-importer/internal/core/queue"
	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

// Enqueuer 批次匯入使用的隊列
type Enqueuer interface {
	Enqueue(ctx context.Context, url string) (<-chan queue.Result, error)
}

// BatchService 透過隊列並行匯入多個網址
type BatchService struct {
	queue Enqueuer
}

// NewBatchService 創建批次匯入服務
func NewBatchService(q Enqueuer) *BatchService {
	return &BatchService{queue: q}
}

// ImportBatch 結果順序與輸入相同；單一網址失敗不影響其他網址
func (s *BatchService) ImportBatch(ctx context.Context, urls []string) ([]BatchResult, error) {
	if len(urls) == 0 {
		return nil, common.NewValidationError("urls is required")
	}
	if len(urls) > MaxBatchSize {
		return nil, common.NewValidationError(fmt.Sprintf("at most %d urls per batch", MaxBatchSize))
	}

	pending := make([]<-chan queue.Result, len(urls))
	results := make([]BatchResult, len(urls))
	for i, url := range urls {
		ch, err := s.queue.Enqueue(ctx, url)
		if err != nil {
			results[i] = newBatchError(url, err)
			continue
		}
		pending[i] = ch
	}

	for i, ch := range pending {
		if ch == nil {
			continue
		}
		select {
		case r := <-ch:
			if r.Error != nil {
				results[i] = newBatchError(urls[i], r.Error)
				continue
			}
			results[i] = BatchResult{URL: urls[i], Recipe: r.Recipe}
		case <-ctx.Done():
			results[i] = newBatchError(urls[i], common.ErrRequestTimeout.Wrap(ctx.Err()))
		}
	}

	common.LogInfo("Batch import finished",
		zap.Int("urls", len(urls)),
		zap.String("request_id", common.RequestIDFrom(ctx)),
	)
	return results, nil
}
