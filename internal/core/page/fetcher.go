// Package page 抓取食譜網頁並取出其中的結構化資料。
package page

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Fetcher 以 HTTP GET 取得頁面 HTML
type Fetcher struct {
	config config.FetchConfig
	client *resty.Client
}

// NewFetcher 創建頁面抓取器
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	return &Fetcher{
		config: cfg,
		client: client,
	}
}

// Fetch 取得頁面內容；非 2xx 或超過大小上限時回傳 FETCH_FAILED
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("failed to fetch %s: %w", url, err))
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("%s returned status %d", url, resp.StatusCode()))
	}

	// 多讀一個位元組以判斷是否超過上限
	data, err := io.ReadAll(io.LimitReader(body, f.config.MaxBodyBytes+1))
	if err != nil {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("failed to read %s: %w", url, err))
	}
	if int64(len(data)) > f.config.MaxBodyBytes {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("%s exceeds %d bytes", url, f.config.MaxBodyBytes))
	}

	common.LogDebug("Page fetched",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(data)),
		zap.String("content_type", resp.Header().Get("Content-Type")),
		zap.Duration("duration", time.Since(start)),
	)
	return strings.ToValidUTF8(string(data), "�"), nil
}
