// Package queue 以固定數量的 worker 處理批次匯入請求。
package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler 處理單一網址的匯入
type Handler func(ctx context.Context, url string) (*extract.ExtractedRecipe, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	URL     string
	Result  chan Result
}

// Result 處理結果
type Result struct {
	URL    string
	Recipe *extract.ExtractedRecipe
	Error  error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int  `json:"queue_length"`
	ProcessedCount int  `json:"processed_count"`
	FailedCount    int  `json:"failed_count"`
	MaxQueueSize   int  `json:"max_queue_size"`
	Workers        int  `json:"workers"`
	Running        bool `json:"running"`
}

// Manager 隊列管理器
type Manager struct {
	config    config.QueueConfig
	queue     chan *Request
	done      chan struct{}
	group     *errgroup.Group
	processed int64
	failed    int64
	mu        sync.RWMutex
	running   bool
	closed    bool
}

// NewManager 創建新的隊列管理器
func NewManager(cfg config.QueueConfig) *Manager {
	return &Manager{
		config: cfg,
		queue:  make(chan *Request, cfg.MaxSize),
		done:   make(chan struct{}),
	}
}

// Start 啟動 worker；重複呼叫無效
func (m *Manager) Start(handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running || m.closed {
		return
	}
	m.running = true

	m.group = &errgroup.Group{}
	for i := 0; i < m.config.Workers; i++ {
		worker := i
		m.group.Go(func() error {
			m.work(worker, handler)
			return nil
		})
	}

	common.LogInfo("Import queue started",
		zap.Int("workers", m.config.Workers),
		zap.Int("max_queue_size", m.config.MaxSize),
	)
}

func (m *Manager) work(worker int, handler Handler) {
	for req := range m.queue {
		// 呼叫端已放棄的請求直接回報
		if err := req.Context.Err(); err != nil {
			req.Result <- Result{URL: req.URL, Error: err}
			atomic.AddInt64(&m.failed, 1)
			continue
		}

		recipe, err := handler(req.Context, req.URL)
		if err != nil {
			atomic.AddInt64(&m.failed, 1)
			common.LogDebug("Queued import failed",
				zap.Int("worker", worker),
				zap.String("url", req.URL),
				zap.Error(err),
			)
		}
		atomic.AddInt64(&m.processed, 1)
		req.Result <- Result{URL: req.URL, Recipe: recipe, Error: err}
	}
}

// Enqueue 將請求加入隊列，隊列已滿時立即回傳 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, url string) (<-chan Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, common.ErrQueueClosed
	}

	req := &Request{
		Context: ctx,
		URL:     url,
		Result:  make(chan Result, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, common.ErrQueueFull
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		FailedCount:    int(atomic.LoadInt64(&m.failed)),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
		Running:        m.running && !m.closed,
	}
}

// Close 停止接收新請求，等待已排隊的請求處理完畢
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.done)
	close(m.queue)
	group := m.group
	m.mu.Unlock()

	if group != nil {
		_ = group.Wait()
	} else {
		// 沒有 worker 時，已排隊的請求直接回報關閉
		for req := range m.queue {
			req.Result <- Result{URL: req.URL, Error: common.ErrQueueClosed}
		}
	}
	common.LogInfo("Import queue closed",
		zap.Int64("processed", atomic.LoadInt64(&m.processed)),
	)
}

// Done 關閉時會被關閉的通道
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
