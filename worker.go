package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/notify"
)

const defaultQueueSize = 1000

var _ notify.Sink = (*WorkerPool)(nil)

// WorkerPool delivers notices to a downstream sink on background goroutines so that
// cart operations never wait on delivery.
type WorkerPool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool

	sink   notify.Sink
	logger *zap.Logger
}

func NewWorkerPool(size int, sink notify.Sink, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		tasks:  make(chan func(), defaultQueueSize),
		sink:   sink,
		logger: logger,
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		task()
	}
}

// Notify enqueues the notice. A full queue or a shut-down pool drops it with a warning.
func (wp *WorkerPool) Notify(ctx context.Context, notice models.Notice) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		wp.logger.Warn("notice dropped after shutdown", zap.String("kind", string(notice.Kind)))
		return
	}

	// delivery outlives the operation that raised the notice
	ctx = context.WithoutCancel(ctx)
	task := func() {
		defer func() {
			if p := recover(); p != nil {
				wp.logger.Error("notice sink panicked", zap.Any("panic", p), zap.String("kind", string(notice.Kind)))
			}
		}()
		wp.sink.Notify(ctx, notice)
	}

	select {
	case wp.tasks <- task:
	default:
		wp.logger.Warn("notice queue full, dropping notice",
			zap.String("kind", string(notice.Kind)),
			zap.Int64("product_id", notice.ProductID))
	}
}

// Shutdown stops accepting notices and waits for queued ones to be delivered.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.tasks)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}
