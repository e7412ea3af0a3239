package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// writerQueueDepth bounds the background lane; when full, tasks are
// dropped rather than blocking the request path.
const writerQueueDepth = 256

// writerTaskTimeout caps each background store operation.
const writerTaskTimeout = 5 * time.Second

type task struct {
	name string
	fn   func(context.Context) error
}

// backgroundWriter runs cache mutations off the request path with its
// own error log sink.
type backgroundWriter struct {
	tasks  chan task
	logger *zap.Logger
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func newBackgroundWriter(logger *zap.Logger) *backgroundWriter {
	w := &backgroundWriter{
		tasks:  make(chan task, writerQueueDepth),
		logger: logger,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *backgroundWriter) run() {
	defer w.wg.Done()
	for t := range w.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), writerTaskTimeout)
		if err := t.fn(ctx); err != nil {
			w.logger.Warn("cache background write failed",
				zap.String("op", t.name),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// submit enqueues a task, dropping it when the lane is saturated or
// closed.
func (w *backgroundWriter) submit(name string, fn func(context.Context) error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.tasks <- task{name: name, fn: fn}:
	default:
		w.logger.Warn("cache background queue full, dropping write", zap.String("op", name))
	}
}

// close stops intake and waits for queued tasks to finish.
func (w *backgroundWriter) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.tasks)
	w.mu.Unlock()
	w.wg.Wait()
}
