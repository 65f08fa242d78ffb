package persist

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"smartCV/internal/metrics"
)

// DefaultDebounce 是未配置时的写入延迟。
const DefaultDebounce = time.Second

// Writer 合并短时间内的多次变更：每个键只保留最新快照，
// 最后一次 Schedule 之后 delay 才真正写入。写入失败的快照留在队列里，
// delay 后重试，除非期间已有更新的快照。
type Writer struct {
	store  Store
	delay  time.Duration
	logger *slog.Logger

	// writeMu 保证批次按取出顺序落盘，旧快照不会覆盖新快照
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string][]byte
	timer   *time.Timer
	closed  bool
}

// NewWriter 创建写入器；delay <= 0 时使用 DefaultDebounce。
func NewWriter(store Store, delay time.Duration, logger *slog.Logger) *Writer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		store:   store,
		delay:   delay,
		logger:  logger,
		pending: map[string][]byte{},
	}
}

// Schedule 记录 key 的最新快照并重新计时。Close 之后的调用被忽略。
func (w *Writer) Schedule(key string, data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[key] = data
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		_ = w.flush(context.Background())
	})
}

// Flush 立即写入所有待写快照。
func (w *Writer) Flush(ctx context.Context) error {
	return w.flush(ctx)
}

// Close 写入剩余快照并拒绝后续 Schedule。
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.flush(ctx)
}

func (w *Writer) flush(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	batch := w.pending
	w.pending = map[string][]byte{}
	w.mu.Unlock()

	var errs []error
	failed := map[string][]byte{}
	for key, data := range batch {
		err := w.store.Save(ctx, key, data)
		metrics.ObservePersistWrite(key, err)
		if err != nil {
			w.logger.Error("persist write failed", slog.String("key", key), slog.Any("error", err))
			errs = append(errs, err)
			failed[key] = data
			continue
		}
		w.logger.Debug("persist write", slog.String("key", key), slog.Int("bytes", len(data)))
	}
	if len(failed) > 0 {
		w.requeue(failed)
	}
	return errors.Join(errs...)
}

// requeue 把失败的快照放回队列；同一键若已有更新的快照则丢弃旧的。
func (w *Writer) requeue(failed map[string][]byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for key, data := range failed {
		if _, newer := w.pending[key]; newer {
			continue
		}
		w.pending[key] = data
	}
	// 关闭后不再自动重试，只能显式 Flush
	if w.closed || w.timer != nil {
		return
	}
	w.timer = time.AfterFunc(w.delay, func() {
		_ = w.flush(context.Background())
	})
}
