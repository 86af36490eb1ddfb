package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentease/internal/domain"

	"github.com/rs/zerolog"
)

var ErrQueueFull = errors.New("snapshot queue is full")

// SnapshotTask is one pending key-value write. Seq orders writes to the same key;
// a task is superseded once a later Seq has been enqueued for its key.
type SnapshotTask struct {
	Key       string
	Value     string
	Seq       uint64
	Attempt   int
	CreatedAt time.Time
}

// SnapshotWorker persists snapshots to the key-value store off the request path,
// retrying failed writes with exponential backoff.
type SnapshotWorker struct {
	kv          domain.KeyValueStore
	retryPolicy RetryPolicy
	queue       chan SnapshotTask
	logger      *zerolog.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	failed   []SnapshotTask
	inflight map[string]int
	latest   map[string]uint64
	seq      uint64
}

// NewSnapshotWorker builds a worker. queueSize <= 0 selects 128.
func NewSnapshotWorker(kv domain.KeyValueStore, retry RetryPolicy, queueSize int, logger *zerolog.Logger) *SnapshotWorker {
	if queueSize <= 0 {
		queueSize = 128
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &SnapshotWorker{
		kv:          kv,
		retryPolicy: retry.withDefaults(),
		queue:       make(chan SnapshotTask, queueSize),
		logger:      logger,
		inflight:    make(map[string]int),
		latest:      make(map[string]uint64),
	}
}

// Enqueue schedules value to be written under key. Strings are stored as is;
// anything else is JSON-encoded.
func (w *SnapshotWorker) Enqueue(_ context.Context, key string, value interface{}) error {
	if key == "" {
		return errors.New("snapshot key is required")
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode snapshot %q: %w", key, err)
		}
		raw = string(data)
	}

	task := SnapshotTask{Key: key, Value: raw, CreatedAt: time.Now()}
	var prev uint64
	task.Seq, prev = w.admit(key)
	select {
	case w.queue <- task:
		return nil
	default:
		w.reject(task, prev)
		return ErrQueueFull
	}
}

// admit reserves the next sequence number for key and marks it the newest.
func (w *SnapshotWorker) admit(key string) (seq, prev uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	prev = w.latest[key]
	w.latest[key] = w.seq
	w.inflight[key]++
	return w.seq, prev
}

// reject undoes admit for a task that never made it onto the queue, so the
// older queued value is not mistaken for a superseded one.
func (w *SnapshotWorker) reject(task SnapshotTask, prev uint64) {
	w.mu.Lock()
	if w.latest[task.Key] == task.Seq {
		w.latest[task.Key] = prev
	}
	w.mu.Unlock()
	w.track(task.Key, -1)
}

func (w *SnapshotWorker) superseded(task SnapshotTask) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return task.Seq < w.latest[task.Key]
}

// skip drops a task when a newer value for its key is already queued or stored.
func (w *SnapshotWorker) skip(task SnapshotTask) bool {
	if !w.superseded(task) {
		return false
	}
	w.logger.Debug().Str("key", task.Key).Uint64("seq", task.Seq).Int("attempt", task.Attempt).Msg("Snapshot superseded")
	w.track(task.Key, -1)
	return true
}

// Start processes tasks until ctx is done, then drains what is already queued.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("Snapshot worker started")
	defer w.logger.Info().Msg("Snapshot worker stopped")

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

func (w *SnapshotWorker) drain() {
	// ctx is already cancelled; give the final writes their own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case task := <-w.queue:
			if !w.skip(task) {
				_ = w.write(ctx, task)
			}
		default:
			return
		}
	}
}

func (w *SnapshotWorker) process(ctx context.Context, task SnapshotTask) {
	if w.skip(task) {
		return
	}
	if err := w.write(ctx, task); err == nil {
		return
	}

	task.Attempt++
	if w.retryPolicy.Exhausted(task.Attempt) {
		w.logger.Error().Str("key", task.Key).Int("attempts", task.Attempt).Msg("Snapshot dropped after max retries")
		w.mu.Lock()
		w.failed = append(w.failed, task)
		w.mu.Unlock()
		w.track(task.Key, -1)
		return
	}

	delay := w.retryPolicy.NextDelay(task.Attempt)
	w.wg.Add(1)
	time.AfterFunc(delay, func() {
		defer w.wg.Done()
		select {
		case w.queue <- task:
		case <-ctx.Done():
			w.track(task.Key, -1)
		}
	})
}

func (w *SnapshotWorker) write(ctx context.Context, task SnapshotTask) error {
	if err := w.kv.Set(ctx, task.Key, task.Value, 0); err != nil {
		w.logger.Warn().Err(err).Str("key", task.Key).Int("attempt", task.Attempt).Msg("Snapshot write failed")
		return err
	}
	w.track(task.Key, -1)
	return nil
}

func (w *SnapshotWorker) track(key string, delta int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inflight[key] += delta
	if w.inflight[key] <= 0 {
		delete(w.inflight, key)
		// nothing left for key can be stale
		delete(w.latest, key)
	}
}

// Pending reports how many writes have been accepted but not yet stored or dropped.
func (w *SnapshotWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.inflight {
		n += c
	}
	return n
}

// Failed returns the tasks dropped after exhausting retries.
func (w *SnapshotWorker) Failed() []SnapshotTask {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]SnapshotTask(nil), w.failed...)
}

// Wait blocks until scheduled retries have been handed back to the queue.
func (w *SnapshotWorker) Wait() {
	w.wg.Wait()
}
