package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rentease/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyKV struct {
	*repository.MemoryKV
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	f.calls++
	fail := f.failures != 0
	if f.failures > 0 {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return errors.New("store unavailable")
	}
	return f.MemoryKV.Set(ctx, key, value, ttl)
}

func (f *flakyKV) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastRetry(maxRetries int) RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func stored(kv *flakyKV, key string) func() bool {
	return func() bool {
		_, ok, err := kv.Get(context.Background(), key)
		return err == nil && ok
	}
}

func TestSnapshotWorker_Success(t *testing.T) {
	kv := &flakyKV{MemoryKV: repository.NewMemoryKV()}
	w := NewSnapshotWorker(kv, fastRetry(3), 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	type prop struct {
		ID string `json:"id"`
	}
	require.NoError(t, w.Enqueue(ctx, "properties", []prop{{ID: "p1"}}))
	require.NoError(t, w.Enqueue(ctx, "md_dark", "1"))

	require.Eventually(t, stored(kv, "md_dark"), time.Second, 5*time.Millisecond)
	require.Eventually(t, stored(kv, "properties"), time.Second, 5*time.Millisecond)

	val, _, _ := kv.Get(ctx, "properties")
	assert.JSONEq(t, `[{"id":"p1"}]`, val)
	assert.Eventually(t, func() bool { return w.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSnapshotWorker_Retries(t *testing.T) {
	kv := &flakyKV{MemoryKV: repository.NewMemoryKV(), failures: 2}
	w := NewSnapshotWorker(kv, fastRetry(5), 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.Enqueue(ctx, "md_currency", "PHP"))
	require.Eventually(t, stored(kv, "md_currency"), time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, kv.Calls())
	assert.Empty(t, w.Failed())
}

func TestSnapshotWorker_RetryDoesNotOverwriteNewerValue(t *testing.T) {
	kv := &flakyKV{MemoryKV: repository.NewMemoryKV(), failures: 1}
	retry := RetryPolicy{MaxRetries: 3, InitialDelay: 50 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
	w := NewSnapshotWorker(kv, retry, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.Enqueue(ctx, "properties", "v1-old"))
	require.Eventually(t, func() bool { return kv.Calls() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, w.Enqueue(ctx, "properties", "v2-new"))

	require.Eventually(t, func() bool { return w.Pending() == 0 }, time.Second, 5*time.Millisecond)
	w.Wait()

	val, ok, err := kv.Get(context.Background(), "properties")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2-new", val)
	assert.Equal(t, 2, kv.Calls(), "the stale retry is skipped, not written")
	assert.Empty(t, w.Failed())

	t.Run("next value after settling is written", func(t *testing.T) {
		require.NoError(t, w.Enqueue(ctx, "properties", "v3"))
		require.Eventually(t, func() bool {
			v, _, _ := kv.Get(context.Background(), "properties")
			return v == "v3"
		}, time.Second, 5*time.Millisecond)
	})
}

func TestSnapshotWorker_GivesUp(t *testing.T) {
	kv := &flakyKV{MemoryKV: repository.NewMemoryKV(), failures: -1}
	w := NewSnapshotWorker(kv, fastRetry(2), 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.Enqueue(ctx, "properties", "[]"))
	require.Eventually(t, func() bool { return len(w.Failed()) == 1 }, time.Second, 5*time.Millisecond)

	failed := w.Failed()
	assert.Equal(t, "properties", failed[0].Key)
	assert.Equal(t, 3, failed[0].Attempt)
	assert.Equal(t, 0, w.Pending())
}

func TestSnapshotWorker_QueueFull(t *testing.T) {
	w := NewSnapshotWorker(repository.NewMemoryKV(), RetryPolicy{}, 1, nil)
	ctx := context.Background()

	require.NoError(t, w.Enqueue(ctx, "a", "1"))
	assert.ErrorIs(t, w.Enqueue(ctx, "b", "2"), ErrQueueFull)
	assert.Error(t, w.Enqueue(ctx, "", "x"))
	assert.Error(t, w.Enqueue(ctx, "c", make(chan int)))

	t.Run("rejected value keeps the queued one current", func(t *testing.T) {
		kv := &flakyKV{MemoryKV: repository.NewMemoryKV()}
		w := NewSnapshotWorker(kv, RetryPolicy{}, 1, nil)
		require.NoError(t, w.Enqueue(ctx, "a", "1"))
		assert.ErrorIs(t, w.Enqueue(ctx, "a", "2"), ErrQueueFull)

		runCtx, cancel := context.WithCancel(ctx)
		cancel()
		w.Start(runCtx)

		val, ok, err := kv.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1", val)
	})
}

func TestSnapshotWorker_DrainsOnShutdown(t *testing.T) {
	kv := &flakyKV{MemoryKV: repository.NewMemoryKV()}
	w := NewSnapshotWorker(kv, fastRetry(1), 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Enqueue(ctx, "md_email_notif", "0"))
	cancel()

	w.Start(ctx)
	w.Wait()

	val, ok, err := kv.Get(context.Background(), "md_email_notif")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0", val)
}

func TestSnapshotWorker_DrainWritesLatestPerKey(t *testing.T) {
	kv := &flakyKV{MemoryKV: repository.NewMemoryKV()}
	w := NewSnapshotWorker(kv, fastRetry(1), 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Enqueue(ctx, "md_currency", "USD"))
	require.NoError(t, w.Enqueue(ctx, "md_currency", "PHP"))
	cancel()

	w.Start(ctx)

	val, _, err := kv.Get(context.Background(), "md_currency")
	require.NoError(t, err)
	assert.Equal(t, "PHP", val)
	assert.Equal(t, 1, kv.Calls())
	assert.Equal(t, 0, w.Pending())
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2}
	assert.Equal(t, time.Second, p.NextDelay(0))
	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 5*time.Second, p.NextDelay(4))

	assert.Equal(t, 200*time.Millisecond, RetryPolicy{}.NextDelay(1))
	assert.Equal(t, 30*time.Second, RetryPolicy{}.NextDelay(40))
	assert.False(t, RetryPolicy{}.Exhausted(5))
	assert.True(t, RetryPolicy{MaxRetries: 2}.Exhausted(3))
}
