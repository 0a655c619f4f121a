package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerozero-0-0/portfolio/internal/storage"
)

const ttl = 7 * 24 * time.Hour

var now = time.UnixMilli(1_760_000_000_000)

type countingFetcher[T any] struct {
	calls  atomic.Int32
	result Result[T]
}

func (f *countingFetcher[T]) fetch(context.Context) Result[T] {
	f.calls.Add(1)
	return f.result
}

func seed[T any](t *testing.T, kv storage.KV, key string, data T, fetchedAt time.Time) {
	t.Helper()
	raw, err := json.Marshal(storage.CacheEntry[T]{Data: data, FetchedAt: fetchedAt.UnixMilli()})
	require.NoError(t, err)
	require.NoError(t, kv.Put(context.Background(), key, raw, 0))
}

func stored[T any](t *testing.T, kv storage.KV, key string) (storage.CacheEntry[T], bool) {
	t.Helper()
	var entry storage.CacheEntry[T]
	raw, err := kv.Get(context.Background(), key)
	if err != nil {
		return entry, false
	}
	require.NoError(t, json.Unmarshal(raw, &entry))
	return entry, true
}

func newTestCoordinator(kv storage.KV) (*Coordinator, *Background) {
	bg := NewBackground(time.Second)
	return NewCoordinator(kv, bg).WithClock(func() time.Time { return now }), bg
}

func TestHandle_FreshHitSkipsFetcher(t *testing.T) {
	kv := storage.NewMemoryStore()
	c, _ := newTestCoordinator(kv)
	seed(t, kv, "k", 1500, now.Add(-ttl+time.Millisecond))

	f := &countingFetcher[int]{result: Success(9999, now)}
	got := Handle(context.Background(), c, "k", ttl, f.fetch)

	assert.True(t, got.OK)
	assert.True(t, got.FromCache)
	assert.Equal(t, 1500, got.Data)
	assert.Equal(t, now.Add(-ttl+time.Millisecond).UnixMilli(), got.FetchedAt)
	assert.Zero(t, f.calls.Load(), "fetcher must not run on a fresh hit")
}

func TestHandle_MissFetchesOnceAndPersists(t *testing.T) {
	kv := storage.NewMemoryStore()
	c, bg := newTestCoordinator(kv)

	f := &countingFetcher[[]string]{result: Success([]string{"Go"}, now)}
	got := Handle(context.Background(), c, "k", ttl, f.fetch)

	assert.True(t, got.OK)
	assert.False(t, got.FromCache)
	assert.Equal(t, []string{"Go"}, got.Data)
	assert.EqualValues(t, 1, f.calls.Load())

	bg.Wait()
	entry, ok := stored[[]string](t, kv, "k")
	require.True(t, ok, "successful fetch should be written")
	assert.Equal(t, []string{"Go"}, entry.Data)
	assert.Equal(t, now.UnixMilli(), entry.FetchedAt)
}

func TestHandle_StaleEntryRefetches(t *testing.T) {
	kv := storage.NewMemoryStore()
	c, bg := newTestCoordinator(kv)
	seed(t, kv, "k", 1500, now.Add(-ttl))

	f := &countingFetcher[int]{result: Success(1600, now)}
	got := Handle(context.Background(), c, "k", ttl, f.fetch)

	assert.False(t, got.FromCache)
	assert.Equal(t, 1600, got.Data)
	assert.EqualValues(t, 1, f.calls.Load())

	bg.Wait()
	entry, _ := stored[int](t, kv, "k")
	assert.Equal(t, 1600, entry.Data)
}

func TestHandle_FailureIsNeverCached(t *testing.T) {
	kv := storage.NewMemoryStore()
	c, bg := newTestCoordinator(kv)
	seed(t, kv, "stale", 1500, now.Add(-2*ttl))

	f := &countingFetcher[int]{result: Failure[int]("GitHub API rate limit exceeded", 403)}

	got := Handle(context.Background(), c, "stale", ttl, f.fetch)
	assert.False(t, got.OK)
	assert.Equal(t, "GitHub API rate limit exceeded", got.ErrorMessage)
	assert.Equal(t, 403, got.StatusCode)

	got = Handle(context.Background(), c, "empty", ttl, f.fetch)
	assert.False(t, got.OK)
	bg.Wait()

	entry, ok := stored[int](t, kv, "stale")
	require.True(t, ok)
	assert.Equal(t, 1500, entry.Data, "prior entry must survive a failed refresh")

	_, ok = stored[int](t, kv, "empty")
	assert.False(t, ok, "failures must not create entries")
}

type failingKV struct {
	storage.KV
	getErr error
	putErr error
}

func (f failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.KV.Get(ctx, key)
}

func (f failingKV) Put(ctx context.Context, key string, v []byte, ttl time.Duration) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.KV.Put(ctx, key, v, ttl)
}

func TestHandle_StoreReadErrorIsAMiss(t *testing.T) {
	kv := failingKV{KV: storage.NewMemoryStore(), getErr: errors.New("redis: connection refused")}
	c, bg := newTestCoordinator(kv)

	f := &countingFetcher[int]{result: Success(1, now)}
	got := Handle(context.Background(), c, "k", ttl, f.fetch)
	bg.Wait()

	assert.True(t, got.OK)
	assert.False(t, got.FromCache)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestHandle_WriteFailureIsNotSurfaced(t *testing.T) {
	kv := failingKV{KV: storage.NewMemoryStore(), putErr: errors.New("disk full")}
	c, bg := newTestCoordinator(kv)

	f := &countingFetcher[int]{result: Success(1, now)}
	got := Handle(context.Background(), c, "k", ttl, f.fetch)
	bg.Wait()

	assert.True(t, got.OK)
	assert.Equal(t, 1, got.Data)
}

func TestHandle_UndecodableEntryIsAMiss(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Put(context.Background(), "k", []byte("not json"), 0))
	c, bg := newTestCoordinator(kv)

	f := &countingFetcher[int]{result: Success(7, now)}
	got := Handle(context.Background(), c, "k", ttl, f.fetch)
	bg.Wait()

	assert.Equal(t, 7, got.Data)
	assert.EqualValues(t, 1, f.calls.Load())
}

type gatedScheduler struct {
	release chan struct{}
	done    chan struct{}
}

func (g *gatedScheduler) Go(task func(ctx context.Context)) {
	go func() {
		<-g.release
		task(context.Background())
		close(g.done)
	}()
}

func TestHandle_ResponseDoesNotWaitForWrite(t *testing.T) {
	kv := storage.NewMemoryStore()
	sched := &gatedScheduler{release: make(chan struct{}), done: make(chan struct{})}
	c := NewCoordinator(kv, sched).WithClock(func() time.Time { return now })

	f := &countingFetcher[int]{result: Success(42, now)}
	got := Handle(context.Background(), c, "k", ttl, f.fetch)

	assert.True(t, got.OK)
	_, ok := stored[int](t, kv, "k")
	assert.False(t, ok, "write must still be pending when Handle returns")

	close(sched.release)
	<-sched.done
	_, ok = stored[int](t, kv, "k")
	assert.True(t, ok)
}

func TestHandle_CanceledFetchIsNotCached(t *testing.T) {
	kv := storage.NewMemoryStore()
	c, bg := newTestCoordinator(kv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := Handle(ctx, c, "k", ttl, func(ctx context.Context) Result[int] {
		return Canceled[int](ctx.Err())
	})
	bg.Wait()

	assert.False(t, got.OK)
	assert.True(t, got.IsCanceled())
	assert.ErrorIs(t, got.Err, context.Canceled)
	_, ok := stored[int](t, kv, "k")
	assert.False(t, ok)
}

func TestHandle_ConcurrentMissesShareOneFetch(t *testing.T) {
	kv := storage.NewMemoryStore()
	c, bg := newTestCoordinator(kv)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(context.Context) Result[int] {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return Success(5, now)
	}

	var wg sync.WaitGroup
	results := make([]CachedResult[int], 4)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = Handle(context.Background(), c, "k", ttl, fetch)
	}()
	<-started
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Handle(context.Background(), c, "k", ttl, fetch)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	bg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		assert.True(t, r.OK)
		assert.Equal(t, 5, r.Data)
	}
}

func TestInlineSchedulerWritesBeforeReturn(t *testing.T) {
	kv := storage.NewMemoryStore()
	c := NewCoordinator(kv, Inline{}).WithClock(func() time.Time { return now })

	Handle(context.Background(), c, "k", ttl, func(context.Context) Result[int] { return Success(3, now) })

	entry, ok := stored[int](t, kv, "k")
	require.True(t, ok)
	assert.Equal(t, 3, entry.Data)
}

func TestResultHelpers(t *testing.T) {
	assert.Equal(t, 502, Failure[int]("x", 0).StatusOr(502))
	assert.Equal(t, 404, Failure[int]("x", 404).StatusOr(502))
	assert.False(t, Failure[int]("x", 502).IsCanceled())
	assert.True(t, Canceled[int](nil).IsCanceled())

	s := Success("v", now)
	assert.True(t, s.OK)
	assert.Equal(t, now.UnixMilli(), s.FetchedAt)
}

func TestHandle_PanickingFetcherBecomesFailure(t *testing.T) {
	kv := storage.NewMemoryStore()
	c, bg := newTestCoordinator(kv)

	got := Handle(context.Background(), c, "k", ttl, func(context.Context) Result[int] {
		panic("boom")
	})
	bg.Wait()

	assert.False(t, got.OK)
	assert.Equal(t, 500, got.StatusCode)
	assert.Zero(t, kv.Len())
}
