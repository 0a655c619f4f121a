// Package cache implements the cache-aside policy in front of the upstream
// fetchers: serve a fresh stored value, otherwise fetch, return immediately
// and persist in the background.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zerozero-0-0/portfolio/internal/debuglog"
	"github.com/zerozero-0-0/portfolio/internal/storage"
)

// Coordinator holds what every cached request shares: the store, the
// background scheduler and the clock.
type Coordinator struct {
	kv      storage.KV
	sched   Scheduler
	now     func() time.Time
	flights singleflight.Group
}

func NewCoordinator(kv storage.KV, sched Scheduler) *Coordinator {
	return &Coordinator{kv: kv, sched: sched, now: time.Now}
}

// WithClock swaps the time source used for freshness checks.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// Handle serves key from the store when its entry is younger than ttl and
// otherwise calls fetch. Failed fetches are returned as-is and never stored.
// Successful ones are written with the same ttl on the scheduler, so the
// caller is not held up by the write.
//
// Concurrent misses for the same key in this process share one fetch.
func Handle[T any](ctx context.Context, c *Coordinator, key string, ttl time.Duration, fetch Fetcher[T]) CachedResult[T] {
	log := debuglog.WithFields(map[string]any{"key": key})

	if entry, ok := lookup[T](ctx, c, key, ttl, log); ok {
		log.Debugf("cache hit")
		return CachedResult[T]{
			Result:    Result[T]{OK: true, Data: entry.Data, FetchedAt: entry.FetchedAt},
			FromCache: true,
		}
	}

	fresh := shared(ctx, c, key, fetch)
	if !fresh.OK {
		if !fresh.IsCanceled() {
			log.Warnf("fetch failed: %s (status %d)", fresh.ErrorMessage, fresh.StatusCode)
		}
		return CachedResult[T]{Result: fresh}
	}

	persist(c, key, ttl, fresh, log)
	return CachedResult[T]{Result: fresh, FromCache: false}
}

func lookup[T any](ctx context.Context, c *Coordinator, key string, ttl time.Duration, log *debuglog.FieldLogger) (storage.CacheEntry[T], bool) {
	var entry storage.CacheEntry[T]

	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if !storage.IsMiss(err) {
			log.Warnf("cache read failed, treating as miss: %v", err)
		}
		return entry, false
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Warnf("cache entry undecodable, treating as miss: %v", err)
		return entry, false
	}
	if c.now().UnixMilli()-entry.FetchedAt >= ttl.Milliseconds() {
		return entry, false
	}
	return entry, true
}

// shared runs fetch through the singleflight group. A caller whose shared
// flight was canceled by the leader's context retries on its own context.
func shared[T any](ctx context.Context, c *Coordinator, key string, fetch Fetcher[T]) Result[T] {
	ch := c.flights.DoChan(key, func() (any, error) {
		return guarded(ctx, key, fetch), nil
	})

	select {
	case <-ctx.Done():
		return Canceled[T](ctx.Err())
	case res := <-ch:
		r, ok := res.Val.(Result[T])
		if !ok {
			return guarded(ctx, key, fetch)
		}
		if r.IsCanceled() && res.Shared && ctx.Err() == nil {
			return guarded(ctx, key, fetch)
		}
		return r
	}
}

// guarded turns a panicking fetch into a 500 failure. singleflight re-raises
// panics on a fresh goroutine where nothing can recover them.
func guarded[T any](ctx context.Context, key string, fetch Fetcher[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			debuglog.Errorf("fetch for %s panicked: %v", key, r)
			res = Failure[T]("internal error", http.StatusInternalServerError)
		}
	}()
	return fetch(ctx)
}

func persist[T any](c *Coordinator, key string, ttl time.Duration, fresh Result[T], log *debuglog.FieldLogger) {
	payload, err := json.Marshal(storage.CacheEntry[T]{Data: fresh.Data, FetchedAt: fresh.FetchedAt})
	if err != nil {
		log.Errorf("encoding cache entry: %v", err)
		return
	}

	c.sched.Go(func(ctx context.Context) {
		if err := c.kv.Put(ctx, key, payload, ttl); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warnf("cache write timed out")
				return
			}
			log.Warnf("cache write failed: %v", err)
			return
		}
		log.Debugf("cache entry stored")
	})
}
