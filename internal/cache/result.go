package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCanceled marks a fetch that stopped because the caller went away.
var ErrCanceled = errors.New("fetch canceled")

// Result is the outcome of an upstream fetch: either OK with Data and
// FetchedAt (unix millis), or a failure carrying ErrorMessage and an
// optional StatusCode (0 when unset).
type Result[T any] struct {
	OK           bool
	Data         T
	FetchedAt    int64
	ErrorMessage string
	StatusCode   int
	Err          error
}

// Success stamps data with the given fetch time.
func Success[T any](data T, fetchedAt time.Time) Result[T] {
	return Result[T]{OK: true, Data: data, FetchedAt: fetchedAt.UnixMilli()}
}

// Failure reports an upstream or validation failure.
func Failure[T any](message string, status int) Result[T] {
	return Result[T]{ErrorMessage: message, StatusCode: status}
}

// Canceled reports a fetch abandoned because ctx ended.
func Canceled[T any](cause error) Result[T] {
	if cause == nil {
		cause = context.Canceled
	}
	return Result[T]{
		ErrorMessage: "request canceled",
		Err:          errors.Join(ErrCanceled, cause),
	}
}

// IsCanceled reports whether the failure came from cancellation rather than
// from upstream.
func (r Result[T]) IsCanceled() bool {
	return !r.OK && errors.Is(r.Err, ErrCanceled)
}

// StatusOr returns StatusCode, or def when none was set.
func (r Result[T]) StatusOr(def int) int {
	if r.StatusCode == 0 {
		return def
	}
	return r.StatusCode
}

// CachedResult is a Result annotated with whether it was served from cache.
type CachedResult[T any] struct {
	Result[T]
	FromCache bool
}

// Fetcher produces a fresh value from upstream.
type Fetcher[T any] func(ctx context.Context) Result[T]
