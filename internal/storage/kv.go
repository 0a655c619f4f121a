package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("storage: not found")
	ErrExpired  = errors.New("storage: expired")
)

// KV is the get/put-with-TTL contract the cache coordinator relies on.
// Implementations must be safe for concurrent use. A Put replaces the whole
// value; concurrent writers to one key resolve as last-writer-wins.
type KV interface {
	// Get returns ErrNotFound for absent keys and ErrExpired for keys whose
	// TTL has elapsed.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value for ttl; ttl <= 0 means no store-level expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// IsMiss reports whether err means "no usable value" rather than a failure.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired)
}
