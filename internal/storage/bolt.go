package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var cacheBucket = []byte("cache")

// BoltStore is a KV backed by a single bbolt bucket. Values are stored as
// an 8-byte big-endian unix expiry (0 = never) followed by the raw bytes.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

func NewBoltStore(dbPath string, timeout time.Duration) (*BoltStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(cacheBucket)
		return createErr
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	s := &BoltStore{db: db, now: time.Now}
	if _, err := s.Sweep(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sweeping expired entries: %w", err)
	}
	return s, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := int64(0)
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).Unix()
	}

	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAt))
	copy(buf[8:], value)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(key), buf)
	})
}

func (s *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(cacheBucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		if len(v) < 8 {
			return fmt.Errorf("corrupt cache entry %q", key)
		}
		if s.expired(v) {
			return ErrExpired
		}
		// bbolt memory is only valid inside the transaction
		out = append([]byte(nil), v[8:]...)
		return nil
	})
	return out, err
}

func (s *BoltStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Delete([]byte(key))
	})
}

// Sweep deletes expired entries and reports how many were removed.
func (s *BoltStore) Sweep() (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if len(v) < 8 || s.expired(v) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *BoltStore) expired(v []byte) bool {
	expiresAt := int64(binary.BigEndian.Uint64(v[:8]))
	return expiresAt > 0 && s.now().Unix() >= expiresAt
}
