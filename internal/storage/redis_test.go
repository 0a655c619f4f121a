package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStoreFromClient(db)
	ctx := context.Background()

	mock.ExpectGet("github-languages:octocat").SetVal(`{"data":[],"fetchedAt":1}`)
	mock.ExpectGet("missing").RedisNil()
	mock.ExpectGet("broken").SetErr(errors.New("connection refused"))

	got, err := store.Get(ctx, "github-languages:octocat")
	require.NoError(t, err)
	assert.Equal(t, `{"data":[],"fetchedAt":1}`, string(got))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, "broken")
	require.Error(t, err)
	assert.False(t, IsMiss(err), "transport errors are not misses")
	assert.Contains(t, err.Error(), "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PutUsesStoreTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStoreFromClient(db)
	ctx := context.Background()

	ttl := 7 * 24 * time.Hour
	mock.ExpectSet("atcoder-rate:tourist", `{"data":3800,"fetchedAt":1}`, ttl).SetVal("OK")
	mock.ExpectSet("no-ttl", "v", 0).SetVal("OK")

	require.NoError(t, store.Put(ctx, "atcoder-rate:tourist", []byte(`{"data":3800,"fetchedAt":1}`), ttl))
	require.NoError(t, store.Put(ctx, "no-ttl", []byte("v"), -time.Second))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PutError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStoreFromClient(db)

	mock.ExpectSet("k", "v", time.Minute).SetErr(errors.New("READONLY"))

	err := store.Put(context.Background(), "k", []byte("v"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set k")
}

func TestRedisStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStoreFromClient(db)

	mock.ExpectDel("k").SetVal(1)

	require.NoError(t, store.Delete(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, store.Close(), "borrowed clients are not closed")
}
