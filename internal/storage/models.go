package storage

// CacheEntry is the JSON value persisted under a cache key.
type CacheEntry[T any] struct {
	Data T `json:"data"`
	// FetchedAt is in unix milliseconds.
	FetchedAt int64 `json:"fetchedAt"`
}

// LanguagesKey is the cache key for a user's GitHub language summary.
func LanguagesKey(username string) string {
	return "github-languages:" + username
}

// AtCoderRateKey is the cache key for a user's latest AtCoder rating.
func AtCoderRateKey(username string) string {
	return "atcoder-rate:" + username
}
