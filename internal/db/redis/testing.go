package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an existing rueidis client (e.g. a mock) into a Store.
// Only for use in tests.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
