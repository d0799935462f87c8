package budget

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/paperdex/internal/db"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	incrByFn func(ctx context.Context, key string, val int64) error
	expireFn func(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) IncrBy(ctx context.Context, key string, val int64) error {
	if m.incrByFn != nil {
		return m.incrByFn(ctx, key, val)
	}
	return nil
}

func (m *mockKVStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}

func newTestStore(t *testing.T) (*Store, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(ms, 48*time.Hour, 62*24*time.Hour), ms
}

func TestIncrBy_DailyTTL(t *testing.T) {
	s, ms := newTestStore(t)

	var gotTTL time.Duration
	var gotNX bool
	ms.expireFn = func(_ context.Context, _ string, ttl time.Duration, nx bool) error {
		gotTTL = ttl
		gotNX = nx
		return nil
	}

	err := s.IncrBy(context.Background(), "paperdex:budget:openai:daily:2026-08-29", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 48*time.Hour {
		t.Errorf("expected daily TTL, got %v", gotTTL)
	}
	if !gotNX {
		t.Error("expected EXPIRE NX so repeat increments do not reset the TTL")
	}
}

func TestIncrBy_MonthlyTTL(t *testing.T) {
	s, ms := newTestStore(t)

	var gotTTL time.Duration
	ms.expireFn = func(_ context.Context, _ string, ttl time.Duration, _ bool) error {
		gotTTL = ttl
		return nil
	}

	err := s.IncrBy(context.Background(), "paperdex:budget:openai:monthly:2026-08", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 62*24*time.Hour {
		t.Errorf("expected monthly TTL, got %v", gotTTL)
	}
}

func TestIncrBy_StoreError(t *testing.T) {
	s, ms := newTestStore(t)

	ms.incrByFn = func(_ context.Context, _ string, _ int64) error {
		return context.DeadlineExceeded
	}

	if err := s.IncrBy(context.Background(), "k", 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet_MissingKeyIsZero(t *testing.T) {
	s, _ := newTestStore(t) // Get returns ErrKeyNotFound by default

	val, err := s.Get(context.Background(), "paperdex:budget:openai:daily:2026-08-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0 {
		t.Errorf("expected 0, got %d", val)
	}
}

func TestGet_ParsesValue(t *testing.T) {
	s, ms := newTestStore(t)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("12345"), nil
	}

	val, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 12345 {
		t.Errorf("expected 12345, got %d", val)
	}
}

func TestGet_ParseError(t *testing.T) {
	s, ms := newTestStore(t)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not-a-number"), nil
	}

	if _, err := s.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error")
	}
}
