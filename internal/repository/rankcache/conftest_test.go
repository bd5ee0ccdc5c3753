package rankcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lumenpick/internal/db"
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	data  map[string][]byte
	ttls  map[string]time.Duration
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func newTestCache(t *testing.T) (*Cache, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
	return New(ms, "lp:", "v2", time.Minute, nil, zap.NewNop()), ms
}

func testSnapshot() catalog.Snapshot {
	return catalog.NewSnapshot("snap-1", []catalog.Item{
		{ID: 1, Brand: "A", Name: "One", PriceUSD: catalog.Float(30)},
		{ID: 2, Brand: "B", Name: "Two"},
		{ID: 3, Brand: "C", Name: "Three", MaxLumens: catalog.Float(2000)},
	})
}

func testRanking() []int64 {
	return []int64{3, 1}
}
