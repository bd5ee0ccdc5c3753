package chi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lumenpick/internal/db"
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	runrepo "github.com/kailas-cloud/lumenpick/internal/repository/run"
	healthuc "github.com/kailas-cloud/lumenpick/internal/usecase/health"
	rankingsuc "github.com/kailas-cloud/lumenpick/internal/usecase/rankings"
	runuc "github.com/kailas-cloud/lumenpick/internal/usecase/run"
)

// --- Mocks ---

type mockCatalog struct {
	mu   sync.Mutex
	snap catalog.Snapshot
	err  error
}

func (m *mockCatalog) Snapshot(_ context.Context) (catalog.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, m.err
}

func (m *mockCatalog) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *mockCatalog) set(items []catalog.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = catalog.NewSnapshot("", items)
}

// memStore is an in-memory key-value store for the run repository.
type memStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	setNXErr error
	pingErr  error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetNX(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setNXErr != nil {
		return m.setNXErr
	}
	if _, ok := m.data[key]; ok {
		return db.ErrKeyExists
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *memStore) Ping(_ context.Context) error {
	return m.pingErr
}

var errBoom = errors.New("boom")

// --- Fixtures ---

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func testItems() []catalog.Item {
	return []catalog.Item{
		{
			ID: 1, Brand: "Fenix", Name: "PD36R Pro", Slug: "fenix-pd36r-pro",
			Category: "tactical", Tags: []string{"tactical", "law-enforcement"},
			AmazonURL:    "https://www.amazon.com/dp/B0TEST0001",
			PriceUSD:     catalog.Float(109.95),
			MaxLumens:    catalog.Float(2800),
			MaxCandela:   catalog.Float(22500),
			WeightG:      catalog.Float(149),
			LengthMM:     catalog.Float(141),
			BatteryTypes: []string{"21700"},
			ProfileScores: map[string]float64{
				"tactical": 91.2,
				"edc":      63.5,
			},
		},
		{
			ID: 2, Brand: "Olight", Name: "Arkfeld Pro", Slug: "olight-arkfeld-pro",
			Category: "edc", Tags: []string{"edc"},
			PriceUSD:     catalog.Float(79.99),
			MaxLumens:    catalog.Float(1300),
			WeightG:      catalog.Float(108),
			LengthMM:     catalog.Float(127),
			BatteryTypes: []string{"proprietary"},
		},
		{
			ID: 3, Brand: "Nitecore", Name: "TIKI", Slug: "nitecore-tiki",
			Category: "keychain", Tags: []string{"keychain", "edc"},
			PriceUSD:     catalog.Float(19.95),
			MaxLumens:    catalog.Float(300),
			WeightG:      catalog.Float(8),
			LengthMM:     catalog.Float(52),
			BatteryTypes: []string{"proprietary"},
		},
	}
}

type testEnv struct {
	catalog *mockCatalog
	store   *memStore
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	src := &mockCatalog{}
	src.set(testItems())
	store := newMemStore()

	runs := runuc.New(src, runrepo.New(store, "test:")).
		WithClock(func() time.Time { return fixedNow })
	server := NewServer(runs, rankingsuc.New(src), healthuc.New(store, src), zap.NewNop())

	return &testEnv{
		catalog: src,
		store:   store,
		handler: HandlerWithOptions(server, ChiServerOptions{BaseRouter: chi.NewRouter()}),
	}
}
