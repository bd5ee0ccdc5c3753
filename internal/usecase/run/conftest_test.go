package run

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/lumenpick/internal/db"
	"github.com/kailas-cloud/lumenpick/internal/domain"
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
	domrun "github.com/kailas-cloud/lumenpick/internal/domain/run"
)

// --- Mocks ---

type mockCatalog struct {
	mu    sync.Mutex
	snap  catalog.Snapshot
	err   error
	calls int
}

func (m *mockCatalog) Snapshot(_ context.Context) (catalog.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.snap, m.err
}

func (m *mockCatalog) set(items []catalog.Item) {
	m.setVersion("", items)
}

func (m *mockCatalog) setVersion(version string, items []catalog.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = catalog.NewSnapshot(version, items)
}

type mockRepo struct {
	mu     sync.Mutex
	seq    int64
	runs   map[int64]domrun.Run
	nextFn func(ctx context.Context) (int64, error)
	saveFn func(ctx context.Context, r domrun.Run) error
}

func newMockRepo() *mockRepo {
	return &mockRepo{runs: map[int64]domrun.Run{}}
}

func (m *mockRepo) NextID(ctx context.Context) (int64, error) {
	if m.nextFn != nil {
		return m.nextFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

func (m *mockRepo) Save(ctx context.Context, r domrun.Run) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[r.ID()]; ok {
		return fmt.Errorf("run %d: %w", r.ID(), db.ErrKeyExists)
	}
	m.runs[r.ID()] = r
	return nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (domrun.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return domrun.Run{}, fmt.Errorf("run %d: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

// mockCache keys on the snapshot version tag only, so it can hand back
// an id order computed for different item data.
type mockCache struct {
	entries map[string][]int64
	hits    int
	puts    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]int64{}}
}

func cacheKey(snap catalog.Snapshot, q preference.Query, limit int) string {
	return fmt.Sprintf("%s|%s|%d", snap.Version, q.Key(), limit)
}

func (m *mockCache) Get(_ context.Context, snap catalog.Snapshot, q preference.Query, limit int) ([]int64, bool) {
	ids, ok := m.entries[cacheKey(snap, q, limit)]
	if ok {
		m.hits++
	}
	return ids, ok
}

func (m *mockCache) Put(_ context.Context, snap catalog.Snapshot, q preference.Query, limit int, ids []int64) {
	m.puts++
	m.entries[cacheKey(snap, q, limit)] = ids
}

// --- Fixtures ---

func f(v float64) *float64 { return catalog.Float(v) }

var fixedNow = time.Date(2026, 10, 17, 9, 30, 15, 987654321, time.UTC)

func testItems() []catalog.Item {
	return []catalog.Item{
		{
			ID: 1, Brand: "Olight", Name: "Baton 3", Category: "edc", Tags: []string{"edc"},
			PriceUSD: f(45), LengthMM: f(85), WeightG: f(53), MaxLumens: f(1200), MaxCandela: f(5000),
			BeamDistanceM: f(166), RuntimeHighMin: f(60), RuntimeMediumMin: f(420), WaterproofRating: "IPX8",
			BatteryTypes: []string{"proprietary"},
		},
		{
			ID: 2, Brand: "Fenix", Name: "PD36R Pro", Category: "tactical", Tags: []string{"tactical"},
			PriceUSD: f(120), LengthMM: f(141), WeightG: f(170), MaxLumens: f(2800), MaxCandela: f(22500),
			BeamDistanceM: f(300), RuntimeHighMin: f(210), WaterproofRating: "IP68", BatteryTypes: []string{"21700"},
		},
		{
			ID: 3, Brand: "Streamlight", Name: "ProTac HL-X", Category: "tactical",
			PriceUSD: f(80), LengthMM: f(162), MaxLumens: f(1000), MaxCandela: f(20000),
			BatteryTypes: []string{"18650", "cr123a"},
		},
		{
			ID: 4, Brand: "Nitecore", Name: "NU25", Category: "camping", Tags: []string{"camping"},
			PriceUSD: f(37), LengthMM: f(55), MaxLumens: f(400), RuntimeMediumMin: f(480),
			BatteryTypes: []string{"built-in"},
		},
		{ID: 5, Brand: "Generic", Name: "Mystery"},
	}
}

func manyItems(n int) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = catalog.Item{
			ID: int64(i + 1), Brand: "Bulk", Name: fmt.Sprintf("Light %d", i+1),
			PriceUSD: f(float64(20 + i)), MaxLumens: f(float64(100 * (i + 1))),
		}
	}
	return out
}

func newTestService(items []catalog.Item) (*Service, *mockCatalog, *mockRepo) {
	cat := &mockCatalog{}
	cat.set(items)
	repo := newMockRepo()
	svc := New(cat, repo).WithClock(func() time.Time { return fixedNow })
	return svc, cat, repo
}
