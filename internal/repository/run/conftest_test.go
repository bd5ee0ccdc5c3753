package run

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/lumenpick/internal/db"
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
	domrun "github.com/kailas-cloud/lumenpick/internal/domain/run"
)

// mockStore is an in-memory store; fn fields override the default behaviour.
type mockStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration

	getFn   func(ctx context.Context, key string) ([]byte, error)
	setNXFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	incrFn  func(ctx context.Context, key string) (int64, error)
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setNXFn != nil {
		return m.setNXFn(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return db.ErrKeyExists
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Incr(ctx context.Context, key string) (int64, error) {
	if m.incrFn != nil {
		return m.incrFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func sampleRun(id int64) domrun.Run {
	full := catalog.Item{
		ID: 7, Brand: "Acme", Name: "Beam One", Model: "B1", Slug: "acme-beam-one",
		Category: "edc", Tags: []string{"edc", "keychain"},
		PriceUSD: catalog.Float(49.95), WeightG: catalog.Float(62), LengthMM: catalog.Float(112),
		MaxLumens: catalog.Float(1400), MaxCandela: catalog.Float(9000), BeamDistanceM: catalog.Float(190),
		RuntimeHighMin: catalog.Float(75), RuntimeMediumMin: catalog.Float(240),
		ImpactResistanceM: catalog.Float(1.5), WaterproofRating: "IPX8",
		BatteryTypes:  []string{"18650"},
		ProfileScores: map[string]float64{"edc": 71.25, "throw": 40},
	}
	sparse := catalog.Item{ID: 9, Brand: "NoName", Name: "Mystery"}

	q := preference.Reconstruct(preference.UseCaseEDC, 60, preference.Battery18650, preference.SizePocket)
	return domrun.New(id, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), q, "v2", []domrun.Candidate{
		domrun.NewCandidate(full, domrun.Scores{UseCase: 81.2, Budget: 100, Battery: 100, Size: 90, Overall: 89.7}),
		domrun.NewCandidate(sparse, domrun.Scores{UseCase: 4, Budget: 0, Battery: 20, Size: 0, Overall: 6.2}),
	})
}
