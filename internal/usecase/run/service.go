package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lumenpick/internal/domain"
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
	domrun "github.com/kailas-cloud/lumenpick/internal/domain/run"
	"github.com/kailas-cloud/lumenpick/internal/logger"
	"github.com/kailas-cloud/lumenpick/internal/metrics"
	"github.com/kailas-cloud/lumenpick/internal/tracing"
	"github.com/kailas-cloud/lumenpick/internal/usecase/scoring"
)

// Service creates and reads recommendation runs.
type Service struct {
	catalog  CatalogSource
	repo     Repository
	cache    RankCache
	defaultN int
	maxN     int
	workers  int
	now      func() time.Time
}

// New creates a run service.
func New(src CatalogSource, repo Repository) *Service {
	return &Service{
		catalog:  src,
		repo:     repo,
		defaultN: scoring.DefaultTopN,
		maxN:     scoring.MaxTopN,
		now:      time.Now,
	}
}

// WithRankCache enables ranking memoization. nil disables it.
func (s *Service) WithRankCache(c RankCache) *Service {
	s.cache = c
	return s
}

// WithLimits configures the default and maximum result counts.
func (s *Service) WithLimits(defaultN, maxN int) *Service {
	if defaultN > 0 {
		s.defaultN = defaultN
	}
	if maxN > 0 {
		s.maxN = maxN
	}
	return s
}

// WithWorkers bounds scoring concurrency. Zero means unbounded.
func (s *Service) WithWorkers(n int) *Service {
	if n >= 0 {
		s.workers = n
	}
	return s
}

// WithClock overrides the creation timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create scores the current catalog against q and persists the top results
// as a new run. limit <= 0 selects the default result count.
//
// Errors: domain.ErrUpstreamUnavailable when the catalog cannot be read,
// domain.ErrStorage when the run cannot be persisted. Nothing is stored on failure.
func (s *Service) Create(ctx context.Context, q preference.Query, limit int) (r domrun.Run, err error) {
	ctx, end := tracing.StartSpan(ctx, "run.Create",
		attribute.String("intended_use", string(q.IntendedUse())),
		attribute.Float64("budget_usd", q.BudgetUSD()),
	)
	start := time.Now()
	defer func() {
		metrics.RunCreateDuration.Observe(time.Since(start).Seconds())
		metrics.RunsCreatedTotal.WithLabelValues(createStatus(err)).Inc()
		end(err)
	}()

	n := scoring.ClampLimit(limit, s.defaultN, s.maxN)

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return domrun.Run{}, fmt.Errorf("fetch catalog: %w", err)
	}

	top, err := s.rank(ctx, snap, q, n)
	if err != nil {
		return domrun.Run{}, err
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return domrun.Run{}, fmt.Errorf("create run: %w", asStorage(err))
	}

	r = domrun.New(id, s.now(), q, scoring.AlgorithmVersion, top)
	if err := s.repo.Save(ctx, r); err != nil {
		return domrun.Run{}, fmt.Errorf("create run: %w", asStorage(err))
	}

	tracing.SetAttributes(ctx, attribute.Int64("run_id", id))
	logger.FromContext(ctx).Info("Run created",
		zap.Int64("run_id", id),
		zap.String("snapshot_version", snap.Version),
		zap.Int("candidates", len(snap.Items)),
		zap.Int("results", len(top)),
		zap.String("query", q.Key()),
	)
	return r, nil
}

// Get returns a stored run exactly as it was created.
func (s *Service) Get(ctx context.Context, id int64) (r domrun.Run, err error) {
	ctx, end := tracing.StartSpan(ctx, "run.Get", attribute.Int64("run_id", id))
	defer func() { end(err) }()

	r, err = s.repo.Get(ctx, id)
	if err != nil {
		return domrun.Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

func (s *Service) rank(ctx context.Context, snap catalog.Snapshot, q preference.Query, n int) ([]domrun.Candidate, error) {
	if s.cache != nil {
		if ids, ok := s.cache.Get(ctx, snap, q, n); ok {
			if top, ok := rescore(snap, q, ids, n); ok {
				return top, nil
			}
			logger.FromContext(ctx).Warn("Discarding stale cached ranking",
				zap.String("snapshot_version", snap.Version))
		}
	}

	scored, err := scoring.ScoreAll(ctx, snap.Items, q, s.workers)
	if err != nil {
		return nil, fmt.Errorf("rank catalog: %w", err)
	}
	top := scoring.Rank(scored, n)

	if s.cache != nil {
		ids := make([]int64, len(top))
		for i, c := range top {
			ids[i] = c.ItemID()
		}
		s.cache.Put(ctx, snap, q, n, ids)
	}
	return top, nil
}

// rescore scores the cached ids afresh against snap. It reports false when an id is
// gone or the fresh scores no longer produce the cached order.
func rescore(snap catalog.Snapshot, q preference.Query, ids []int64, n int) ([]domrun.Candidate, bool) {
	byID := make(map[int64]*catalog.Item, len(snap.Items))
	for i := range snap.Items {
		byID[snap.Items[i].ID] = &snap.Items[i]
	}
	if len(ids) != min(n, len(snap.Items)) {
		return nil, false
	}

	top := make([]domrun.Candidate, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, false
		}
		top = append(top, domrun.NewCandidate(*item, scoring.Score(item, q)))
	}

	for i, c := range scoring.Rank(top, n) {
		if c.ItemID() != ids[i] {
			return nil, false
		}
	}
	return top, true
}

func asStorage(err error) error {
	if errors.Is(err, domain.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

func createStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_error"
	case errors.Is(err, domain.ErrStorage):
		return "storage_error"
	default:
		return "error"
	}
}
