package scoring

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
	"github.com/kailas-cloud/lumenpick/internal/domain/run"
)

// AlgorithmVersion identifies the current weighting and formula set. It is pinned
// into every run, so bump it whenever a score could change for the same input.
const AlgorithmVersion = "v2"

// Result size limits.
const (
	DefaultTopN = 5
	MaxTopN     = 20
)

// ClampLimit resolves a requested result count: non-positive means defaultN, and
// anything above maxN is cut to maxN.
func ClampLimit(limit, defaultN, maxN int) int {
	if maxN <= 0 {
		maxN = MaxTopN
	}
	if defaultN <= 0 {
		defaultN = DefaultTopN
	}
	if limit <= 0 {
		limit = defaultN
	}
	return min(limit, maxN)
}

// Score computes all dimension scores of one item. Scores are rounded to one
// decimal before aggregation, so stored values reproduce the stored overall.
func Score(item *catalog.Item, q preference.Query) run.Scores {
	s := run.Scores{
		UseCase: round1(UseCaseScore(item, q)),
		Budget:  round1(BudgetScore(item, q)),
		Battery: round1(BatteryMatchScore(item, q)),
		Size:    round1(SizeFitScore(item, q)),
	}
	s.Overall = round1(DefaultWeights().Aggregate(s))
	return s
}

// ScoreAll scores every item concurrently with at most workers goroutines
// (workers <= 0 means unbounded). Each goroutine writes only its own slot.
// A cancelled context aborts the whole computation.
func ScoreAll(ctx context.Context, items []catalog.Item, q preference.Query, workers int) ([]run.Candidate, error) {
	out := make([]run.Candidate, len(items))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = run.NewCandidate(items[i], Score(&items[i], q))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	return out, nil
}

// Rank orders candidates by overall score descending, ties by ascending item id,
// and keeps the first n.
func Rank(candidates []run.Candidate, n int) []run.Candidate {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, compareCandidates)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func compareCandidates(a, b run.Candidate) int {
	if c := cmp.Compare(b.Scores().Overall, a.Scores().Overall); c != 0 {
		return c
	}
	return cmp.Compare(a.ItemID(), b.ItemID())
}
