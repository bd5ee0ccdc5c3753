package run

import (
	"context"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
	domrun "github.com/kailas-cloud/lumenpick/internal/domain/run"
)

// CatalogSource provides the current catalog snapshot.
type CatalogSource interface {
	Snapshot(ctx context.Context) (catalog.Snapshot, error)
}

// Repository defines the storage contract for runs.
type Repository interface {
	NextID(ctx context.Context) (int64, error)
	Save(ctx context.Context, r domrun.Run) error
	Get(ctx context.Context, id int64) (domrun.Run, error)
}

// RankCache memoizes the ranked order of item ids. Implementations swallow their own failures.
type RankCache interface {
	Get(ctx context.Context, snap catalog.Snapshot, q preference.Query, limit int) ([]int64, bool)
	Put(ctx context.Context, snap catalog.Snapshot, q preference.Query, limit int, ids []int64)
}
