package rankings

import (
	"context"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
)

// CatalogSource provides the current catalog snapshot.
type CatalogSource interface {
	Snapshot(ctx context.Context) (catalog.Snapshot, error)
}
