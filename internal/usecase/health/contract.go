package health

import "context"

// DBPinger checks run store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CatalogChecker checks catalog source availability.
type CatalogChecker interface {
	Ping(ctx context.Context) error
}
