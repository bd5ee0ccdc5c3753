package catalogfeed

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/metrics"
	"github.com/kailas-cloud/lumenpick/internal/tracing"
)

// Source is a catalog backend (HTTP catalog service, PostgreSQL or YAML file).
type Source interface {
	Name() string
	Snapshot(ctx context.Context) (catalog.Snapshot, error)
	Ping(ctx context.Context) error
}

// Instrumented wraps a Source with tracing, metrics and logging.
// Error classification stays with the backend.
type Instrumented struct {
	inner  Source
	logger *zap.Logger
}

// NewInstrumented wraps src.
func NewInstrumented(src Source, logger *zap.Logger) *Instrumented {
	return &Instrumented{inner: src, logger: logger}
}

// Name returns the backend name.
func (p *Instrumented) Name() string { return p.inner.Name() }

// Ping delegates the health check to the backend.
func (p *Instrumented) Ping(ctx context.Context) error {
	if err := p.inner.Ping(ctx); err != nil {
		return fmt.Errorf("catalog %s: %w", p.inner.Name(), err)
	}
	return nil
}

// Snapshot fetches a snapshot from the backend.
func (p *Instrumented) Snapshot(ctx context.Context) (snap catalog.Snapshot, err error) {
	source := p.inner.Name()
	ctx, end := tracing.StartSpan(ctx, "catalog.Snapshot", attribute.String("catalog.source", source))
	defer func() { end(err) }()

	start := time.Now()
	snap, err = p.inner.Snapshot(ctx)
	duration := time.Since(start)

	if err != nil {
		metrics.CatalogFetchTotal.WithLabelValues(source, "error").Inc()
		p.logger.Error("Catalog fetch failed",
			zap.String("source", source),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return catalog.Snapshot{}, fmt.Errorf("catalog %s: %w", source, err)
	}

	metrics.CatalogFetchTotal.WithLabelValues(source, "ok").Inc()
	metrics.CatalogItems.WithLabelValues(source).Set(float64(len(snap.Items)))
	tracing.SetAttributes(ctx,
		attribute.String("catalog.version", snap.Version),
		attribute.Int("catalog.items", len(snap.Items)),
	)

	p.logger.Debug("Catalog fetch completed",
		zap.String("source", source),
		zap.Duration("duration", duration),
		zap.String("snapshot_version", snap.Version),
		zap.Int("items", len(snap.Items)),
	)
	return snap, nil
}
