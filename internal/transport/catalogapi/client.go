package catalogapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lumenpick/internal/domain"
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/metrics"
)

const (
	itemsPath    = "/catalog/items"
	maxBodyBytes = 32 << 20
	breakerName  = "catalog-api"
)

// Client fetches catalog snapshots from the catalog service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[catalog.Snapshot]
	logger  *zap.Logger
}

// Config holds the catalog service settings.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Breaker: MaxRequests trial calls in half-open, counts reset every Interval
	// while closed, Timeout in open before probing, FailureThreshold
	// consecutive failures to trip.
	MaxRequests      uint32
	Interval         time.Duration
	BreakerTimeout   time.Duration
	FailureThreshold uint32

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a catalog client. BaseURL is required; it is never read from the environment.
func NewClient(cfg *Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("catalog api: base url is required")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.CatalogBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[catalog.Snapshot](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller giving up is not an upstream fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Catalog breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CatalogBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{baseURL: base, http: hc, cb: cb, logger: logger}, nil
}

// Name identifies the source in metrics and logs.
func (c *Client) Name() string { return "http" }

// Snapshot fetches the current catalog. Any failure, including an open
// breaker, is reported as domain.ErrUpstreamUnavailable.
func (c *Client) Snapshot(ctx context.Context) (catalog.Snapshot, error) {
	snap, err := c.cb.Execute(func() (catalog.Snapshot, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return catalog.Snapshot{}, fmt.Errorf("catalog breaker %s: %w: %w", c.cb.State(), domain.ErrUpstreamUnavailable, err)
		}
		return catalog.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return snap, nil
}

// Ping reports whether the breaker currently lets requests through.
func (c *Client) Ping(_ context.Context) error {
	if c.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("catalog breaker open: %w", domain.ErrUpstreamUnavailable)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context) (catalog.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+itemsPath, http.NoBody)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("get catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return catalog.Snapshot{}, fmt.Errorf("get catalog: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var body snapshotResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("decode catalog: %w", err)
	}

	items := make([]catalog.Item, 0, len(body.Items))
	for i := range body.Items {
		items = append(items, body.Items[i].toDomain())
	}
	return catalog.NewSnapshot(body.Version, items), nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
