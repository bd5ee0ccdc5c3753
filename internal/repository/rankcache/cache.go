package rankcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lumenpick/internal/db"
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
)

// store is the consumer interface for the rank cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache memoizes the ranked order of item ids per (algorithm, catalog contents, query, limit).
// Scores are never stored: callers rescore the cached ids against the live snapshot.
// The key hashes the items themselves, never the upstream version tag, so any data
// change is a miss. Every store failure degrades to a miss.
type Cache struct {
	store      store
	prefix     string
	version    string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a rank cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	s store,
	keyPrefix, algorithmVersion string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		store:      s,
		prefix:     keyPrefix + "rank_cache:",
		version:    algorithmVersion,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get returns the cached id order, or false on a miss.
func (c *Cache) Get(ctx context.Context, snap catalog.Snapshot, q preference.Query, limit int) ([]int64, bool) {
	contents := catalog.Fingerprint(snap.Items)
	if contents == "" {
		c.inc("miss")
		return nil, false
	}

	ids, ok := c.load(ctx, c.key(contents, q, limit))
	if !ok {
		c.inc("miss")
		return nil, false
	}
	c.inc("hit")
	return ids, true
}

// Put stores a ranked id order. Failures are logged and dropped.
func (c *Cache) Put(ctx context.Context, snap catalog.Snapshot, q preference.Query, limit int, ids []int64) {
	contents := catalog.Fingerprint(snap.Items)
	if contents == "" {
		return
	}

	data, err := json.Marshal(ids)
	if err != nil {
		c.logger.Warn("Failed to encode ranking", zap.Error(err))
		return
	}

	key := c.key(contents, q, limit)
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache ranking", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) load(ctx context.Context, key string) ([]int64, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached ranking", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		c.logger.Warn("Failed to parse cached ranking", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return ids, true
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache) key(contents string, q preference.Query, limit int) string {
	h := sha256.Sum256([]byte(c.version + "|" + contents + "|" + q.Key() + "|" + strconv.Itoa(limit)))
	return c.prefix + hex.EncodeToString(h[:])
}
