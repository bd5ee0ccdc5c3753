package run

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/lumenpick/internal/db"
	"github.com/kailas-cloud/lumenpick/internal/domain"
	domrun "github.com/kailas-cloud/lumenpick/internal/domain/run"
)

// store is the consumer interface for runs (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Repo implements usecase/run.Repository on a key-value store.
//
// Layout: <prefix>run:seq is the id counter and never expires;
// <prefix>run:<id> holds one JSON document per run, written once.
type Repo struct {
	store     store
	prefix    string
	retention time.Duration
}

// New creates a run repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// WithRetention expires run documents after d. Zero keeps them forever.
func (r *Repo) WithRetention(d time.Duration) *Repo {
	if d > 0 {
		r.retention = d
	}
	return r
}

// NextID issues a fresh run id. Ids are never handed out twice, even when the
// run they were issued for is never saved.
func (r *Repo) NextID(ctx context.Context) (int64, error) {
	id, err := r.store.Incr(ctx, r.seqKey())
	if err != nil {
		return 0, fmt.Errorf("issue run id: %w: %w", domain.ErrStorage, err)
	}
	return id, nil
}

// Save persists a run with a single atomic write. An existing key is never overwritten.
func (r *Repo) Save(ctx context.Context, run domrun.Run) error {
	data, err := json.Marshal(runToDoc(run))
	if err != nil {
		return fmt.Errorf("marshal run %d: %w", run.ID(), err)
	}

	if err := r.store.SetNX(ctx, r.runKey(run.ID()), data, r.retention); err != nil {
		return fmt.Errorf("save run %d: %w: %w", run.ID(), domain.ErrStorage, err)
	}
	return nil
}

// Get loads a run by id.
func (r *Repo) Get(ctx context.Context, id int64) (domrun.Run, error) {
	data, err := r.store.Get(ctx, r.runKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrun.Run{}, fmt.Errorf("run %d: %w", id, domain.ErrNotFound)
		}
		return domrun.Run{}, fmt.Errorf("get run %d: %w: %w", id, domain.ErrStorage, err)
	}

	var doc runDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domrun.Run{}, fmt.Errorf("decode run %d: %w: %w", id, domain.ErrStorage, err)
	}
	return docToRun(doc), nil
}

func (r *Repo) seqKey() string { return r.prefix + "run:seq" }

func (r *Repo) runKey(id int64) string { return r.prefix + "run:" + strconv.FormatInt(id, 10) }
