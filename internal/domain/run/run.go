// Package run holds the persisted recommendation run aggregate.
package run

import (
	"time"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
)

// Scores holds the four dimension scores and their weighted overall, each in [0, 100].
type Scores struct {
	UseCase float64
	Budget  float64
	Battery float64
	Size    float64
	Overall float64
}

// Candidate is a catalog item together with its scores.
type Candidate struct {
	item   catalog.Item
	scores Scores
}

// NewCandidate pairs an item with its scores. The item is copied.
func NewCandidate(item catalog.Item, scores Scores) Candidate {
	return Candidate{item: item.Clone(), scores: scores}
}

// ItemID returns the catalog id of the scored item.
func (c Candidate) ItemID() int64 { return c.item.ID }

// Item returns a copy of the scored item.
func (c Candidate) Item() catalog.Item { return c.item.Clone() }

// Scores returns the dimension and overall scores.
func (c Candidate) Scores() Scores { return c.scores }

// Run is one persisted recommendation computation (immutable aggregate).
type Run struct {
	id               int64
	createdAt        time.Time
	query            preference.Query
	algorithmVersion string
	topResults       []Candidate
}

// New creates a Run. createdAt is stored in UTC at second precision so that it
// survives a round trip through RFC 3339 unchanged.
func New(
	id int64, createdAt time.Time, query preference.Query, algorithmVersion string, topResults []Candidate,
) Run {
	results := make([]Candidate, len(topResults))
	copy(results, topResults)
	return Run{
		id:               id,
		createdAt:        createdAt.UTC().Truncate(time.Second),
		query:            query,
		algorithmVersion: algorithmVersion,
		topResults:       results,
	}
}

// ID returns the run identifier.
func (r Run) ID() int64 { return r.id }

// CreatedAt returns the creation timestamp (UTC).
func (r Run) CreatedAt() time.Time { return r.createdAt }

// Query returns the normalized query the run was computed for.
func (r Run) Query() preference.Query { return r.query }

// AlgorithmVersion returns the scoring formula version pinned at creation.
func (r Run) AlgorithmVersion() string { return r.algorithmVersion }

// TopResults returns a copy of the ranked results.
func (r Run) TopResults() []Candidate {
	out := make([]Candidate, len(r.topResults))
	copy(out, r.topResults)
	return out
}
