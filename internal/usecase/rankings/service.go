package rankings

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/kailas-cloud/lumenpick/internal/domain"
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/usecase/scoring"
)

// Paging and compare limits.
const (
	DefaultProfile  = scoring.ProfileTactical
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 100000
	MaxCompareIDs   = 20
)

// Finder limits and blend weights.
const (
	DefaultFinderLimit = 25
	MaxFinderLimit     = 100

	finderTactical = 0.50
	finderThrow    = 0.30
	finderValue    = 0.20
)

// FinderFilters narrows the finder. A nil field does not filter.
type FinderFilters struct {
	Budget   *float64
	USBC     *bool
	MinThrow *int64
}

// FinderEntry is one finder result with the profile scores it blends.
type FinderEntry struct {
	Item     catalog.Item
	Tactical float64
	Throw    float64
	Value    float64
	Score    float64
}

// Entry is one ranked catalog item.
type Entry struct {
	Rank    int
	Score   float64
	Profile scoring.Profile
	Item    catalog.Item
}

// Page is one page of a profile ranking.
type Page struct {
	Profile    scoring.Profile
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Entries    []Entry
}

// Comparison is one item with all its profile scores.
type Comparison struct {
	Item   catalog.Item
	Scores map[scoring.Profile]float64
}

// Service ranks the catalog by coarse profiles and compares items.
type Service struct {
	catalog CatalogSource
}

// New creates a rankings service.
func New(src CatalogSource) *Service {
	return &Service{catalog: src}
}

// ParseProfile resolves a profile name. Empty selects DefaultProfile.
func ParseProfile(name string) (scoring.Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultProfile, nil
	}
	p := scoring.Profile(name)
	if !p.Valid() {
		return "", fmt.Errorf("use_case %q: expected one of tactical, edc, value, throw, flood: %w",
			name, domain.ErrInvalidRequest)
	}
	return p, nil
}

// Rankings returns one page of the catalog ordered by profile score. Items with
// equal scores share a rank (dense ranking) and are ordered by id.
// page and pageSize are clamped; pageSize 0 selects DefaultPageSize.
func (s *Service) Rankings(ctx context.Context, profile string, page, pageSize int) (Page, error) {
	p, err := ParseProfile(profile)
	if err != nil {
		return Page{}, err
	}
	page = min(max(page, 1), MaxPage)
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(max(pageSize, 1), MaxPageSize)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return Page{}, err
	}

	ranked := rank(snap.Items, p)
	total := len(ranked)

	from := min((page-1)*pageSize, total)
	to := min(from+pageSize, total)

	return Page{
		Profile:    p,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
		Entries:    ranked[from:to],
	}, nil
}

// Compare returns the requested items ordered by id with their profile scores.
// Unknown ids are skipped.
func (s *Service) Compare(ctx context.Context, ids []int64) ([]Comparison, error) {
	if len(ids) == 0 || len(ids) > MaxCompareIDs {
		return nil, fmt.Errorf("compare takes 1 to %d ids, got %d: %w", MaxCompareIDs, len(ids), domain.ErrInvalidRequest)
	}
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("id %d must be positive: %w", id, domain.ErrInvalidRequest)
		}
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	items := snap.Lookup(ids)
	out := make([]Comparison, len(items))
	for i := range items {
		out[i] = Comparison{Item: items[i], Scores: scoring.ProfileScoresOf(&items[i])}
	}
	return out, nil
}

// Finder filters the catalog and orders it by a blend of the tactical, throw and
// value profiles, ties by id. An item whose price, USB-C flag or beam distance is
// unknown never passes a filter on that field. limit 0 selects DefaultFinderLimit.
func (s *Service) Finder(ctx context.Context, f FinderFilters, limit int) ([]FinderEntry, error) {
	if limit == 0 {
		limit = DefaultFinderLimit
	}
	limit = min(max(limit, 1), MaxFinderLimit)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]FinderEntry, 0, len(snap.Items))
	for i := range snap.Items {
		item := &snap.Items[i]
		if !f.match(item) {
			continue
		}
		e := FinderEntry{
			Item:     *item,
			Tactical: scoring.ProfileScore(item, scoring.ProfileTactical),
			Throw:    scoring.ProfileScore(item, scoring.ProfileThrow),
			Value:    scoring.ProfileScore(item, scoring.ProfileValue),
		}
		e.Score = math.Round((e.Tactical*finderTactical+e.Throw*finderThrow+e.Value*finderValue)*10) / 10
		out = append(out, e)
	}

	slices.SortFunc(out, func(a, b FinderEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.ID, b.Item.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f FinderFilters) match(item *catalog.Item) bool {
	if f.Budget != nil && (item.PriceUSD == nil || *item.PriceUSD > *f.Budget) {
		return false
	}
	if f.USBC != nil && (item.USBCRechargeable == nil || *item.USBCRechargeable != *f.USBC) {
		return false
	}
	if f.MinThrow != nil && (item.BeamDistanceM == nil || *item.BeamDistanceM < float64(*f.MinThrow)) {
		return false
	}
	return true
}

func (s *Service) snapshot(ctx context.Context) (catalog.Snapshot, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return catalog.Snapshot{}, fmt.Errorf("fetch catalog: %w", err)
	}
	return snap, nil
}

func rank(items []catalog.Item, p scoring.Profile) []Entry {
	out := make([]Entry, len(items))
	for i := range items {
		out[i] = Entry{Score: scoring.ProfileScore(&items[i], p), Profile: p, Item: items[i]}
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.ID, b.Item.ID)
	})

	position := 0
	for i := range out {
		if i == 0 || out[i].Score != out[i-1].Score {
			position++
		}
		out[i].Rank = position
	}
	return out
}
