package rankings

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/lumenpick/internal/domain"
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/usecase/scoring"
)

// --- Mocks ---

type mockCatalog struct {
	snap catalog.Snapshot
	err  error
}

func (m *mockCatalog) Snapshot(_ context.Context) (catalog.Snapshot, error) { return m.snap, m.err }

func scored(id int64, throw float64) catalog.Item {
	return catalog.Item{ID: id, Brand: "B", Name: "N", ProfileScores: map[string]float64{"throw": throw}}
}

func finderItem(id int64, tactical, throw, value float64, price, beam *float64, usbC *bool) catalog.Item {
	return catalog.Item{
		ID: id, Brand: "B", Name: "N", PriceUSD: price, BeamDistanceM: beam, USBCRechargeable: usbC,
		ProfileScores: map[string]float64{"tactical": tactical, "throw": throw, "value": value},
	}
}

func finderCatalog() *Service {
	return newTestService(
		finderItem(1, 80, 60, 50, catalog.Float(50), catalog.Float(300), catalog.Bool(true)),
		finderItem(2, 90, 90, 90, catalog.Float(150), catalog.Float(500), catalog.Bool(false)),
		finderItem(3, 80, 60, 50, nil, nil, nil),
		finderItem(4, 40, 40, 40, catalog.Float(30), catalog.Float(100), catalog.Bool(true)),
	)
}

func finderIDs(entries []FinderEntry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.Item.ID
	}
	return ids
}

func newTestService(items ...catalog.Item) *Service {
	return New(&mockCatalog{snap: catalog.NewSnapshot("t", items)})
}

// --- Tests ---

func TestParseProfile(t *testing.T) {
	tests := []struct {
		in      string
		want    scoring.Profile
		wantErr bool
	}{
		{"", scoring.ProfileTactical, false},
		{" Throw ", scoring.ProfileThrow, false},
		{"value", scoring.ProfileValue, false},
		{"camping", "", true},
	}
	for _, tt := range tests {
		got, err := ParseProfile(tt.in)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("ParseProfile(%q): expected ErrInvalidRequest, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseProfile(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestRankings_DenseRankAndTieBreak(t *testing.T) {
	svc := newTestService(scored(4, 70), scored(2, 90), scored(3, 70), scored(1, 50))

	page, err := svc.Rankings(context.Background(), "throw", 1, 0)
	if err != nil {
		t.Fatalf("Rankings: %v", err)
	}
	if page.Total != 4 || page.TotalPages != 1 || page.PageSize != DefaultPageSize {
		t.Fatalf("unexpected paging %+v", page)
	}

	wantIDs := []int64{2, 3, 4, 1}
	wantRanks := []int{1, 2, 2, 3}
	for i, e := range page.Entries {
		if e.Item.ID != wantIDs[i] || e.Rank != wantRanks[i] {
			t.Errorf("entry %d: got id=%d rank=%d, want id=%d rank=%d", i, e.Item.ID, e.Rank, wantIDs[i], wantRanks[i])
		}
		if e.Profile != scoring.ProfileThrow {
			t.Errorf("entry %d: unexpected profile %q", i, e.Profile)
		}
	}
}

func TestRankings_Paging(t *testing.T) {
	items := make([]catalog.Item, 0, 7)
	for i := int64(1); i <= 7; i++ {
		items = append(items, scored(i, float64(100-i)))
	}
	svc := newTestService(items...)
	ctx := context.Background()

	page, err := svc.Rankings(ctx, "throw", 2, 3)
	if err != nil {
		t.Fatalf("Rankings: %v", err)
	}
	if page.TotalPages != 3 || len(page.Entries) != 3 || page.Entries[0].Item.ID != 4 || page.Entries[0].Rank != 4 {
		t.Fatalf("unexpected page 2: %+v", page)
	}

	page, _ = svc.Rankings(ctx, "throw", 3, 3)
	if len(page.Entries) != 1 || page.Entries[0].Item.ID != 7 {
		t.Fatalf("unexpected last page: %+v", page.Entries)
	}

	page, _ = svc.Rankings(ctx, "throw", 99, 3)
	if len(page.Entries) != 0 || page.Total != 7 {
		t.Fatalf("expected empty page past the end, got %+v", page)
	}

	page, _ = svc.Rankings(ctx, "throw", -1, 1000)
	if page.Page != 1 || page.PageSize != MaxPageSize {
		t.Fatalf("expected clamped paging, got page=%d size=%d", page.Page, page.PageSize)
	}
}

func TestRankings_ComputesMissingScores(t *testing.T) {
	bright := catalog.Item{ID: 1, MaxLumens: catalog.Float(5000), RuntimeMediumMin: catalog.Float(900)}
	dim := catalog.Item{ID: 2, MaxLumens: catalog.Float(150)}
	svc := newTestService(dim, bright)

	page, err := svc.Rankings(context.Background(), "flood", 1, 10)
	if err != nil {
		t.Fatalf("Rankings: %v", err)
	}
	if page.Entries[0].Item.ID != 1 {
		t.Fatalf("expected brighter light first, got %d", page.Entries[0].Item.ID)
	}
	if page.Entries[0].Score <= page.Entries[1].Score {
		t.Fatalf("expected strictly higher score, got %v <= %v", page.Entries[0].Score, page.Entries[1].Score)
	}
}

func TestRankings_Errors(t *testing.T) {
	if _, err := newTestService().Rankings(context.Background(), "banana", 1, 10); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	svc := New(&mockCatalog{err: errors.New("connection refused")})
	if _, err := svc.Rankings(context.Background(), "", 1, 10); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFinder_BlendAndTieBreak(t *testing.T) {
	got, err := finderCatalog().Finder(context.Background(), FinderFilters{}, 0)
	if err != nil {
		t.Fatalf("Finder: %v", err)
	}
	if ids := finderIDs(got); !slices.Equal(ids, []int64{2, 1, 3, 4}) {
		t.Fatalf("unexpected order %v", ids)
	}
	if got[0].Score != 90 || got[1].Score != 68 || got[3].Score != 40 {
		t.Fatalf("unexpected scores %v %v %v", got[0].Score, got[1].Score, got[3].Score)
	}
	if got[1].Tactical != 80 || got[1].Throw != 60 || got[1].Value != 50 {
		t.Fatalf("unexpected profile scores %+v", got[1])
	}
}

func TestFinder_Filters(t *testing.T) {
	budget, minThrow := 100.0, int64(200)
	yes, no := true, false

	tests := []struct {
		name    string
		filters FinderFilters
		want    []int64
	}{
		{"budget excludes unknown and expensive", FinderFilters{Budget: &budget}, []int64{1, 4}},
		{"usb-c", FinderFilters{USBC: &yes}, []int64{1, 4}},
		{"no usb-c", FinderFilters{USBC: &no}, []int64{2}},
		{"min throw", FinderFilters{MinThrow: &minThrow}, []int64{2, 1}},
		{"combined", FinderFilters{Budget: &budget, MinThrow: &minThrow}, []int64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := finderCatalog().Finder(context.Background(), tt.filters, 0)
			if err != nil {
				t.Fatalf("Finder: %v", err)
			}
			if ids := finderIDs(got); !slices.Equal(ids, tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestFinder_Limit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{1, 1},
		{-5, 1},
		{500, 4},
	}
	for _, tt := range tests {
		got, err := finderCatalog().Finder(context.Background(), FinderFilters{}, tt.limit)
		if err != nil {
			t.Fatalf("Finder(%d): %v", tt.limit, err)
		}
		if len(got) != tt.want {
			t.Errorf("Finder(%d) returned %d entries, want %d", tt.limit, len(got), tt.want)
		}
	}
}

func TestFinder_UpstreamUnavailable(t *testing.T) {
	svc := New(&mockCatalog{err: errors.New("connection refused")})
	if _, err := svc.Finder(context.Background(), FinderFilters{}, 0); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	svc := newTestService(scored(3, 40), scored(1, 80), scored(2, 60))

	got, err := svc.Compare(context.Background(), []int64{3, 1, 99})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(got) != 2 || got[0].Item.ID != 1 || got[1].Item.ID != 3 {
		t.Fatalf("unexpected comparison order: %+v", got)
	}
	if got[0].Scores[scoring.ProfileThrow] != 80 {
		t.Fatalf("expected precomputed throw score, got %v", got[0].Scores[scoring.ProfileThrow])
	}
	if len(got[0].Scores) != len(scoring.Profiles()) {
		t.Fatalf("expected every profile, got %v", got[0].Scores)
	}
}

func TestCompare_InvalidIDs(t *testing.T) {
	svc := newTestService(scored(1, 10))
	tooMany := make([]int64, MaxCompareIDs+1)
	for i := range tooMany {
		tooMany[i] = int64(i + 1)
	}

	for name, ids := range map[string][]int64{
		"empty":    nil,
		"too many": tooMany,
		"zero":     {1, 0},
		"negative": {-4},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Compare(context.Background(), ids); !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}
