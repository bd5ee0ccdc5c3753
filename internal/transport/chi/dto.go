package chi

import (
	"time"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	domrun "github.com/kailas-cloud/lumenpick/internal/domain/run"
	healthuc "github.com/kailas-cloud/lumenpick/internal/usecase/health"
	rankingsuc "github.com/kailas-cloud/lumenpick/internal/usecase/rankings"
	"github.com/kailas-cloud/lumenpick/internal/usecase/scoring"
)

// ErrorCode is the machine readable code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeUnauthorized        ErrorCode = "unauthorized"
	CodeNotFound            ErrorCode = "not_found"
	CodeRateLimited         ErrorCode = "rate_limited"
	CodeStorageUnavailable  ErrorCode = "storage_unavailable"
	CodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RunResponse is the wire form of a run. The same conversion serves create and
// get, so a stored run is always rendered with identical bytes.
type RunResponse struct {
	RunID             int64               `json:"run_id"`
	CreatedAt         time.Time           `json:"created_at"`
	IntendedUse       string              `json:"intended_use"`
	BudgetUSD         float64             `json:"budget_usd"`
	BatteryPreference string              `json:"battery_preference"`
	SizeConstraint    string              `json:"size_constraint"`
	AlgorithmVersion  string              `json:"algorithm_version"`
	TopResults        []CandidateResponse `json:"top_results"`
}

// CandidateResponse is one ranked flashlight with its dimension scores.
type CandidateResponse struct {
	Flashlight
	OverallScore      float64 `json:"overall_score"`
	UseCaseScore      float64 `json:"use_case_score"`
	BudgetScore       float64 `json:"budget_score"`
	BatteryMatchScore float64 `json:"battery_match_score"`
	SizeFitScore      float64 `json:"size_fit_score"`
}

// Flashlight is the full catalog view of an item.
type Flashlight struct {
	ID                int64              `json:"id"`
	Brand             string             `json:"brand"`
	Name              string             `json:"name"`
	Model             string             `json:"model,omitempty"`
	Slug              string             `json:"slug,omitempty"`
	Category          string             `json:"category,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	ImageURL          string             `json:"image_url,omitempty"`
	AmazonURL         string             `json:"amazon_url,omitempty"`
	PriceUSD          *float64           `json:"price_usd,omitempty"`
	WeightG           *float64           `json:"weight_g,omitempty"`
	LengthMM          *float64           `json:"length_mm,omitempty"`
	MaxLumens         *float64           `json:"max_lumens,omitempty"`
	MaxCandela        *float64           `json:"max_candela,omitempty"`
	BeamDistanceM     *float64           `json:"beam_distance_m,omitempty"`
	RuntimeHighMin    *float64           `json:"runtime_high_min,omitempty"`
	RuntimeMediumMin  *float64           `json:"runtime_medium_min,omitempty"`
	ImpactResistanceM *float64           `json:"impact_resistance_m,omitempty"`
	WaterproofRating  string             `json:"waterproof_rating,omitempty"`
	BatteryTypes      []string           `json:"battery_types,omitempty"`
	USBCRechargeable  *bool              `json:"usb_c_rechargeable,omitempty"`
	ProfileScores     map[string]float64 `json:"profile_scores,omitempty"`
}

// FlashlightSummary is the short item view used in rankings.
type FlashlightSummary struct {
	ID        int64  `json:"id"`
	Brand     string `json:"brand"`
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	AmazonURL string `json:"amazon_url,omitempty"`
}

// RankingsResponse is one page of GET /rankings.
type RankingsResponse struct {
	UseCase    string         `json:"use_case"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	Items      []RankingEntry `json:"items"`
}

// RankingEntry is a ranked catalog item.
type RankingEntry struct {
	Rank       int               `json:"rank"`
	Score      float64           `json:"score"`
	Profile    string            `json:"profile"`
	Flashlight FlashlightSummary `json:"flashlight"`
}

// CompareResponse is the body of GET /compare.
type CompareResponse struct {
	Items []CompareItem `json:"items"`
}

// CompareItem is an item with every profile score.
type CompareItem struct {
	Flashlight
	Scores map[string]float64 `json:"scores"`
}

// FinderResponse is the body of GET /finder.
type FinderResponse struct {
	Filters FinderFilters `json:"filters"`
	Items   []FinderItem  `json:"items"`
}

// FinderFilters echoes the filters that were applied.
type FinderFilters struct {
	Budget   *float64 `json:"budget,omitempty"`
	USBC     *bool    `json:"usb_c,omitempty"`
	MinThrow *int64   `json:"min_throw,omitempty"`
}

// FinderItem is one finder result.
type FinderItem struct {
	FlashlightID  int64    `json:"flashlight_id"`
	Brand         string   `json:"brand"`
	Name          string   `json:"name"`
	AmazonURL     string   `json:"amazon_url,omitempty"`
	PriceUSD      *float64 `json:"price_usd,omitempty"`
	BeamDistanceM *float64 `json:"beam_distance_m,omitempty"`
	TacticalScore float64  `json:"tactical_score"`
	ThrowScore    float64  `json:"throw_score"`
	ValueScore    float64  `json:"value_score"`
	FinderScore   float64  `json:"finder_score"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func runToResponse(r domrun.Run) RunResponse {
	q := r.Query()
	results := r.TopResults()
	out := make([]CandidateResponse, len(results))
	for i, c := range results {
		it := c.Item()
		s := c.Scores()
		out[i] = CandidateResponse{
			Flashlight:        flashlightFromItem(&it),
			OverallScore:      s.Overall,
			UseCaseScore:      s.UseCase,
			BudgetScore:       s.Budget,
			BatteryMatchScore: s.Battery,
			SizeFitScore:      s.Size,
		}
	}
	return RunResponse{
		RunID:             r.ID(),
		CreatedAt:         r.CreatedAt().UTC(),
		IntendedUse:       string(q.IntendedUse()),
		BudgetUSD:         q.BudgetUSD(),
		BatteryPreference: string(q.Battery()),
		SizeConstraint:    string(q.Size()),
		AlgorithmVersion:  r.AlgorithmVersion(),
		TopResults:        out,
	}
}

func flashlightFromItem(it *catalog.Item) Flashlight {
	return Flashlight{
		ID:                it.ID,
		Brand:             it.Brand,
		Name:              it.Name,
		Model:             it.Model,
		Slug:              it.Slug,
		Category:          it.Category,
		Tags:              it.Tags,
		ImageURL:          it.ImageURL,
		AmazonURL:         it.AmazonURL,
		PriceUSD:          it.PriceUSD,
		WeightG:           it.WeightG,
		LengthMM:          it.LengthMM,
		MaxLumens:         it.MaxLumens,
		MaxCandela:        it.MaxCandela,
		BeamDistanceM:     it.BeamDistanceM,
		RuntimeHighMin:    it.RuntimeHighMin,
		RuntimeMediumMin:  it.RuntimeMediumMin,
		ImpactResistanceM: it.ImpactResistanceM,
		WaterproofRating:  it.WaterproofRating,
		BatteryTypes:      it.BatteryTypes,
		USBCRechargeable:  it.USBCRechargeable,
		ProfileScores:     it.ProfileScores,
	}
}

func pageToResponse(p rankingsuc.Page) RankingsResponse {
	items := make([]RankingEntry, len(p.Entries))
	for i, e := range p.Entries {
		items[i] = RankingEntry{
			Rank:    e.Rank,
			Score:   e.Score,
			Profile: string(e.Profile),
			Flashlight: FlashlightSummary{
				ID:        e.Item.ID,
				Brand:     e.Item.Brand,
				Name:      e.Item.Name,
				Slug:      e.Item.Slug,
				ImageURL:  e.Item.ImageURL,
				AmazonURL: e.Item.AmazonURL,
			},
		}
	}
	return RankingsResponse{
		UseCase:    string(p.Profile),
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		Items:      items,
	}
}

func comparisonsToResponse(cs []rankingsuc.Comparison) CompareResponse {
	items := make([]CompareItem, len(cs))
	for i := range cs {
		items[i] = CompareItem{
			Flashlight: flashlightFromItem(&cs[i].Item),
			Scores:     profileScoresToMap(cs[i].Scores),
		}
	}
	return CompareResponse{Items: items}
}

func finderToResponse(f rankingsuc.FinderFilters, entries []rankingsuc.FinderEntry) FinderResponse {
	items := make([]FinderItem, len(entries))
	for i, e := range entries {
		items[i] = FinderItem{
			FlashlightID:  e.Item.ID,
			Brand:         e.Item.Brand,
			Name:          e.Item.Name,
			AmazonURL:     e.Item.AmazonURL,
			PriceUSD:      e.Item.PriceUSD,
			BeamDistanceM: e.Item.BeamDistanceM,
			TacticalScore: e.Tactical,
			ThrowScore:    e.Throw,
			ValueScore:    e.Value,
			FinderScore:   e.Score,
		}
	}
	return FinderResponse{
		Filters: FinderFilters{Budget: f.Budget, USBC: f.USBC, MinThrow: f.MinThrow},
		Items:   items,
	}
}

func profileScoresToMap(in map[scoring.Profile]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for p, v := range in {
		out[string(p)] = v
	}
	return out
}

func healthToResponse(rep healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(rep.Checks))
	for k, v := range rep.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(rep.Status), Checks: checks}
}
