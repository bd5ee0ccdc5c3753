package run

import (
	"time"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
	domrun "github.com/kailas-cloud/lumenpick/internal/domain/run"
)

// schemaVersion tags the stored document layout, independent of the algorithm version.
const schemaVersion = 1

// runDoc is the persisted form of a run.
type runDoc struct {
	Schema            int            `json:"schema"`
	RunID             int64          `json:"run_id"`
	CreatedAt         time.Time      `json:"created_at"`
	IntendedUse       string         `json:"intended_use"`
	BudgetUSD         float64        `json:"budget_usd"`
	BatteryPreference string         `json:"battery_preference"`
	SizeConstraint    string         `json:"size_constraint"`
	AlgorithmVersion  string         `json:"algorithm_version"`
	TopResults        []candidateDoc `json:"top_results"`
}

type candidateDoc struct {
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

	UseCaseScore float64 `json:"use_case_score"`
	BudgetScore  float64 `json:"budget_score"`
	BatteryScore float64 `json:"battery_match_score"`
	SizeScore    float64 `json:"size_fit_score"`
	OverallScore float64 `json:"overall_score"`
}

func runToDoc(r domrun.Run) runDoc {
	q := r.Query()
	results := r.TopResults()
	docs := make([]candidateDoc, len(results))
	for i, c := range results {
		docs[i] = candidateToDoc(c)
	}
	return runDoc{
		Schema:            schemaVersion,
		RunID:             r.ID(),
		CreatedAt:         r.CreatedAt(),
		IntendedUse:       string(q.IntendedUse()),
		BudgetUSD:         q.BudgetUSD(),
		BatteryPreference: string(q.Battery()),
		SizeConstraint:    string(q.Size()),
		AlgorithmVersion:  r.AlgorithmVersion(),
		TopResults:        docs,
	}
}

func candidateToDoc(c domrun.Candidate) candidateDoc {
	it := c.Item()
	s := c.Scores()
	return candidateDoc{
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
		UseCaseScore:      s.UseCase,
		BudgetScore:       s.Budget,
		BatteryScore:      s.Battery,
		SizeScore:         s.Size,
		OverallScore:      s.Overall,
	}
}

func docToRun(d runDoc) domrun.Run {
	results := make([]domrun.Candidate, len(d.TopResults))
	for i := range d.TopResults {
		results[i] = docToCandidate(&d.TopResults[i])
	}
	q := preference.Reconstruct(
		preference.UseCase(d.IntendedUse),
		d.BudgetUSD,
		preference.Battery(d.BatteryPreference),
		preference.Size(d.SizeConstraint),
	)
	return domrun.New(d.RunID, d.CreatedAt, q, d.AlgorithmVersion, results)
}

func docToCandidate(d *candidateDoc) domrun.Candidate {
	item := catalog.Item{
		ID:                d.ID,
		Brand:             d.Brand,
		Name:              d.Name,
		Model:             d.Model,
		Slug:              d.Slug,
		Category:          d.Category,
		Tags:              d.Tags,
		ImageURL:          d.ImageURL,
		AmazonURL:         d.AmazonURL,
		PriceUSD:          d.PriceUSD,
		WeightG:           d.WeightG,
		LengthMM:          d.LengthMM,
		MaxLumens:         d.MaxLumens,
		MaxCandela:        d.MaxCandela,
		BeamDistanceM:     d.BeamDistanceM,
		RuntimeHighMin:    d.RuntimeHighMin,
		RuntimeMediumMin:  d.RuntimeMediumMin,
		ImpactResistanceM: d.ImpactResistanceM,
		WaterproofRating:  d.WaterproofRating,
		BatteryTypes:      d.BatteryTypes,
		USBCRechargeable:  d.USBCRechargeable,
		ProfileScores:     d.ProfileScores,
	}
	return domrun.NewCandidate(item, domrun.Scores{
		UseCase: d.UseCaseScore,
		Budget:  d.BudgetScore,
		Battery: d.BatteryScore,
		Size:    d.SizeScore,
		Overall: d.OverallScore,
	})
}
