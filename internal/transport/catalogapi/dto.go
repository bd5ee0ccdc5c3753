package catalogapi

import (
	"strings"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
)

type snapshotResponse struct {
	Version string         `json:"version"`
	Items   []itemResponse `json:"items"`
}

type itemResponse struct {
	ID                int64              `json:"id"`
	Brand             string             `json:"brand"`
	Name              string             `json:"name"`
	Model             string             `json:"model"`
	Slug              string             `json:"slug"`
	Category          string             `json:"category"`
	Tags              []string           `json:"tags"`
	ImageURL          string             `json:"image_url"`
	AmazonURL         string             `json:"amazon_url"`
	PriceUSD          *float64           `json:"price_usd"`
	WeightG           *float64           `json:"weight_g"`
	LengthMM          *float64           `json:"length_mm"`
	MaxLumens         *float64           `json:"max_lumens"`
	MaxCandela        *float64           `json:"max_candela"`
	BeamDistanceM     *float64           `json:"beam_distance_m"`
	RuntimeHighMin    *float64           `json:"runtime_high_min"`
	RuntimeMediumMin  *float64           `json:"runtime_medium_min"`
	ImpactResistanceM *float64           `json:"impact_resistance_m"`
	WaterproofRating  string             `json:"waterproof_rating"`
	BatteryTypes      []string           `json:"battery_types"`
	USBCRechargeable  *bool              `json:"usb_c_rechargeable"`
	ProfileScores     map[string]float64 `json:"profile_scores"`
}

func (r *itemResponse) toDomain() catalog.Item {
	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = "general"
	}
	batteries := make([]string, 0, len(r.BatteryTypes))
	for _, b := range r.BatteryTypes {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			batteries = append(batteries, b)
		}
	}
	if len(batteries) == 0 {
		batteries = nil
	}

	return catalog.Item{
		ID:                r.ID,
		Brand:             r.Brand,
		Name:              r.Name,
		Model:             r.Model,
		Slug:              r.Slug,
		Category:          category,
		Tags:              r.Tags,
		ImageURL:          r.ImageURL,
		AmazonURL:         r.AmazonURL,
		PriceUSD:          r.PriceUSD,
		WeightG:           r.WeightG,
		LengthMM:          r.LengthMM,
		MaxLumens:         r.MaxLumens,
		MaxCandela:        r.MaxCandela,
		BeamDistanceM:     r.BeamDistanceM,
		RuntimeHighMin:    r.RuntimeHighMin,
		RuntimeMediumMin:  r.RuntimeMediumMin,
		ImpactResistanceM: r.ImpactResistanceM,
		WaterproofRating:  strings.TrimSpace(r.WaterproofRating),
		BatteryTypes:      batteries,
		USBCRechargeable:  r.USBCRechargeable,
		ProfileScores:     r.ProfileScores,
	}
}
