package scoring

import (
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
)

func f(v float64) *float64 { return catalog.Float(v) }

// testCatalog is a small catalog covering every size bucket and the main cell formats.
func testCatalog() []catalog.Item {
	return []catalog.Item{
		{
			ID: 1, Brand: "Olight", Name: "Baton 3", Category: "edc", Tags: []string{"edc", "keychain"},
			PriceUSD: f(45), LengthMM: f(85), WeightG: f(53), MaxLumens: f(1200), MaxCandela: f(5000),
			BeamDistanceM: f(166), RuntimeHighMin: f(60), RuntimeMediumMin: f(420), WaterproofRating: "IPX8",
			ImpactResistanceM: f(1.5), BatteryTypes: []string{"proprietary"},
		},
		{
			ID: 2, Brand: "Fenix", Name: "PD36R Pro", Category: "tactical", Tags: []string{"tactical", "edc"},
			PriceUSD: f(120), LengthMM: f(141), WeightG: f(170), MaxLumens: f(2800), MaxCandela: f(22500),
			BeamDistanceM: f(300), RuntimeHighMin: f(210), RuntimeMediumMin: f(720), WaterproofRating: "IP68",
			ImpactResistanceM: f(2), BatteryTypes: []string{"21700"},
		},
		{
			ID: 3, Brand: "Streamlight", Name: "ProTac HL-X", Category: "tactical",
			Tags: []string{"tactical", "law-enforcement"},
			PriceUSD: f(80), LengthMM: f(162), WeightG: f(167), MaxLumens: f(1000), MaxCandela: f(20000),
			BeamDistanceM: f(283), RuntimeHighMin: f(90), RuntimeMediumMin: f(300), WaterproofRating: "IPX7",
			ImpactResistanceM: f(2), BatteryTypes: []string{"18650", "CR123A"},
		},
		{
			ID: 4, Brand: "Nitecore", Name: "NU25", Category: "camping", Tags: []string{"camping"},
			PriceUSD: f(37), LengthMM: f(55), WeightG: f(56), MaxLumens: f(400),
			RuntimeMediumMin: f(480), WaterproofRating: "IP66", BatteryTypes: []string{"built-in"},
		},
		{
			ID: 5, Brand: "Acebeam", Name: "L35", Category: "search-rescue", Tags: []string{"search-rescue"},
			PriceUSD: f(110), LengthMM: f(147), WeightG: f(215), MaxLumens: f(5000), MaxCandela: f(45000),
			BeamDistanceM: f(430), RuntimeHighMin: f(150), WaterproofRating: "IP68",
			ImpactResistanceM: f(1.5), BatteryTypes: []string{"21700"},
		},
		{
			ID: 6, Brand: "Generic", Name: "Mystery Light",
		},
	}
}

func query(use preference.UseCase, budget float64, battery preference.Battery, size preference.Size) preference.Query {
	return preference.Reconstruct(use, budget, battery, size)
}
