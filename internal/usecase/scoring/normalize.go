package scoring

import (
	"math"
	"strings"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp100(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func normalizeHigherLinear(v, floor, ceiling float64) float64 {
	if floor <= 0 || ceiling <= floor {
		return 0
	}
	return clamp01((v-floor)/(ceiling-floor)) * 100
}

func normalizeHigherLog(v, floor, ceiling float64) float64 {
	if v <= 0 || floor <= 0 || ceiling <= floor {
		return 0
	}
	return clamp01((math.Log(v)-math.Log(floor))/(math.Log(ceiling)-math.Log(floor))) * 100
}

func normalizeLowerLinear(v, best, worst float64) float64 {
	if worst <= best {
		return 0
	}
	return (1 - clamp01((v-best)/(worst-best))) * 100
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// attribute is one normalized physical property of an item, scored 0..100.
type attribute string

const (
	attrLumens        attribute = "max_lumens"
	attrCandela       attribute = "max_candela"
	attrBeam          attribute = "beam_distance_m"
	attrRuntimeHigh   attribute = "runtime_high_min"
	attrRuntimeMedium attribute = "runtime_medium_min"
	attrWeight        attribute = "weight_g"
	attrLength        attribute = "length_mm"
	attrDurability    attribute = "durability"
	attrPrice         attribute = "price"
)

// Normalization ranges. Higher-is-better values scale on a log axis between
// floor and ceiling; lower-is-better values scale linearly between best and worst.
const (
	lumensFloor, lumensCeiling               = 100, 5000
	candelaFloor, candelaCeiling             = 1000, 120000
	beamFloor, beamCeiling                   = 60, 700
	runtimeHighFloor, runtimeHighCeiling     = 20, 300
	runtimeMediumFloor, runtimeMediumCeiling = 60, 900
	weightBest, weightWorst                  = 20, 400
	lengthBest, lengthWorst                  = 50, 250
	priceBest, priceWorst                    = 20, 300
)

// attributeValue returns the normalized value of attr. A missing or non-positive
// measurement scores 0. unratedIP is the IP component used when no waterproof
// rating is stated at all.
func attributeValue(item *catalog.Item, attr attribute, unratedIP float64) float64 {
	switch attr {
	case attrLumens:
		return higherLog(item.MaxLumens, lumensFloor, lumensCeiling)
	case attrCandela:
		return higherLog(item.MaxCandela, candelaFloor, candelaCeiling)
	case attrBeam:
		return higherLog(item.BeamDistanceM, beamFloor, beamCeiling)
	case attrRuntimeHigh:
		return higherLog(item.RuntimeHighMin, runtimeHighFloor, runtimeHighCeiling)
	case attrRuntimeMedium:
		return higherLog(item.RuntimeMediumMin, runtimeMediumFloor, runtimeMediumCeiling)
	case attrWeight:
		return lowerLinear(item.WeightG, weightBest, weightWorst)
	case attrLength:
		return lowerLinear(item.LengthMM, lengthBest, lengthWorst)
	case attrPrice:
		return lowerLinear(item.PriceUSD, priceBest, priceWorst)
	case attrDurability:
		return durabilityScore(item.WaterproofRating, item.ImpactResistanceM, unratedIP)
	}
	return 0
}

func higherLog(v *float64, floor, ceiling float64) float64 {
	if v == nil {
		return 0
	}
	return normalizeHigherLog(*v, floor, ceiling)
}

func lowerLinear(v *float64, best, worst float64) float64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return normalizeLowerLinear(*v, best, worst)
}

// IP components for the durability score.
const (
	ipUnrated  = 0  // no rating stated (least favorable)
	ipBaseline = 30 // a rating is stated but is below IPX4 or unrecognized
)

// durabilityScore blends ingress protection (65%) with drop resistance over 1..3 m (35%).
func durabilityScore(waterproof string, impact *float64, unratedIP float64) float64 {
	rating := strings.ToUpper(strings.TrimSpace(waterproof))

	ip := unratedIP
	switch rating {
	case "":
	case "IPX4", "IP54", "IP64":
		ip = 55
	case "IPX6", "IP66":
		ip = 70
	case "IPX7", "IP67":
		ip = 85
	case "IPX8", "IP68":
		ip = 95
	default:
		ip = ipBaseline
	}

	impactNorm := 0.0
	if impact != nil && *impact > 0 {
		impactNorm = normalizeHigherLinear(*impact, 1, 3)
	}
	return ip*0.65 + impactNorm*0.35
}
