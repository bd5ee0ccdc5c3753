package scoring

import "github.com/kailas-cloud/lumenpick/internal/domain/catalog"

// Profile is a coarse catalog-wide ranking profile, independent of any buyer query.
type Profile string

// Ranking profiles.
const (
	ProfileTactical Profile = "tactical"
	ProfileEDC      Profile = "edc"
	ProfileValue    Profile = "value"
	ProfileThrow    Profile = "throw"
	ProfileFlood    Profile = "flood"
)

// Profiles lists every ranking profile.
func Profiles() []Profile {
	return []Profile{ProfileTactical, ProfileEDC, ProfileValue, ProfileThrow, ProfileFlood}
}

// Valid reports whether p is a known profile.
func (p Profile) Valid() bool {
	for _, v := range Profiles() {
		if p == v {
			return true
		}
	}
	return false
}

// ProfileScore returns the catalog's precomputed score for p when present,
// otherwise computes it from the item's specs.
func ProfileScore(item *catalog.Item, p Profile) float64 {
	if v, ok := item.ProfileScore(string(p)); ok {
		return clamp100(v)
	}
	return ComputeProfileScores(item)[p]
}

// ProfileScoresOf returns every profile score of item, preferring precomputed values.
func ProfileScoresOf(item *catalog.Item) map[Profile]float64 {
	computed := ComputeProfileScores(item)
	out := make(map[Profile]float64, len(computed))
	for _, p := range Profiles() {
		if v, ok := item.ProfileScore(string(p)); ok {
			out[p] = clamp100(v)
			continue
		}
		out[p] = computed[p]
	}
	return out
}

type weighted struct {
	value  float64
	weight float64
}

// ComputeProfileScores runs the batch profile formulas. Unlike the buyer-facing
// use-case score, a missing measurement is left out of the mean instead of
// counting as zero.
func ComputeProfileScores(item *catalog.Item) map[Profile]float64 {
	v := func(a attribute) float64 { return attributeValue(item, a, ipBaseline) }

	lumens, candela, beam := v(attrLumens), v(attrCandela), v(attrBeam)
	runtimeHigh, runtimeMedium := v(attrRuntimeHigh), v(attrRuntimeMedium)
	durability, price := v(attrDurability), v(attrPrice)

	throw := weightedMean(
		weighted{candela, 0.45}, weighted{beam, 0.30}, weighted{runtimeHigh, 0.15}, weighted{durability, 0.10},
	)
	flood := weightedMean(
		weighted{lumens, 0.50}, weighted{runtimeMedium, 0.25}, weighted{price, 0.15}, weighted{durability, 0.10},
	)
	tactical := weightedMean(
		weighted{candela, 0.30}, weighted{runtimeHigh, 0.20}, weighted{durability, 0.20},
		weighted{throw, 0.20}, weighted{price, 0.10},
	)
	edc := weightedMean(
		weighted{runtimeMedium, 0.30}, weighted{flood, 0.20}, weighted{durability, 0.15},
		weighted{lumens, 0.15}, weighted{price, 0.20},
	)
	performance := weightedMean(
		weighted{lumens, 0.35}, weighted{candela, 0.25}, weighted{runtimeHigh, 0.20}, weighted{durability, 0.20},
	)
	value := weightedMean(weighted{performance, 0.60}, weighted{price, 0.40})

	return map[Profile]float64{
		ProfileTactical: round3(tactical),
		ProfileEDC:      round3(edc),
		ProfileValue:    round3(value),
		ProfileThrow:    round3(throw),
		ProfileFlood:    round3(flood),
	}
}

// weightedMean averages the positive values, renormalizing over their weights.
func weightedMean(items ...weighted) float64 {
	var total, totalWeight float64
	for _, it := range items {
		if it.value <= 0 || it.weight <= 0 {
			continue
		}
		total += it.value * it.weight
		totalWeight += it.weight
	}
	if totalWeight == 0 {
		return 0
	}
	return total / totalWeight
}
