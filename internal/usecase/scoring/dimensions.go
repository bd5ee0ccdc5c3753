package scoring

import (
	"strings"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
)

// Fixed scores for partial or unknown information.
const (
	// UnknownPriceScore is the budget score of an item without a price.
	UnknownPriceScore = 0.0
	// CompatibleBatteryScore is the battery score of an item that runs on a
	// different cell the buyer can still use (e.g. an 18650 in a sleeved 21700 host).
	CompatibleBatteryScore = 40.0
	// UnknownBatteryScore is the battery score of an item with no listed battery types.
	UnknownBatteryScore = 20.0
)

// BudgetScore is 100 within budget and decays as budget/price beyond it.
func BudgetScore(item *catalog.Item, q preference.Query) float64 {
	if item.PriceUSD == nil || *item.PriceUSD <= 0 {
		return UnknownPriceScore
	}
	price := *item.PriceUSD
	if price <= q.BudgetUSD() {
		return 100
	}
	return clamp100(100 * q.BudgetUSD() / price)
}

// compatibleBatteries maps a preference to item cell codes that can still serve it.
// Every 21700 host counts for 18650: the catalog does not record sleeves.
var compatibleBatteries = map[preference.Battery][]string{
	preference.Battery18650:  {"21700", "cr123a"},
	preference.BatteryCR123A: {"18650", "16340"},
}

// BatteryMatchScore rates how well the item's cells match the preference.
func BatteryMatchScore(item *catalog.Item, q preference.Query) float64 {
	pref := q.Battery()
	if pref == preference.BatteryAny {
		return 100
	}

	codes := make([]string, 0, len(item.BatteryTypes))
	for _, b := range item.BatteryTypes {
		if c := canonicalBattery(b); c != "" {
			codes = append(codes, c)
		}
	}
	if len(codes) == 0 {
		return UnknownBatteryScore
	}

	for _, c := range codes {
		if c == string(pref) {
			return 100
		}
	}
	for _, c := range codes {
		for _, compat := range compatibleBatteries[pref] {
			if c == compat {
				return CompatibleBatteryScore
			}
		}
	}
	return 0
}

// canonicalBattery folds catalog spellings onto preference codes.
func canonicalBattery(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	switch c {
	case "cr123":
		return "cr123a"
	case "rcr123a", "rcr123":
		return "16340"
	case "built-in", "builtin", "integrated", "internal", "li-ion pack":
		return string(preference.BatteryProprietary)
	}
	return c
}

// Size bucket boundaries in millimeters.
const (
	pocketMaxMM  = 120.0
	compactMaxMM = 150.0
)

// Out-of-bucket size scoring: start at 90 and lose 2 points per millimeter.
const (
	sizeOutsideStart   = 90.0
	sizeDecayPerMM     = 2.0
	unknownLengthScore = 0.0
)

// SizeBucket returns the bucket a length falls in.
func SizeBucket(lengthMM float64) preference.Size {
	switch {
	case lengthMM < pocketMaxMM:
		return preference.SizePocket
	case lengthMM < compactMaxMM:
		return preference.SizeCompact
	default:
		return preference.SizeFullSize
	}
}

// SizeFitScore is 100 inside the wanted bucket and decays with the distance to it.
func SizeFitScore(item *catalog.Item, q preference.Query) float64 {
	want := q.Size()
	if want == preference.SizeAny {
		return 100
	}
	if item.LengthMM == nil || *item.LengthMM <= 0 {
		return unknownLengthScore
	}
	length := *item.LengthMM
	if SizeBucket(length) == want {
		return 100
	}

	var lo, hi float64
	switch want {
	case preference.SizePocket:
		lo, hi = 0, pocketMaxMM
	case preference.SizeCompact:
		lo, hi = pocketMaxMM, compactMaxMM
	case preference.SizeFullSize:
		lo, hi = compactMaxMM, 0
	}

	var distance float64
	switch {
	case length < lo:
		distance = lo - length
	case hi > 0 && length >= hi:
		distance = length - hi
	}
	return clamp100(sizeOutsideStart - sizeDecayPerMM*distance)
}
