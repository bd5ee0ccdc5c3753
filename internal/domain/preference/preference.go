// Package preference models a buyer's stated intent as a canonical, immutable query.
package preference

import "strconv"

// UseCase is the intended use of the light.
type UseCase string

// Supported use cases.
const (
	UseCaseEDC            UseCase = "edc"
	UseCaseTactical       UseCase = "tactical"
	UseCaseLawEnforcement UseCase = "law-enforcement"
	UseCaseCamping        UseCase = "camping"
	UseCaseSearchRescue   UseCase = "search-rescue"
	UseCaseWeaponMount    UseCase = "weapon-mount"
	UseCaseKeychain       UseCase = "keychain"
)

// UseCases lists every supported use case in a fixed order.
func UseCases() []UseCase {
	return []UseCase{
		UseCaseEDC, UseCaseTactical, UseCaseLawEnforcement, UseCaseCamping,
		UseCaseSearchRescue, UseCaseWeaponMount, UseCaseKeychain,
	}
}

// Valid reports whether u is a supported use case.
func (u UseCase) Valid() bool {
	for _, v := range UseCases() {
		if u == v {
			return true
		}
	}
	return false
}

// Battery is a preferred cell format.
type Battery string

// Supported battery preferences.
const (
	BatteryAny         Battery = "any"
	Battery18650       Battery = "18650"
	Battery21700       Battery = "21700"
	BatteryCR123A      Battery = "cr123a"
	BatteryProprietary Battery = "proprietary"
)

// Valid reports whether b is a supported battery preference.
func (b Battery) Valid() bool {
	switch b {
	case BatteryAny, Battery18650, Battery21700, BatteryCR123A, BatteryProprietary:
		return true
	}
	return false
}

// Size is a length bucket constraint.
type Size string

// Supported size constraints.
const (
	SizeAny      Size = "any"
	SizePocket   Size = "pocket"
	SizeCompact  Size = "compact"
	SizeFullSize Size = "full-size"
)

// Valid reports whether s is a supported size constraint.
func (s Size) Valid() bool {
	switch s {
	case SizeAny, SizePocket, SizeCompact, SizeFullSize:
		return true
	}
	return false
}

// Defaults substituted for missing or unusable input.
const (
	DefaultUseCase   = UseCaseEDC
	DefaultBudgetUSD = 80.00
	DefaultBattery   = BatteryAny
	DefaultSize      = SizeAny
)

// Query is a canonical preference query (immutable value object).
type Query struct {
	intendedUse UseCase
	budgetUSD   float64
	battery     Battery
	size        Size
}

// Default returns the query produced from empty input.
func Default() Query {
	return Query{
		intendedUse: DefaultUseCase,
		budgetUSD:   DefaultBudgetUSD,
		battery:     DefaultBattery,
		size:        DefaultSize,
	}
}

// Reconstruct creates a Query without normalization (storage hydration).
func Reconstruct(use UseCase, budgetUSD float64, battery Battery, size Size) Query {
	return Query{intendedUse: use, budgetUSD: budgetUSD, battery: battery, size: size}
}

// IntendedUse returns the use case.
func (q Query) IntendedUse() UseCase { return q.intendedUse }

// BudgetUSD returns the budget in dollars, rounded to cents.
func (q Query) BudgetUSD() float64 { return q.budgetUSD }

// Battery returns the battery preference.
func (q Query) Battery() Battery { return q.battery }

// Size returns the size constraint.
func (q Query) Size() Size { return q.size }

// Key returns a canonical string form, equal for equal queries.
func (q Query) Key() string {
	return string(q.intendedUse) + "|" +
		strconv.FormatFloat(q.budgetUSD, 'f', 2, 64) + "|" +
		string(q.battery) + "|" +
		string(q.size)
}
