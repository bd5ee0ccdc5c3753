package preference

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Raw is untyped input as decoded from a JSON body, a form or a query string.
// Each field may be nil, a string, a number or a json.Number.
type Raw struct {
	IntendedUse       any
	BudgetUSD         any
	BatteryPreference any
	SizeConstraint    any
}

// Field names reported by NormalizeWithReport.
const (
	FieldIntendedUse       = "intended_use"
	FieldBudgetUSD         = "budget_usd"
	FieldBatteryPreference = "battery_preference"
	FieldSizeConstraint    = "size_constraint"
)

// Spelling variants of enum values. Synonyms are deliberately absent: an
// unrecognized value falls back to the default rather than a guessed intent.
var batteryAliases = map[string]Battery{
	"cr123":      BatteryCR123A,
	"built-in":   BatteryProprietary,
	"builtin":    BatteryProprietary,
	"integrated": BatteryProprietary,
}

var sizeAliases = map[string]Size{
	"fullsize": SizeFullSize,
}

// Normalize turns raw input into a canonical Query. It never fails: anything
// missing or unusable is replaced by its default.
func Normalize(raw Raw) Query {
	q, _ := NormalizeWithReport(raw)
	return q
}

// NormalizeWithReport is Normalize that also lists the fields that fell back to a default.
func NormalizeWithReport(raw Raw) (Query, []string) {
	var defaulted []string

	use, ok := normalizeUseCase(raw.IntendedUse)
	if !ok {
		use = DefaultUseCase
		defaulted = append(defaulted, FieldIntendedUse)
	}

	budget, ok := normalizeBudget(raw.BudgetUSD)
	if !ok {
		budget = DefaultBudgetUSD
		defaulted = append(defaulted, FieldBudgetUSD)
	}

	battery, ok := normalizeBattery(raw.BatteryPreference)
	if !ok {
		battery = DefaultBattery
		defaulted = append(defaulted, FieldBatteryPreference)
	}

	size, ok := normalizeSize(raw.SizeConstraint)
	if !ok {
		size = DefaultSize
		defaulted = append(defaulted, FieldSizeConstraint)
	}

	return Query{intendedUse: use, budgetUSD: budget, battery: battery, size: size}, defaulted
}

func normalizeUseCase(v any) (UseCase, bool) {
	s := canonicalToken(v)
	u := UseCase(s)
	return u, u.Valid()
}

func normalizeBattery(v any) (Battery, bool) {
	s := canonicalToken(v)
	if b := Battery(s); b.Valid() {
		return b, true
	}
	b, ok := batteryAliases[s]
	return b, ok
}

func normalizeSize(v any) (Size, bool) {
	s := canonicalToken(v)
	if sz := Size(s); sz.Valid() {
		return sz, true
	}
	sz, ok := sizeAliases[s]
	return sz, ok
}

// normalizeBudget parses v as a positive dollar amount rounded to cents.
func normalizeBudget(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	rounded := math.Round(f*100) / 100
	if rounded <= 0 || math.IsInf(rounded, 0) {
		return 0, false
	}
	return rounded, true
}

// canonicalToken lower-cases a string value and folds spaces and underscores into hyphens.
func canonicalToken(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return ""
	}
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}
