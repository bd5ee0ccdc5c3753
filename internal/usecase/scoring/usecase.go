package scoring

import (
	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
)

// UseCaseScore blends physical attribute fit with category/tag fit.
const (
	attributeShare = 0.80
	tagShare       = 0.20
)

// Tag fit values.
const (
	tagExact   = 100
	tagRelated = 50
)

type attrWeighting struct {
	attr   attribute
	weight float64
}

// useCaseAttributes lists, per use case, which attributes contribute and in what
// proportion. Each row sums to 1. A "lower" attribute (weight, length) rewards
// smaller values.
//
//	edc:             runtime_medium .30, weight(lower) .25, lumens .20, durability .15, length(lower) .10
//	tactical:        candela .35, durability .25, runtime_high .15, beam .15, lumens .10
//	law-enforcement: candela .30, durability .25, runtime_high .20, beam .15, lumens .10
//	camping:         runtime_medium .35, lumens .30, durability .15, weight(lower) .10, runtime_high .10
//	search-rescue:   beam .35, candela .30, runtime_high .20, durability .15
//	weapon-mount:    durability .35, candela .30, length(lower) .20, weight(lower) .15
//	keychain:        weight(lower) .40, length(lower) .35, lumens .15, durability .10
var useCaseAttributes = map[preference.UseCase][]attrWeighting{
	preference.UseCaseEDC: {
		{attrRuntimeMedium, 0.30}, {attrWeight, 0.25}, {attrLumens, 0.20},
		{attrDurability, 0.15}, {attrLength, 0.10},
	},
	preference.UseCaseTactical: {
		{attrCandela, 0.35}, {attrDurability, 0.25}, {attrRuntimeHigh, 0.15},
		{attrBeam, 0.15}, {attrLumens, 0.10},
	},
	preference.UseCaseLawEnforcement: {
		{attrCandela, 0.30}, {attrDurability, 0.25}, {attrRuntimeHigh, 0.20},
		{attrBeam, 0.15}, {attrLumens, 0.10},
	},
	preference.UseCaseCamping: {
		{attrRuntimeMedium, 0.35}, {attrLumens, 0.30}, {attrDurability, 0.15},
		{attrWeight, 0.10}, {attrRuntimeHigh, 0.10},
	},
	preference.UseCaseSearchRescue: {
		{attrBeam, 0.35}, {attrCandela, 0.30}, {attrRuntimeHigh, 0.20}, {attrDurability, 0.15},
	},
	preference.UseCaseWeaponMount: {
		{attrDurability, 0.35}, {attrCandela, 0.30}, {attrLength, 0.20}, {attrWeight, 0.15},
	},
	preference.UseCaseKeychain: {
		{attrWeight, 0.40}, {attrLength, 0.35}, {attrLumens, 0.15}, {attrDurability, 0.10},
	},
}

// relatedUseCases earn partial tag credit for each other.
var relatedUseCases = map[preference.UseCase][]preference.UseCase{
	preference.UseCaseTactical:       {preference.UseCaseLawEnforcement, preference.UseCaseWeaponMount},
	preference.UseCaseLawEnforcement: {preference.UseCaseTactical, preference.UseCaseWeaponMount},
	preference.UseCaseWeaponMount:    {preference.UseCaseTactical, preference.UseCaseLawEnforcement},
	preference.UseCaseEDC:            {preference.UseCaseKeychain},
	preference.UseCaseKeychain:       {preference.UseCaseEDC},
	preference.UseCaseCamping:        {preference.UseCaseSearchRescue},
	preference.UseCaseSearchRescue:   {preference.UseCaseCamping},
}

// UseCaseScore rates how well item suits the query's intended use, 0..100.
// Missing attributes count as the least favorable value and never exclude the item.
func UseCaseScore(item *catalog.Item, q preference.Query) float64 {
	use := q.IntendedUse()
	weights, ok := useCaseAttributes[use]
	if !ok {
		weights = useCaseAttributes[preference.DefaultUseCase]
	}

	var fit float64
	for _, aw := range weights {
		fit += attributeValue(item, aw.attr, ipUnrated) * aw.weight
	}

	return clamp100(attributeShare*fit + tagShare*tagFit(item, use))
}

func tagFit(item *catalog.Item, use preference.UseCase) float64 {
	if item.HasTag(string(use)) {
		return tagExact
	}
	for _, rel := range relatedUseCases[use] {
		if item.HasTag(string(rel)) {
			return tagRelated
		}
	}
	return 0
}
