// Package catalog holds the read-only flashlight catalog as seen by the engine.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/goccy/go-json"
)

// Item is one flashlight from the external catalog. Optional specs are nil when unknown.
type Item struct {
	ID        int64
	Brand     string
	Name      string
	Model     string
	Slug      string
	Category  string
	Tags      []string
	ImageURL  string
	AmazonURL string

	PriceUSD          *float64
	WeightG           *float64
	LengthMM          *float64
	MaxLumens         *float64
	MaxCandela        *float64
	BeamDistanceM     *float64
	RuntimeHighMin    *float64
	RuntimeMediumMin  *float64
	ImpactResistanceM *float64
	WaterproofRating  string
	BatteryTypes      []string
	USBCRechargeable  *bool

	// ProfileScores holds precomputed batch scores keyed by profile slug (tactical, edc, ...).
	ProfileScores map[string]float64
}

// HasTag reports whether the item's category or tags contain tag (case-insensitive).
func (it *Item) HasTag(tag string) bool {
	if strings.EqualFold(it.Category, tag) {
		return true
	}
	for _, t := range it.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// SupportsBattery reports whether code is among the item's battery types.
func (it *Item) SupportsBattery(code string) bool {
	for _, b := range it.BatteryTypes {
		if strings.EqualFold(b, code) {
			return true
		}
	}
	return false
}

// ProfileScore returns the precomputed score for a profile, if the catalog supplied one.
func (it *Item) ProfileScore(profile string) (float64, bool) {
	v, ok := it.ProfileScores[profile]
	return v, ok
}

// Clone returns a deep copy so that the result shares no memory with it.
func (it *Item) Clone() Item {
	c := *it
	c.Tags = slices.Clone(it.Tags)
	c.BatteryTypes = slices.Clone(it.BatteryTypes)
	c.PriceUSD = clonePtr(it.PriceUSD)
	c.WeightG = clonePtr(it.WeightG)
	c.LengthMM = clonePtr(it.LengthMM)
	c.MaxLumens = clonePtr(it.MaxLumens)
	c.MaxCandela = clonePtr(it.MaxCandela)
	c.BeamDistanceM = clonePtr(it.BeamDistanceM)
	c.RuntimeHighMin = clonePtr(it.RuntimeHighMin)
	c.RuntimeMediumMin = clonePtr(it.RuntimeMediumMin)
	c.ImpactResistanceM = clonePtr(it.ImpactResistanceM)
	if it.USBCRechargeable != nil {
		v := *it.USBCRechargeable
		c.USBCRechargeable = &v
	}
	if it.ProfileScores != nil {
		c.ProfileScores = make(map[string]float64, len(it.ProfileScores))
		for k, v := range it.ProfileScores {
			c.ProfileScores[k] = v
		}
	}
	return c
}

// Float returns a pointer to v. Handy for building items by hand.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Snapshot is one consistent read of the catalog.
type Snapshot struct {
	Version string
	Items   []Item
}

// NewSnapshot builds a snapshot. When version is empty it is derived from the item contents,
// so two reads of an unchanged catalog share a version.
func NewSnapshot(version string, items []Item) Snapshot {
	if version == "" {
		version = Fingerprint(items)
	}
	return Snapshot{Version: version, Items: items}
}

// Fingerprint hashes the items into a short stable identifier. Any change to any
// item field changes it. It returns "" when the items cannot be encoded.
func Fingerprint(items []Item) string {
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:8])
}

// Lookup returns the items whose ids are in ids, ordered by ascending id.
// Unknown ids are skipped.
func (s Snapshot) Lookup(ids []int64) []Item {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]Item, 0, len(ids))
	for i := range s.Items {
		if _, ok := want[s.Items[i].ID]; ok {
			out = append(out, s.Items[i])
		}
	}
	slices.SortFunc(out, func(a, b Item) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}
