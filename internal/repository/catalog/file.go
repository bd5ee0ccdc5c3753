package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
)

type fileCatalog struct {
	Products []fileProduct `yaml:"products"`
}

type fileProduct struct {
	ID            int64              `yaml:"id"`
	Brand         string             `yaml:"brand"`
	Name          string             `yaml:"name"`
	Slug          string             `yaml:"slug"`
	Code          string             `yaml:"code"`
	ASIN          string             `yaml:"asin"`
	AmazonURL     string             `yaml:"amazon_url"`
	PriceUSD      *float64           `yaml:"price_usd"`
	Images        []fileImage        `yaml:"images"`
	Specs         fileSpecs          `yaml:"specs"`
	UseCases      []string           `yaml:"use_cases"`
	ProfileScores map[string]float64 `yaml:"profile_scores"`
}

type fileImage struct {
	URL string `yaml:"url"`
}

type fileSpecs struct {
	MaxLumens         *float64 `yaml:"max_lumens"`
	MaxCandela        *float64 `yaml:"max_candela"`
	BeamDistanceM     *float64 `yaml:"beam_distance_m"`
	RuntimeHighMin    *float64 `yaml:"runtime_high_min"`
	RuntimeMediumMin  *float64 `yaml:"runtime_medium_min"`
	Runtime500Min     *float64 `yaml:"runtime_500_min"`
	WeightG           *float64 `yaml:"weight_g"`
	LengthMM          *float64 `yaml:"length_mm"`
	WaterproofRating  string   `yaml:"waterproof_rating"`
	ImpactResistanceM *float64 `yaml:"impact_resistance_m"`
	BatteryType       string   `yaml:"battery_type"`
	RechargeType      string   `yaml:"recharge_type"`
	USBCRechargeable  *bool    `yaml:"usb_c_rechargeable"`
}

// FileSource serves a catalog from a YAML file. The file is re-read when its
// modification time changes.
type FileSource struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	cached  catalog.Snapshot
	loaded  bool
}

// NewFileSource creates a source for the YAML catalog at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source in metrics and logs.
func (s *FileSource) Name() string { return "file" }

// Ping checks that the catalog file is readable.
func (s *FileSource) Ping(_ context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("stat catalog file: %w", err)
	}
	return nil
}

// Snapshot returns the parsed catalog.
func (s *FileSource) Snapshot(_ context.Context) (catalog.Snapshot, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("stat catalog file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && info.ModTime().Equal(s.modTime) {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("read catalog file: %w", err)
	}
	snap, err := parseCatalog(data)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("parse catalog file %s: %w", s.path, err)
	}

	s.cached, s.modTime, s.loaded = snap, info.ModTime(), true
	return snap, nil
}

func parseCatalog(data []byte) (catalog.Snapshot, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("unmarshal: %w", err)
	}

	seen := make(map[int64]int, len(fc.Products))
	items := make([]catalog.Item, 0, len(fc.Products))
	for i := range fc.Products {
		item := fc.Products[i].toItem(int64(i + 1))
		if prev, dup := seen[item.ID]; dup {
			return catalog.Snapshot{}, fmt.Errorf("products %d and %d share id %d", prev+1, i+1, item.ID)
		}
		seen[item.ID] = i
		items = append(items, item)
	}
	return catalog.NewSnapshot("", items), nil
}

func (p *fileProduct) toItem(defaultID int64) catalog.Item {
	id := p.ID
	if id <= 0 {
		id = defaultID
	}

	item := catalog.Item{
		ID:                id,
		Brand:             p.Brand,
		Name:              p.Name,
		Model:             p.Code,
		Slug:              p.Slug,
		Category:          "general",
		AmazonURL:         p.AmazonURL,
		PriceUSD:          positive(p.PriceUSD),
		MaxLumens:         positive(p.Specs.MaxLumens),
		MaxCandela:        positive(p.Specs.MaxCandela),
		BeamDistanceM:     positive(p.Specs.BeamDistanceM),
		RuntimeHighMin:    positive(p.Specs.RuntimeHighMin),
		RuntimeMediumMin:  positive(p.Specs.RuntimeMediumMin),
		WeightG:           positive(p.Specs.WeightG),
		LengthMM:          positive(p.Specs.LengthMM),
		ImpactResistanceM: positive(p.Specs.ImpactResistanceM),
		WaterproofRating:  strings.TrimSpace(p.Specs.WaterproofRating),
		ProfileScores:     p.ProfileScores,
	}
	if item.RuntimeMediumMin == nil {
		item.RuntimeMediumMin = positive(p.Specs.Runtime500Min)
	}
	if item.AmazonURL == "" && p.ASIN != "" {
		item.AmazonURL = "https://www.amazon.com/dp/" + strings.TrimSpace(p.ASIN)
	}
	if len(p.Images) > 0 {
		item.ImageURL = p.Images[0].URL
	}
	for _, uc := range p.UseCases {
		if uc = strings.ToLower(strings.TrimSpace(uc)); uc != "" {
			item.Tags = append(item.Tags, uc)
		}
	}
	if len(item.Tags) > 0 {
		item.Category = item.Tags[0]
	}
	item.BatteryTypes = splitList(strings.ToLower(p.Specs.BatteryType))
	item.USBCRechargeable = p.Specs.usbC()
	return item
}

// usbC prefers the explicit flag and otherwise derives it from recharge_type
// (usb-c, magnetic, none).
func (s *fileSpecs) usbC() *bool {
	if s.USBCRechargeable != nil {
		return catalog.Bool(*s.USBCRechargeable)
	}
	switch strings.ToLower(strings.TrimSpace(s.RechargeType)) {
	case "":
		return nil
	case "usb-c":
		return catalog.Bool(true)
	default:
		return catalog.Bool(false)
	}
}

// positive treats absent and non-positive specs as unknown.
func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return catalog.Float(*v)
}
