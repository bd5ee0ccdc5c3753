package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
products:
  - brand: Acme
    name: Beam One
    slug: acme-beam-one
    code: B1
    asin: B000TEST01
    price_usd: 49.95
    images:
      - url: https://img.example/b1.jpg
    use_cases: [EDC, keychain]
    specs:
      max_lumens: 1400
      max_candela: 9000
      beam_distance_m: 190
      runtime_high_min: 75
      runtime_500_min: 240
      weight_g: 62
      length_mm: 112
      waterproof_rating: " IPX8 "
      impact_resistance_m: 1.5
      battery_type: "18650"
      recharge_type: USB-C
  - id: 40
    brand: Bolt
    name: Tower
    specs:
      max_lumens: 0
      battery_type: "21700,CR123A"
      recharge_type: magnetic
      usb_c_rechargeable: true
    profile_scores:
      throw: 88.5
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

// fakeRow feeds fixed values into Scan destinations.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		assign(d, r.values[i])
	}
	return nil
}

func assign(dest, v any) {
	switch d := dest.(type) {
	case *int64:
		*d = v.(int64)
	case *string:
		*d = v.(string)
	case interface{ Scan(any) error }:
		_ = d.Scan(v)
	}
}
