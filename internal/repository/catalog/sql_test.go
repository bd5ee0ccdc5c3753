package catalog

import (
	"errors"
	"testing"
)

func TestScanItem_FullRow(t *testing.T) {
	row := fakeRow{values: []any{
		int64(12), "Acme", "Beam One", "B1", "acme-beam-one",
		"tactical,edc", "https://img.example/1.jpg", "https://amzn.example/1",
		49.95,
		int64(1400), int64(9000), int64(190), int64(75), int64(240),
		62.0, 112.0, 1.5, "IPX8", true,
		"18650,CR123A",
		`{"tactical": 71.5, "edc": 64}`,
	}}

	item, err := scanItem(row)
	if err != nil {
		t.Fatalf("scanItem: %v", err)
	}
	if item.ID != 12 || item.Brand != "Acme" || item.Model != "B1" {
		t.Fatalf("unexpected identity: %+v", item)
	}
	if item.Category != "tactical" || len(item.Tags) != 2 {
		t.Fatalf("unexpected category %q tags %v", item.Category, item.Tags)
	}
	if item.MaxCandela == nil || *item.MaxCandela != 9000 {
		t.Fatalf("unexpected candela %v", item.MaxCandela)
	}
	if item.ImpactResistanceM == nil || *item.ImpactResistanceM != 1.5 {
		t.Fatalf("unexpected impact %v", item.ImpactResistanceM)
	}
	if len(item.BatteryTypes) != 2 || item.BatteryTypes[1] != "cr123a" {
		t.Fatalf("unexpected batteries %v", item.BatteryTypes)
	}
	if v, ok := item.ProfileScore("tactical"); !ok || v != 71.5 {
		t.Fatalf("unexpected tactical score %v %v", v, ok)
	}
	if item.USBCRechargeable == nil || !*item.USBCRechargeable {
		t.Fatalf("expected usb-c rechargeable, got %v", item.USBCRechargeable)
	}
}

func TestScanItem_NullColumns(t *testing.T) {
	row := fakeRow{values: []any{
		int64(3), "NoName", "Mystery", "", "mystery",
		nil, nil, nil,
		nil,
		nil, nil, nil, nil, nil,
		nil, nil, nil, nil, nil,
		nil,
		nil,
	}}

	item, err := scanItem(row)
	if err != nil {
		t.Fatalf("scanItem: %v", err)
	}
	if item.Category != "general" || item.Tags != nil {
		t.Fatalf("expected general category without tags, got %q %v", item.Category, item.Tags)
	}
	if item.PriceUSD != nil || item.MaxLumens != nil || item.LengthMM != nil {
		t.Fatal("expected unknown specs to stay nil")
	}
	if item.BatteryTypes != nil || item.ProfileScores != nil || item.USBCRechargeable != nil {
		t.Fatal("expected no batteries, no usb-c flag and no profile scores")
	}
}

func TestScanItem_Errors(t *testing.T) {
	if _, err := scanItem(fakeRow{err: errors.New("conn closed")}); err == nil {
		t.Fatal("expected scan error")
	}

	row := fakeRow{values: []any{
		int64(3), "X", "Y", "", "y",
		nil, nil, nil, nil,
		nil, nil, nil, nil, nil,
		nil, nil, nil, nil, nil, nil,
		"{broken",
	}}
	if _, err := scanItem(row); err == nil {
		t.Fatal("expected profile score decode error")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{",, ,", 0},
		{"a", 1},
		{"a, b ,c", 3},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); len(got) != tt.want {
			t.Errorf("splitList(%q) = %v, want %d entries", tt.in, got, tt.want)
		}
	}
}

func TestOpenPostgres_RequiresDSN(t *testing.T) {
	if _, err := OpenPostgres(""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
