package models

import (
	"testing"

	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

func TestPickShippingZone(t *testing.T) {
	domestic := &ShippingZone{ID: 1, Name: "Domestic", Countries: "MM", IsActive: utils.NewTrue()}
	regional := &ShippingZone{ID: 2, Name: "Regional", Countries: "TH,SG,VN", IsActive: utils.NewTrue()}
	worldwide := &ShippingZone{ID: 3, Name: "Worldwide", Countries: "*", IsActive: utils.NewTrue()}
	inactive := &ShippingZone{ID: 4, Name: "Disabled", Countries: "JP", IsActive: utils.NewFalse()}
	zones := []*ShippingZone{worldwide, domestic, regional, inactive}

	cases := []struct {
		name    string
		country string
		wantId  int // 0 means nil
	}{
		{"explicit zone wins over catch-all", "MM", 1},
		{"multi-country zone", "SG", 2},
		{"lowercase input normalized", "th", 2},
		{"unlisted country falls to catch-all", "FR", 3},
		{"inactive zone never matches", "JP", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pickShippingZone(zones, tc.country)
			if tc.wantId == 0 {
				if got != nil {
					t.Fatalf("pickShippingZone(%q) = %q, want nil", tc.country, got.Name)
				}
				return
			}
			if got == nil || got.ID != tc.wantId {
				t.Errorf("pickShippingZone(%q) picked %v, want zone %d", tc.country, got, tc.wantId)
			}
		})
	}

	t.Run("no catch-all and no match", func(t *testing.T) {
		if got := pickShippingZone([]*ShippingZone{domestic}, "FR"); got != nil {
			t.Errorf("expected nil, got %q", got.Name)
		}
	})
}

func TestZoneServes(t *testing.T) {
	cases := []struct {
		name    string
		zone    *ShippingZone
		country string
		want    bool
	}{
		{"active zone covering country", &ShippingZone{Countries: "MM,TH", IsActive: utils.NewTrue()}, "MM", true},
		{"active catch-all", &ShippingZone{Countries: "*", IsActive: utils.NewTrue()}, "FR", true},
		{"deactivated zone stops serving its countries", &ShippingZone{Countries: "MM,TH", IsActive: utils.NewFalse()}, "MM", false},
		{"deactivated catch-all stops serving", &ShippingZone{Countries: "*", IsActive: utils.NewFalse()}, "FR", false},
		{"nil active flag treated as inactive", &ShippingZone{Countries: "MM"}, "MM", false},
		{"active zone not covering country", &ShippingZone{Countries: "MM", IsActive: utils.NewTrue()}, "SG", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := zoneServes(tc.zone, tc.country); got != tc.want {
				t.Errorf("zoneServes(%q, %q) = %v, want %v", tc.zone.Countries, tc.country, got, tc.want)
			}
		})
	}
}

func TestResolveRateAmount(t *testing.T) {
	freeOver := decimal.NewFromInt(100)
	rate := &ShippingRate{Name: "Standard", Amount: decimal.NewFromInt(8), FreeOverAmount: &freeOver}

	if got := resolveRateAmount(rate, decimal.NewFromInt(50)); !got.Equal(decimal.NewFromInt(8)) {
		t.Errorf("below threshold = %s, want 8", got)
	}
	if got := resolveRateAmount(rate, decimal.NewFromInt(100)); !got.IsZero() {
		t.Errorf("at threshold = %s, want 0", got)
	}
	if got := resolveRateAmount(rate, decimal.NewFromInt(250)); !got.IsZero() {
		t.Errorf("above threshold = %s, want 0", got)
	}

	noThreshold := &ShippingRate{Name: "Express", Amount: decimal.NewFromInt(20)}
	if got := resolveRateAmount(noThreshold, decimal.NewFromInt(10000)); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("no threshold = %s, want 20", got)
	}
}

func TestJoinCountries(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{[]string{"mm", " TH ", "MM", "sg"}, "MM,TH,SG"},
		{[]string{"*"}, "*"},
		{[]string{"", "  "}, ""},
	}
	for _, tc := range cases {
		if got := joinCountries(tc.in); got != tc.want {
			t.Errorf("joinCountries(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
