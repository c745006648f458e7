package utils_test

import (
	"testing"
	"time"

	"github.com/mmdatafocus/storefront_backend/utils"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Summer Sale 2026", "summer-sale-2026"},
		{"  Trimmed  ", "trimmed"},
		{"Café & Bar!", "caf-bar"},
		{"--already--slugged--", "already-slugged"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := utils.Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"shopper@example.com", "a.b+tag@sub.domain.org"}
	invalid := []string{"", "no-at-sign", "missing@tld", "spaces in@example.com"}

	for _, email := range valid {
		if !utils.IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if utils.IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestUniqueSlice(t *testing.T) {
	got := utils.UniqueSlice([]string{"MM", "TH", "MM", "SG", "TH"})
	want := []string{"MM", "TH", "SG"}
	if len(got) != len(want) {
		t.Fatalf("UniqueSlice returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("UniqueSlice[%d] = %q, want %q (order must be preserved)", i, got[i], want[i])
		}
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 42
	if got := utils.DereferencePtr(&v); got != 42 {
		t.Errorf("DereferencePtr(&42) = %d, want 42", got)
	}
	if got := utils.DereferencePtr[int](nil); got != 0 {
		t.Errorf("DereferencePtr(nil) = %d, want 0", got)
	}
	if got := utils.DereferencePtr(nil, 7); got != 7 {
		t.Errorf("DereferencePtr(nil, 7) = %d, want 7", got)
	}
}

func TestPreviousWindow(t *testing.T) {
	from := time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	prevFrom, prevTo := utils.PreviousWindow(from, to)
	if !prevTo.Equal(from) {
		t.Errorf("previous window should end where the current one starts, got %s", prevTo)
	}
	if got := prevTo.Sub(prevFrom); got != to.Sub(from) {
		t.Errorf("previous window length = %s, want %s", got, to.Sub(from))
	}
}

func TestConvertToLocalTime(t *testing.T) {
	utc := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	local := utils.ConvertToLocalTime(utc, "Asia/Yangon")
	if _, offset := local.Zone(); offset != 23400 {
		t.Errorf("Asia/Yangon offset = %d, want 23400", offset)
	}

	// invalid zones fall back to the input
	if got := utils.ConvertToLocalTime(utc, "Not/AZone"); !got.Equal(utc) {
		t.Errorf("invalid zone should return the input time, got %s", got)
	}
}
