package models_test

import (
	"testing"

	"github.com/mmdatafocus/storefront_backend/models"
)

func TestCompositeCursorRoundTrip(t *testing.T) {
	cursor := models.EncodeCompositeCursor("2026-08-01 10:30:00", 42)

	value, id := models.DecodeCompositeCursor(&cursor)
	if value != "2026-08-01 10:30:00" || id != 42 {
		t.Errorf("DecodeCompositeCursor = (%q, %d), want (%q, 42)", value, id, "2026-08-01 10:30:00")
	}
}

func TestDecodeCompositeCursorBadInput(t *testing.T) {
	cases := []struct {
		name   string
		cursor *string
	}{
		{"nil cursor", nil},
		{"empty cursor", strPtr("")},
		{"not base64", strPtr("%%%not-base64%%%")},
		{"missing separator", strPtr(models.EncodeCursor("no-separator-here"))},
		{"non-numeric id", strPtr(models.EncodeCursor("value|abc"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value, id := models.DecodeCompositeCursor(tc.cursor)
			if value != "" || id != 0 {
				t.Errorf("DecodeCompositeCursor = (%q, %d), want empty result", value, id)
			}
		})
	}
}

func TestDecodeCursor(t *testing.T) {
	encoded := models.EncodeCursor("hello")
	decoded, err := models.DecodeCursor(&encoded)
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if decoded != "hello" {
		t.Errorf("DecodeCursor = %q, want %q", decoded, "hello")
	}

	if decoded, err := models.DecodeCursor(nil); err != nil || decoded != "" {
		t.Errorf("DecodeCursor(nil) = (%q, %v), want empty and no error", decoded, err)
	}

	bad := "%%%not-base64%%%"
	if _, err := models.DecodeCursor(&bad); err == nil {
		t.Error("DecodeCursor should fail on invalid base64")
	}
}

func strPtr(s string) *string { return &s }
