package models_test

import (
	"strings"
	"testing"

	"github.com/mmdatafocus/storefront_backend/models"
)

func TestListSectionDefinitionsStableOrder(t *testing.T) {
	defs := models.ListSectionDefinitions()
	want := []string{"hero", "product_grid", "rich_text", "image_banner", "faq", "contact"}
	if len(defs) != len(want) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(want))
	}
	for i, def := range defs {
		if def.Type != want[i] {
			t.Errorf("definitions[%d].Type = %q, want %q", i, def.Type, want[i])
		}
	}
}

func TestValidateSectionConfig(t *testing.T) {
	cases := []struct {
		name        string
		sectionType string
		cfg         map[string]interface{}
		wantErr     string // empty means valid
	}{
		{
			name:        "valid hero",
			sectionType: "hero",
			cfg: map[string]interface{}{
				"heading":   "Big Summer Sale",
				"alignment": "center",
			},
		},
		{
			name:        "unknown section type",
			sectionType: "carousel",
			cfg:         map[string]interface{}{},
			wantErr:     "unknown section type",
		},
		{
			name:        "missing required field",
			sectionType: "hero",
			cfg:         map[string]interface{}{"subheading": "no heading"},
			wantErr:     "config.heading: required",
		},
		{
			name:        "unknown field rejected",
			sectionType: "hero",
			cfg:         map[string]interface{}{"heading": "x", "surprise": true},
			wantErr:     "config.surprise: unknown field",
		},
		{
			name:        "over max length",
			sectionType: "hero",
			cfg:         map[string]interface{}{"heading": strings.Repeat("x", 121)},
			wantErr:     "config.heading: longer than 120",
		},
		{
			name:        "select outside options",
			sectionType: "hero",
			cfg:         map[string]interface{}{"heading": "x", "alignment": "diagonal"},
			wantErr:     "config.alignment: must be one of",
		},
		{
			name:        "wrong scalar type",
			sectionType: "hero",
			cfg:         map[string]interface{}{"heading": 5},
			wantErr:     "config.heading: must be a string",
		},
		{
			name:        "nested array item path",
			sectionType: "faq",
			cfg: map[string]interface{}{
				"items": []interface{}{
					map[string]interface{}{"question": "Q1?", "answer": "A1"},
					map[string]interface{}{"question": "Q2?"},
				},
			},
			wantErr: "config.items[1].answer: required",
		},
		{
			name:        "product id array",
			sectionType: "product_grid",
			cfg: map[string]interface{}{
				"productIds": []interface{}{float64(3), float64(7)},
				"showPrices": true,
			},
		},
		{
			name:        "bad product id",
			sectionType: "product_grid",
			cfg: map[string]interface{}{
				"productIds": []interface{}{float64(0)},
			},
			wantErr: "config.productIds[0]: must be a product id",
		},
		{
			name:        "required empty array",
			sectionType: "faq",
			cfg:         map[string]interface{}{"items": []interface{}{}},
			wantErr:     "config.items: required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := models.ValidateSectionConfig(tc.sectionType, tc.cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tc.wantErr)
			}
		})
	}
}
