package models

import (
	"fmt"
	"strings"
)

// FieldSpec describes one editable field of a section config.
type FieldSpec struct {
	Key       string      `json:"key"`
	Type      FieldType   `json:"type"`
	Required  bool        `json:"required"`
	MaxLength int         `json:"max_length,omitempty"`
	MaxItems  int         `json:"max_items,omitempty"`
	Options   []string    `json:"options,omitempty"`
	Fields    []FieldSpec `json:"fields,omitempty"` // for array/object items
}

// SectionDefinition is the editing schema for one section type.
type SectionDefinition struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []FieldSpec `json:"fields"`
}

// sectionRegistry lists every section type the page editor can place.
// Configs are validated against these specs on every write.
var sectionRegistry = map[string]SectionDefinition{
	"hero": {
		Type: "hero",
		Name: "Hero banner",
		Fields: []FieldSpec{
			{Key: "heading", Type: FieldTypeText, Required: true, MaxLength: 120},
			{Key: "subheading", Type: FieldTypeText, MaxLength: 250},
			{Key: "imageUrl", Type: FieldTypeImage},
			{Key: "buttonLabel", Type: FieldTypeText, MaxLength: 40},
			{Key: "buttonLink", Type: FieldTypeText, MaxLength: 500},
			{Key: "alignment", Type: FieldTypeSelect, Options: []string{"left", "center", "right"}},
		},
	},
	"product_grid": {
		Type: "product_grid",
		Name: "Product grid",
		Fields: []FieldSpec{
			{Key: "title", Type: FieldTypeText, MaxLength: 120},
			{Key: "columns", Type: FieldTypeNumber},
			{Key: "productIds", Type: FieldTypeArray, MaxItems: 24, Fields: []FieldSpec{
				{Key: "", Type: FieldTypeProduct},
			}},
			{Key: "showPrices", Type: FieldTypeBoolean},
		},
	},
	"rich_text": {
		Type: "rich_text",
		Name: "Rich text",
		Fields: []FieldSpec{
			{Key: "content", Type: FieldTypeText, Required: true, MaxLength: 20000},
		},
	},
	"image_banner": {
		Type: "image_banner",
		Name: "Image banner",
		Fields: []FieldSpec{
			{Key: "imageUrl", Type: FieldTypeImage, Required: true},
			{Key: "altText", Type: FieldTypeText, MaxLength: 250},
			{Key: "link", Type: FieldTypeText, MaxLength: 500},
		},
	},
	"faq": {
		Type: "faq",
		Name: "FAQ",
		Fields: []FieldSpec{
			{Key: "title", Type: FieldTypeText, MaxLength: 120},
			{Key: "items", Type: FieldTypeArray, Required: true, MaxItems: 50, Fields: []FieldSpec{
				{Key: "question", Type: FieldTypeText, Required: true, MaxLength: 250},
				{Key: "answer", Type: FieldTypeText, Required: true, MaxLength: 5000},
			}},
		},
	},
	"contact": {
		Type: "contact",
		Name: "Contact",
		Fields: []FieldSpec{
			{Key: "title", Type: FieldTypeText, MaxLength: 120},
			{Key: "email", Type: FieldTypeText, MaxLength: 100},
			{Key: "phone", Type: FieldTypeText, MaxLength: 20},
			{Key: "address", Type: FieldTypeText, MaxLength: 500},
			{Key: "showForm", Type: FieldTypeBoolean},
		},
	},
}

func GetSectionDefinition(sectionType string) (SectionDefinition, bool) {
	def, ok := sectionRegistry[sectionType]
	return def, ok
}

func ListSectionDefinitions() []SectionDefinition {
	defs := make([]SectionDefinition, 0, len(sectionRegistry))
	// fixed order for a stable API response
	for _, t := range []string{"hero", "product_grid", "rich_text", "image_banner", "faq", "contact"} {
		defs = append(defs, sectionRegistry[t])
	}
	return defs
}

// ValidateSectionConfig checks a config document against its section type's
// schema. Errors carry the full field path (config.items[2].question) so the
// editor can highlight the offending field. Unknown keys are rejected.
func ValidateSectionConfig(sectionType string, cfg map[string]interface{}) error {
	def, ok := sectionRegistry[sectionType]
	if !ok {
		return fmt.Errorf("unknown section type %q", sectionType)
	}
	return validateFields(def.Fields, cfg, "config")
}

func validateFields(specs []FieldSpec, cfg map[string]interface{}, path string) error {

	known := make(map[string]FieldSpec, len(specs))
	for _, spec := range specs {
		known[spec.Key] = spec
	}
	for key := range cfg {
		if _, ok := known[key]; !ok {
			return fmt.Errorf("%s.%s: unknown field", path, key)
		}
	}

	for _, spec := range specs {
		fieldPath := path + "." + spec.Key
		value, present := cfg[spec.Key]
		if !present || value == nil {
			if spec.Required {
				return fmt.Errorf("%s: required", fieldPath)
			}
			continue
		}
		if err := validateValue(spec, value, fieldPath); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(spec FieldSpec, value interface{}, path string) error {

	switch spec.Type {
	case FieldTypeText, FieldTypeImage:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: must be a string", path)
		}
		if spec.Required && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s: required", path)
		}
		if spec.MaxLength > 0 && len(s) > spec.MaxLength {
			return fmt.Errorf("%s: longer than %d characters", path, spec.MaxLength)
		}
	case FieldTypeNumber:
		// JSON numbers decode as float64
		switch value.(type) {
		case float64, int:
		default:
			return fmt.Errorf("%s: must be a number", path)
		}
	case FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s: must be a boolean", path)
		}
	case FieldTypeSelect:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: must be a string", path)
		}
		for _, option := range spec.Options {
			if s == option {
				return nil
			}
		}
		return fmt.Errorf("%s: must be one of %s", path, strings.Join(spec.Options, ", "))
	case FieldTypeProduct:
		// product references are ids
		switch v := value.(type) {
		case float64:
			if v <= 0 || v != float64(int(v)) {
				return fmt.Errorf("%s: must be a product id", path)
			}
		case int:
			if v <= 0 {
				return fmt.Errorf("%s: must be a product id", path)
			}
		default:
			return fmt.Errorf("%s: must be a product id", path)
		}
	case FieldTypeArray:
		items, ok := value.([]interface{})
		if !ok {
			return fmt.Errorf("%s: must be an array", path)
		}
		if spec.Required && len(items) == 0 {
			return fmt.Errorf("%s: required", path)
		}
		if spec.MaxItems > 0 && len(items) > spec.MaxItems {
			return fmt.Errorf("%s: more than %d items", path, spec.MaxItems)
		}
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if err := validateArrayItem(spec, item, itemPath); err != nil {
				return err
			}
		}
	case FieldTypeObject:
		obj, ok := value.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%s: must be an object", path)
		}
		if err := validateFields(spec.Fields, obj, path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%s: unsupported field type %q", path, spec.Type)
	}
	return nil
}

func validateArrayItem(spec FieldSpec, item interface{}, path string) error {

	// scalar item arrays declare a single keyless field spec
	if len(spec.Fields) == 1 && spec.Fields[0].Key == "" {
		return validateValue(spec.Fields[0], item, path)
	}

	obj, ok := item.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%s: must be an object", path)
	}
	return validateFields(spec.Fields, obj, path)
}
