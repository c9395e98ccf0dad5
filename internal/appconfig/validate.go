package appconfig

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema describes a runnable configuration.
var configSchema = map[string]any{
	"type":     "object",
	"required": []any{"model_list"},
	"properties": map[string]any{
		"model_list": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "string", "minLength": 1},
		},
		"temperature":  map[string]any{"type": "number", "minimum": 0},
		"output_dir":   map[string]any{"type": "string", "minLength": 1},
		"provider":     map[string]any{"enum": []any{ProviderOpenAI, ProviderLlamaCpp}},
		"timeout":      map[string]any{"type": "integer", "minimum": 0},
		"metrics_file": map[string]any{"type": "string"},
		"exports": map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"enum": []any{ExportJSON, ExportCSV}},
		},
	},
}

// Validate checks cfg against the configuration schema.
func Validate(cfg Config) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(configSchema), gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(details, "; "))
}
