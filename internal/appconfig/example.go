package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Example returns a starter configuration.
func Example() Config {
	cfg := Default()
	cfg.ModelList = []string{"gpt-4o-mini", "gpt-4.1-mini"}
	cfg.Exports = []string{ExportJSON}
	return cfg
}

// WriteExample writes the starter configuration to path as YAML. Existing
// files are left untouched unless overwrite is set.
func WriteExample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %q already exists", path)
		}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write example config: %w", err)
	}
	return nil
}
