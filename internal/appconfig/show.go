package appconfig

import (
	"fmt"
	"io"
	"strings"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, cfg Config) {
	if cfg.ConfigPath == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults and flags).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", cfg.ConfigPath)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "(provider default)"
	}
	timeout := "none"
	if d := cfg.RequestTimeout(); d > 0 {
		timeout = d.String()
	}
	metricsFile := "disabled"
	if cfg.MetricsFile != "" {
		metricsFile = cfg.MetricsFile
	}
	exports := "none"
	if len(cfg.Exports) > 0 {
		exports = strings.Join(cfg.Exports, ", ")
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Models:          %s\n", strings.Join(cfg.ModelList, ", "))
	fmt.Fprintf(out, "  Temperature:     %v\n", cfg.Temperature)
	fmt.Fprintf(out, "  Provider:        %s\n", cfg.Provider)
	fmt.Fprintf(out, "  Base URL:        %s\n", baseURL)
	fmt.Fprintf(out, "  API key env:     %s\n", cfg.APIKeyEnv)
	fmt.Fprintf(out, "  Call timeout:    %s\n", timeout)
	fmt.Fprintf(out, "  Output dir:      %s\n", cfg.OutputDir)
	fmt.Fprintf(out, "  Exports:         %s\n", exports)
	fmt.Fprintf(out, "  Log file:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Metrics file:    %s\n", metricsFile)
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
}
