// internal/appconfig/appconfig.go
// Package appconfig manages loading, validating and describing the benchmark configuration.
package appconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is the default path to the benchmark configuration file.
	DefaultConfigPath = "config/openai.yml"
	// legacyConfigPath is checked when the default path does not exist.
	legacyConfigPath = "openai.yml"
	// defaultTemperature is applied when the configuration omits a temperature.
	defaultTemperature = 0.7
	// defaultOutputDir is where report artifacts are written.
	defaultOutputDir = "results"
	// defaultAPIKeyEnv names the environment variable holding the provider API key.
	defaultAPIKeyEnv = "OPENAI_API_KEY"
	// defaultLogFile is the log file used when none is configured.
	defaultLogFile = "promptbench.log"
)

const (
	ProviderOpenAI   = "openai"
	ProviderLlamaCpp = "llamacpp"
)

const (
	ExportJSON = "json"
	ExportCSV  = "csv"
)

// Config represents the top-level benchmark configuration.
type Config struct {
	ModelList      []string `mapstructure:"model_list" yaml:"model_list" json:"model_list"`
	Temperature    float64  `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
	OutputDir      string   `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Provider       string   `mapstructure:"provider" yaml:"provider" json:"provider"`
	BaseURL        string   `mapstructure:"base_url" yaml:"base_url,omitempty" json:"base_url,omitempty"`
	APIKeyEnv      string   `mapstructure:"api_key_env" yaml:"api_key_env" json:"api_key_env"`
	TimeoutSeconds int      `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	Exports        []string `mapstructure:"exports" yaml:"exports,omitempty" json:"exports"`
	LogFile        string   `mapstructure:"log_file" yaml:"log_file,omitempty" json:"log_file,omitempty"`
	MetricsFile    string   `mapstructure:"metrics_file" yaml:"metrics_file,omitempty" json:"metrics_file,omitempty"`
	Debug          bool     `mapstructure:"debug" yaml:"debug" json:"debug"`
	ConfigPath     string   `mapstructure:"-" yaml:"-" json:"-"`
}

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{
		Temperature: defaultTemperature,
		OutputDir:   defaultOutputDir,
		Provider:    ProviderOpenAI,
		APIKeyEnv:   defaultAPIKeyEnv,
		LogFile:     defaultLogFile,
	}
}

// SetDefaults registers the default values on v so that flags, file values
// and defaults merge in viper's usual precedence.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("provider", d.Provider)
	v.SetDefault("api_key_env", d.APIKeyEnv)
	v.SetDefault("timeout", 0)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("debug", false)
}

// RequestTimeout returns the per-call deadline; zero means calls are not bounded.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := strings.TrimSpace(c.LogFile); path != "" {
		return path
	}
	return defaultLogFile
}

// APIKey resolves the provider API key from the configured environment variable.
func (c Config) APIKey() string {
	name := strings.TrimSpace(c.APIKeyEnv)
	if name == "" {
		name = defaultAPIKeyEnv
	}
	return os.Getenv(name)
}

// Materialize unmarshals and normalizes the configuration held by v without
// validating it.
func Materialize(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	cfg.normalize()
	return cfg, nil
}

// FromViper materializes, normalizes and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg, err := Materialize(v)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadConfig reads the configuration file at path into v. An empty path, or
// the default path, falls back to the legacy path when the default file does
// not exist. If no file is found and required is false, v is left with its
// defaults and bound flags.
func ReadConfig(v *viper.Viper, path string, required bool) error {
	candidates := []string{path}
	if path == "" || path == DefaultConfigPath {
		candidates = []string{DefaultConfigPath, legacyConfigPath}
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("could not read config file %q: %w", candidate, err)
		}
		v.SetConfigFile(candidate)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("could not read config file %q: %w", candidate, err)
		}
		return nil
	}

	if !required {
		return nil
	}
	if len(candidates) > 1 {
		return fmt.Errorf("no configuration file found (searched %q and %q): %w", DefaultConfigPath, legacyConfigPath, os.ErrNotExist)
	}
	return fmt.Errorf("no configuration file found at %q: %w", path, os.ErrNotExist)
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	if err := ReadConfig(v, path, true); err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

func (c *Config) normalize() {
	models := make([]string, 0, len(c.ModelList))
	for _, m := range c.ModelList {
		models = append(models, strings.TrimSpace(m))
	}
	c.ModelList = models
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "llama.cpp" {
		c.Provider = ProviderLlamaCpp
	}
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.MetricsFile = strings.TrimSpace(c.MetricsFile)
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = defaultOutputDir
	}
	for i, e := range c.Exports {
		c.Exports[i] = strings.ToLower(strings.TrimSpace(e))
	}
}
