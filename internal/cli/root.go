// internal/cli/root.go
package promptbench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/mwiater/promptbench/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// flagKeys maps persistent flags to their configuration keys.
var flagKeys = map[string]string{
	"debug":       "debug",
	"logFile":     "log_file",
	"outputDir":   "output_dir",
	"temperature": "temperature",
	"models":      "model_list",
	"provider":    "provider",
	"baseURL":     "base_url",
	"timeout":     "timeout",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "promptbench",
	Short:        "promptbench: send one prompt to many models and compare latency and token usage",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(".env"); err != nil {
			return err
		}
		if err := ensureConfigLoaded(cmd.Flags().Changed("config")); err != nil {
			return err
		}

		cfg, err := appconfig.Materialize(viper.GetViper())
		if err != nil {
			return err
		}
		currentConfig = &cfg

		logging.SetDebug(cfg.Debug)
		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the command context.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	appconfig.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/openai.yml)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().String("outputDir", "", "directory for reports and exports")
	rootCmd.PersistentFlags().Float64("temperature", 0.7, "sampling temperature sent with every call")
	rootCmd.PersistentFlags().StringSlice("models", nil, "comma-separated models to benchmark (overrides model_list)")
	rootCmd.PersistentFlags().String("provider", "", "provider type: openai or llamacpp")
	rootCmd.PersistentFlags().String("baseURL", "", "provider base URL")
	rootCmd.PersistentFlags().Int("timeout", 0, "per-call deadline in seconds (0 = none)")

	for flag, key := range flagKeys {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

// ensureConfigLoaded reads the config file. A missing file is only an error
// when the path was given explicitly.
func ensureConfigLoaded(explicit bool) error {
	if err := appconfig.ReadConfig(viper.GetViper(), cfgFile, explicit); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// loadDotEnv loads environment variables from path when the file exists.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
