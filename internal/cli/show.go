// internal/cli/show.go
package promptbench

import (
	"errors"

	"github.com/k0kubun/pp"
	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/spf13/cobra"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying resources",
	Long:  `The 'show' command groups subcommands that display resources or information related to promptbench.`,
}

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the YAML config is loaded properly and overridden by flags accordingly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return errors.New("configuration not loaded")
		}
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			_, err := pp.Fprintln(cmd.OutOrStdout(), *cfg)
			return err
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), *cfg)
		if err := appconfig.Validate(*cfg); err != nil {
			cmd.PrintErrf("\nwarning: %v\n", err)
		}
		return nil
	},
}

func init() {
	showConfigCmd.Flags().Bool("raw", false, "dump the materialized configuration struct")
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
