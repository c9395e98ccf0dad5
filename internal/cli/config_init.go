// internal/cli/config_init.go
package promptbench

import (
	"fmt"

	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/spf13/cobra"
)

// configCmd represents the 'config' command group.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Group commands for managing configuration files",
}

// configInitCmd implements 'config init [path]', which writes a starter
// configuration file.
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Long:  `The 'init' subcommand writes an example YAML configuration to the given path (default: config/openai.yml). Existing files are kept unless --force is set.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appconfig.DefaultConfigPath
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if err := appconfig.WriteExample(path, force); err != nil {
			return err
		}
		if _, err := appconfig.Load(path); err != nil {
			return fmt.Errorf("example configuration does not load: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote example configuration to %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
