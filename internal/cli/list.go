// internal/cli/list.go
package promptbench

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/promptbench/internal/providerfactory"
	"github.com/mwiater/promptbench/internal/providers"
	"github.com/spf13/cobra"
)

var newCompleter = providerfactory.NewCompleter

// listCmd represents the 'list' command group.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing resources",
	Long:  `The 'list' command groups subcommands that list models and commands.`,
}

// listModelsCmd implements 'list models', which prints the configured models
// and, with --remote, the models the provider endpoint serves.
var listModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the configured models",
	Long:  `The 'models' subcommand lists model_list from the configuration (default: config/openai.yml). With --remote it also queries the provider and marks which configured models it serves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return errors.New("configuration not loaded")
		}
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Configured models (provider: %s)", cfg.Provider)))
		if len(cfg.ModelList) == 0 {
			fmt.Fprintln(out, faintStyle.Render("  (none)"))
		}
		for i, m := range cfg.ModelList {
			fmt.Fprintf(out, "  %2d. %s\n", i+1, modelStyle.Render(m))
		}

		if remote, _ := cmd.Flags().GetBool("remote"); !remote {
			return nil
		}

		provider, err := newCompleter(cfg)
		if err != nil {
			return fmt.Errorf("error creating provider: %w", err)
		}
		defer provider.Close()

		lister, ok := provider.(providers.ModelLister)
		if !ok {
			return fmt.Errorf("provider %s cannot list models", provider.Name())
		}
		available, err := lister.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing models: %w", err)
		}
		printRemoteModels(out, provider.Name(), available, cfg.ModelList)
		return nil
	},
}

func printRemoteModels(out io.Writer, source string, available, configured []string) {
	served := make(map[string]bool, len(available))
	for _, m := range available {
		served[m] = true
	}
	sorted := append([]string(nil), available...)
	sort.Strings(sorted)

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Models served by %s", source)))
	inConfig := make(map[string]bool, len(configured))
	for _, m := range configured {
		inConfig[m] = true
	}
	for _, m := range sorted {
		marker := " "
		if inConfig[m] {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, m)
	}

	var missing []string
	for _, m := range configured {
		if !served[m] {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, warningStyle.Render("Configured but not served: "+strings.Join(missing, ", ")))
	}
}

// commandsCmd implements 'list commands', which prints the available
// commands and subcommands in a hierarchical, indented, two-column format.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Long:  `The 'commands' subcommand lists all commands and subcommands in a hierarchical, indented format, with the command path in the first column and its short description in the second column.`,
	Run: func(cmd *cobra.Command, args []string) {
		commandData := collectCommandData(rootCmd, "", "")
		filtered := make([]commandInfo, 0, len(commandData))
		for _, data := range commandData {
			if strings.Contains(data.Path, "completion") || strings.Contains(data.Path, "help") {
				continue
			}
			filtered = append(filtered, data)
		}
		listCommands(cmd.OutOrStdout(), filtered)
	},
}

func init() {
	listModelsCmd.Flags().Bool("remote", false, "also query the provider for the models it serves")
	listCmd.AddCommand(listModelsCmd)
	listCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(listCmd)
}

type commandInfo struct {
	Path        string
	Description string
}

// collectCommandData walks the command tree and returns a flattened slice of
// path/description pairs.
func collectCommandData(cmd *cobra.Command, currentPath string, indent string) []commandInfo {
	var allData []commandInfo

	fullPath := currentPath + cmd.Name()
	if currentPath != "" {
		fullPath = currentPath + " " + cmd.Name()
	}

	allData = append(allData, commandInfo{
		Path:        indent + fullPath,
		Description: cmd.Short,
	})

	for _, subCmd := range cmd.Commands() {
		allData = append(allData, collectCommandData(subCmd, fullPath, indent+"  ")...)
	}

	return allData
}

func listCommands(out io.Writer, data []commandInfo) {
	width := 0
	for _, d := range data {
		if w := lipgloss.Width(d.Path); w > width {
			width = w
		}
	}
	for _, d := range data {
		padding := strings.Repeat(" ", width+4-lipgloss.Width(d.Path))
		fmt.Fprintln(out, d.Path+padding+faintStyle.Render(d.Description))
	}
}
