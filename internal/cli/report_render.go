// internal/cli/report_render.go
package promptbench

import (
	"fmt"

	"github.com/mwiater/promptbench/internal/report"
	"github.com/spf13/cobra"
)

// reportCmd represents the 'report' command group.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Group commands for working with saved results",
}

// reportRenderCmd implements 'report render <results.json>', which rebuilds
// the text report from a JSON export.
var reportRenderCmd = &cobra.Command{
	Use:   "render <results.json>",
	Short: "Render the text report from a JSON export",
	Long:  `The 'render' subcommand reads a JSON export written by 'run' (exports: [json]) and prints the text report. With --write the report is also saved to the output directory.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := report.LoadJSON(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, rep.String())

		if write, _ := cmd.Flags().GetBool("write"); write {
			dir := "."
			if cfg := GetConfig(); cfg != nil {
				dir = cfg.OutputDir
			}
			path, err := report.WriteText(dir, rep)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nReport: %s\n", path)
		}
		return nil
	},
}

func init() {
	reportRenderCmd.Flags().Bool("write", false, "also write the text report to the output directory")
	reportCmd.AddCommand(reportRenderCmd)
	rootCmd.AddCommand(reportCmd)
}
