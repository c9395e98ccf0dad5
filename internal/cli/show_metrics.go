// internal/cli/show_metrics.go
package promptbench

import (
	"errors"
	"fmt"
	"io"

	"github.com/mwiater/promptbench/internal/metrics"
	"github.com/mwiater/promptbench/internal/report"
	"github.com/mwiater/promptbench/internal/util"
	"github.com/spf13/cobra"
)

// showMetricsCmd implements 'show metrics', which summarizes the per-model
// history accumulated across runs.
var showMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show per-model performance history",
	Long:  `Show the running statistics recorded in metrics_file across all previous runs. Use --file to read a different history file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			if cfg := GetConfig(); cfg != nil {
				path = cfg.MetricsFile
			}
		}
		if path == "" {
			return errors.New("no metrics file configured: set metrics_file or pass --file")
		}

		history, err := metrics.Load(path)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), path, history.Models())
		return nil
	},
}

func printHistory(out io.Writer, path string, models []*metrics.ModelMetrics) {
	fmt.Fprintln(out, titleStyle.Render("Performance history: "+path))
	if len(models) == 0 {
		fmt.Fprintln(out, faintStyle.Render("  (no runs recorded)"))
		return
	}
	for _, m := range models {
		s := m.OverallStats
		fmt.Fprintf(out, "  %s\n", modelStyle.Render(m.ModelName))
		fmt.Fprintf(out, "    calls: ok=%d error=%d   last: %s\n", s.TotalRequests, m.Errors, m.LastUpdatedUTC.Format("2006-01-02 15:04:05"))
		if s.TotalRequests == 0 {
			continue
		}
		fmt.Fprintf(out, "    time:       avg %ss ± %s (min %ss, max %ss)\n",
			formatStat(s.ElapsedSeconds.Mean), formatStat(s.ElapsedSeconds.StdDev()),
			formatStat(s.ElapsedSeconds.Min), formatStat(s.ElapsedSeconds.Max))
		fmt.Fprintf(out, "    throughput: avg %s tokens/s (min %s, max %s)\n",
			formatStat(s.TokensPerSecond.Mean), formatStat(s.TokensPerSecond.Min), formatStat(s.TokensPerSecond.Max))
		fmt.Fprintf(out, "    tokens:     prompt avg %s, completion avg %s\n",
			formatStat(s.PromptTokens.Mean), formatStat(s.CompletionTokens.Mean))
	}
}

func formatStat(v float64) string {
	return report.FormatFloat(util.Round2(v))
}

func init() {
	showMetricsCmd.Flags().String("file", "", "history file to read (defaults to metrics_file)")
	showCmd.AddCommand(showMetricsCmd)
}
