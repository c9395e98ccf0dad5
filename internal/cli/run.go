// internal/cli/run.go
package promptbench

import (
	"errors"

	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/mwiater/promptbench/internal/runner"
	"github.com/spf13/cobra"
)

var runBenchmark = runner.Run

// runCmd implements 'run <input>', which sends the input file to every
// configured model and writes the comparison report.
var runCmd = &cobra.Command{
	Use:   "run <input.txt>",
	Short: "Benchmark all configured models on one input file",
	Long: `The 'run' command sends the text of the input file to every model in model_list, one call at a time,
and writes a report named <input>_<YYYYMMDD_HHMMSS>.txt to the output directory. A model that fails is
recorded as an ERROR block; the run always completes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return errors.New("configuration not loaded")
		}
		if err := appconfig.Validate(*cfg); err != nil {
			return err
		}
		_, err := runBenchmark(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
