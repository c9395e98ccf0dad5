// Package runner drives a benchmark run: it sends one input text to every
// configured model in order and writes the resulting report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/mwiater/promptbench/internal/invoker"
	"github.com/mwiater/promptbench/internal/logging"
	"github.com/mwiater/promptbench/internal/metrics"
	"github.com/mwiater/promptbench/internal/providerfactory"
	"github.com/mwiater/promptbench/internal/providers"
	"github.com/mwiater/promptbench/internal/report"
)

var (
	newCompleter = providerfactory.NewCompleter
	writeTextFn  = report.WriteText

	exporters = map[string]func(string, report.Report) (string, error){
		appconfig.ExportJSON: report.WriteJSON,
		appconfig.ExportCSV:  report.WriteCSV,
	}

	successfulResult = color.New(color.FgGreen).SprintFunc()
	failedResult     = color.New(color.FgRed).SprintFunc()
)

// ErrEmptyInput is returned when the input file holds only whitespace.
var ErrEmptyInput = errors.New("input file is empty")

// Result describes a finished run.
type Result struct {
	Report     report.Report
	ReportPath string
	Exports    []string
}

// ReadInput returns the trimmed contents of the input file.
func ReadInput(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("input file does not exist: %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("input path is not a regular file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading input file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyInput, path)
	}
	return text, nil
}

// Run benchmarks every model in cfg.ModelList against the text of inputPath,
// one call at a time. Progress is printed to out. Individual model failures
// never abort the run; only input, provider setup and artifact errors do.
func Run(ctx context.Context, cfg *appconfig.Config, inputPath string, out io.Writer) (Result, error) {
	if cfg == nil {
		return Result{}, errors.New("configuration is nil")
	}
	if len(cfg.ModelList) == 0 {
		return Result{}, errors.New("no models configured: set model_list or --models")
	}
	if out == nil {
		out = io.Discard
	}

	prompt, err := ReadInput(inputPath)
	if err != nil {
		return Result{}, err
	}

	provider, err := newCompleter(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("error creating provider: %w", err)
	}
	defer provider.Close()

	fmt.Fprintf(out, "Input file: %s\n", inputPath)
	fmt.Fprintf(out, "Models: %d\n", len(cfg.ModelList))
	fmt.Fprintf(out, "Testing models: %s\n", strings.Join(cfg.ModelList, ", "))
	logging.FileEvent("benchmark started: input=%s models=%s provider=%s", inputPath, strings.Join(cfg.ModelList, ","), provider.Name())

	results := callModels(ctx, provider, cfg, prompt, out)

	rep := report.Build(results, inputPath, cfg.Temperature)
	reportPath, err := writeTextFn(cfg.OutputDir, rep)
	if err != nil {
		return Result{}, fmt.Errorf("error writing report: %w", err)
	}

	res := Result{Report: rep, ReportPath: reportPath}
	for _, format := range cfg.Exports {
		export, ok := exporters[format]
		if !ok {
			return res, fmt.Errorf("unsupported export format %q", format)
		}
		path, err := export(cfg.OutputDir, rep)
		if err != nil {
			return res, fmt.Errorf("error writing %s export: %w", format, err)
		}
		res.Exports = append(res.Exports, path)
	}

	if cfg.MetricsFile != "" {
		if err := recordHistory(cfg.MetricsFile, results); err != nil {
			logging.LogEvent("warning: metrics history not updated: %v", err)
		}
	}

	fmt.Fprintf(out, "\nCompleted %d tests (1 text × %d models).\n", len(results), len(cfg.ModelList))
	fmt.Fprintf(out, "Report: %s\n", reportPath)
	for _, path := range res.Exports {
		fmt.Fprintf(out, "Export: %s\n", path)
	}
	return res, nil
}

func callModels(ctx context.Context, provider providers.Completer, cfg *appconfig.Config, prompt string, out io.Writer) []invoker.CallResult {
	iv := invoker.New(provider, invoker.WithTimeout(cfg.RequestTimeout()))

	results := make([]invoker.CallResult, 0, len(cfg.ModelList))
	for _, model := range cfg.ModelList {
		fmt.Fprintf(out, "\nModel: %s ...", model)
		res := iv.Invoke(ctx, model, prompt, cfg.Temperature)
		results = append(results, res)

		if res.ElapsedSeconds != nil {
			fmt.Fprintf(out, " %s\n", successfulResult(fmt.Sprintf("OK (%ss)", report.FormatFloat(*res.ElapsedSeconds))))
		} else {
			fmt.Fprintf(out, " %s\n", failedResult("X"))
		}
		logging.FileEvent("model %s: %s", model, res.Status())
	}
	return results
}

// recordHistory folds the run into the per-model history file at path.
func recordHistory(path string, results []invoker.CallResult) error {
	history, err := metrics.Load(path)
	if err != nil {
		return err
	}
	history.RecordAll(results)
	return history.Save()
}
