// internal/cli/commands_test.go
package promptbench

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/mwiater/promptbench/internal/invoker"
	"github.com/mwiater/promptbench/internal/metrics"
	"github.com/mwiater/promptbench/internal/providers"
	"github.com/mwiater/promptbench/internal/report"
	"github.com/mwiater/promptbench/internal/runner"
)

func TestRunCommandPassesConfigAndInput(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: [m1, m2]\ntemperature: 0.4\n")

	var gotCfg *appconfig.Config
	var gotInput string
	orig := runBenchmark
	runBenchmark = func(ctx context.Context, cfg *appconfig.Config, inputPath string, out io.Writer) (runner.Result, error) {
		gotCfg = cfg
		gotInput = inputPath
		return runner.Result{}, nil
	}
	t.Cleanup(func() { runBenchmark = orig })

	if out, err := executeCommand(t, "--config", configPath, "run", "prompts/capital.txt"); err != nil {
		t.Fatalf("run error: %v\n%s", err, out)
	}
	if gotInput != "prompts/capital.txt" {
		t.Fatalf("unexpected input path: %q", gotInput)
	}
	if gotCfg == nil || strings.Join(gotCfg.ModelList, ",") != "m1,m2" || gotCfg.Temperature != 0.4 {
		t.Fatalf("unexpected config passed to runner: %+v", gotCfg)
	}
}

func TestRunCommandRejectsInvalidConfig(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: []\n")

	orig := runBenchmark
	runBenchmark = func(ctx context.Context, cfg *appconfig.Config, inputPath string, out io.Writer) (runner.Result, error) {
		t.Fatal("runner must not be called with an invalid configuration")
		return runner.Result{}, nil
	}
	t.Cleanup(func() { runBenchmark = orig })

	_, err := executeCommand(t, "--config", configPath, "run", "in.txt")
	if err == nil || !strings.Contains(err.Error(), "model_list") {
		t.Fatalf("expected model_list validation error, got %v", err)
	}
}

func TestRunCommandRequiresInput(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: [m1]\n")
	if _, err := executeCommand(t, "--config", configPath, "run"); err == nil {
		t.Fatal("expected error when input argument is missing")
	}
}

func TestShowConfigCommandOutput(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: [m1]\n")

	out, err := executeCommand(t, "--debug", "--config", configPath, "show", "config")
	if err != nil {
		t.Fatalf("show config error: %v", err)
	}
	if !strings.Contains(out, "Config file: "+configPath) {
		t.Fatalf("expected config file path in output, got %s", out)
	}
	if !strings.Contains(out, "Debug:           true") {
		t.Fatalf("expected debug in output, got %s", out)
	}
	if !strings.Contains(out, "Models:          m1") {
		t.Fatalf("expected models in output, got %s", out)
	}
}

func TestShowConfigWarnsWhenInvalid(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: []\n")

	out, err := executeCommand(t, "--config", configPath, "show", "config")
	if err != nil {
		t.Fatalf("show config should not fail on an invalid config: %v", err)
	}
	if !strings.Contains(out, "warning: invalid configuration") {
		t.Fatalf("expected validation warning, got %s", out)
	}
}

func TestShowConfigRaw(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: [raw-model]\n")

	out, err := executeCommand(t, "--config", configPath, "show", "config", "--raw")
	if err != nil {
		t.Fatalf("show config --raw error: %v", err)
	}
	if !strings.Contains(out, "raw-model") || !strings.Contains(out, "ModelList") {
		t.Fatalf("expected struct dump, got %s", out)
	}
}

func TestConfigInitWritesExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "openai.yml")

	out, err := executeCommand(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if !strings.Contains(out, "Wrote example configuration to "+path) {
		t.Fatalf("unexpected output: %s", out)
	}
	cfg, err := appconfig.Load(path)
	if err != nil {
		t.Fatalf("example should load: %v", err)
	}
	if len(cfg.ModelList) == 0 {
		t.Fatal("example should list models")
	}

	if _, err := executeCommand(t, "config", "init", path); err == nil {
		t.Fatal("expected refusal to overwrite without --force")
	}
	if _, err := executeCommand(t, "config", "init", path, "--force"); err != nil {
		t.Fatalf("config init --force error: %v", err)
	}
}

func TestReportRender(t *testing.T) {
	elapsed := 1.5
	prompt, completion, total := 3, 4, 7
	rep := report.Build([]invoker.CallResult{
		{Model: "m1", Response: "hello", ElapsedSeconds: &elapsed, PromptTokens: &prompt, CompletionTokens: &completion, TotalTokens: &total},
		invoker.Failed("m2", errors.New("boom")),
	}, "capital.txt", 0.7)

	dir := t.TempDir()
	exportPath, err := report.WriteJSON(dir, rep)
	if err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	outDir := filepath.Join(t.TempDir(), "rendered")
	out, err := executeCommand(t, "--outputDir", outDir, "report", "render", exportPath, "--write")
	if err != nil {
		t.Fatalf("report render error: %v", err)
	}
	if !strings.Contains(out, rep.String()) {
		t.Fatalf("expected rendered report in output, got %s", out)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".txt" {
		t.Fatalf("expected one text report in %s, got %v (%v)", outDir, entries, err)
	}
}

func TestReportRenderMissingFile(t *testing.T) {
	if _, err := executeCommand(t, "report", "render", filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatal("expected error for missing export")
	}
}

type listerStub struct {
	providers.CompleterFunc
	models []string
}

func (l listerStub) ListModels(ctx context.Context) ([]string, error) { return l.models, nil }

func TestListModels(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: [alpha, beta]\n")

	out, err := executeCommand(t, "--config", configPath, "list", "models")
	if err != nil {
		t.Fatalf("list models error: %v", err)
	}
	for _, want := range []string{"Configured models (provider: openai)", "1. alpha", "2. beta"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestListModelsRemote(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: [alpha, missing]\n")

	orig := newCompleter
	newCompleter = func(cfg *appconfig.Config) (providers.Completer, error) {
		return listerStub{models: []string{"zeta", "alpha"}}, nil
	}
	t.Cleanup(func() { newCompleter = orig })

	out, err := executeCommand(t, "--config", configPath, "list", "models", "--remote")
	if err != nil {
		t.Fatalf("list models --remote error: %v", err)
	}
	for _, want := range []string{"Models served by func", "* alpha", "  zeta", "Configured but not served: missing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "* alpha") > strings.Index(out, "  zeta") {
		t.Fatalf("expected remote models sorted:\n%s", out)
	}
}

func TestListModelsRemoteUnsupported(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: [alpha]\n")

	orig := newCompleter
	newCompleter = func(cfg *appconfig.Config) (providers.Completer, error) {
		return providers.CompleterFunc(func(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
			return providers.Completion{}, nil
		}), nil
	}
	t.Cleanup(func() { newCompleter = orig })

	_, err := executeCommand(t, "--config", configPath, "list", "models", "--remote")
	if err == nil || !strings.Contains(err.Error(), "cannot list models") {
		t.Fatalf("expected unsupported lister error, got %v", err)
	}
}

func TestListCommands(t *testing.T) {
	out, err := executeCommand(t, "list", "commands")
	if err != nil {
		t.Fatalf("list commands error: %v", err)
	}
	for _, want := range []string{"promptbench", "  promptbench run", "    promptbench report render", "    promptbench config init"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "completion") {
		t.Fatalf("completion commands should be filtered:\n%s", out)
	}
}

func TestShowMetrics(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "history.json")
	history, err := metrics.Load(historyPath)
	if err != nil {
		t.Fatalf("metrics.Load: %v", err)
	}
	elapsed := 2.0
	prompt, completion, total := 5, 15, 20
	history.RecordAll([]invoker.CallResult{
		{Model: "fast", Response: "ok", ElapsedSeconds: &elapsed, PromptTokens: &prompt, CompletionTokens: &completion, TotalTokens: &total},
		invoker.Failed("broken", errors.New("boom")),
	})
	if err := history.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	configPath := writeTempConfig(t, "model_list: [fast]\nmetrics_file: "+historyPath+"\n")
	out, err := executeCommand(t, "--config", configPath, "show", "metrics")
	if err != nil {
		t.Fatalf("show metrics error: %v", err)
	}
	for _, want := range []string{
		"Performance history: " + historyPath,
		"calls: ok=0 error=1",
		"calls: ok=1 error=0",
		"time:       avg 2.0s ± 0.0 (min 2.0s, max 2.0s)",
		"throughput: avg 10.0 tokens/s",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestShowMetricsWithoutFile(t *testing.T) {
	configPath := writeTempConfig(t, "model_list: [fast]\n")
	if _, err := executeCommand(t, "--config", configPath, "show", "metrics"); err == nil || !strings.Contains(err.Error(), "no metrics file configured") {
		t.Fatalf("expected missing metrics file error, got %v", err)
	}
}
