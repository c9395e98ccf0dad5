package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mwiater/promptbench/internal/invoker"
)

// FormatFloat prints v in shortest round-trip form with at least one decimal
// place: 1 -> "1.0", 12.34 -> "12.34".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatOptionalFloat(v *float64, missing string) string {
	if v == nil {
		return missing
	}
	return FormatFloat(*v)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "None"
	}
	return strconv.Itoa(*v)
}

func header1(model string, temperature float64, elapsed *float64, status invoker.Status) string {
	temp := "NA"
	if !math.IsNaN(temperature) {
		temp = FormatFloat(temperature)
	}
	return fmt.Sprintf("MODEL: %s | params: temperature=%s | czas: %ss | STATUS: %s",
		model, temp, formatOptionalFloat(elapsed, "NA"), status)
}

func header2(stats Stats, r invoker.CallResult) string {
	throughput := "throughput: NA"
	if stats.Throughput != nil {
		throughput = fmt.Sprintf("throughput: %s tokens/s", FormatFloat(*stats.Throughput))
	}
	return fmt.Sprintf("długość: chars=%d, lines=%d | tokens: total=%s (prompt=%s, completion=%s) | %s",
		stats.Chars, stats.Lines,
		formatOptionalInt(r.TotalTokens),
		formatOptionalInt(r.PromptTokens),
		formatOptionalInt(r.CompletionTokens),
		throughput)
}

// Lines returns the summary block, one element per output line.
func (s Summary) Lines() []string {
	lines := []string{
		"=== SUMMARY ===",
		fmt.Sprintf("models_total: %d", s.Total),
		fmt.Sprintf("models_ok: %d", s.OK),
		fmt.Sprintf("models_error: %d", s.Error),
	}
	if t := s.Time; t != nil {
		lines = append(lines,
			fmt.Sprintf("time_min: %ss (model=%s)", FormatFloat(t.Min), t.Fastest),
			fmt.Sprintf("time_max: %ss (model=%s)", FormatFloat(t.Max), t.Slowest),
			fmt.Sprintf("time_avg: %ss", FormatFloat(t.Avg)),
		)
	}
	if t := s.Tokens; t != nil {
		lines = append(lines,
			fmt.Sprintf("tokens_min: %d (model=%s)", t.Min, t.Least),
			fmt.Sprintf("tokens_max: %d (model=%s)", t.Max, t.Most),
			fmt.Sprintf("tokens_avg: %s", FormatFloat(t.Avg)),
		)
	}
	if len(s.ErrorModels) > 0 {
		lines = append(lines, "error_models:")
		for _, m := range s.ErrorModels {
			lines = append(lines, "  - "+m)
		}
	}
	return lines
}

// Lines returns every line of the text report: each entry's two headers,
// body and a blank separator, then the summary.
func (r Report) Lines() []string {
	lines := make([]string, 0, len(r.Entries)*4+8)
	for _, e := range r.Entries {
		lines = append(lines, e.Header1, e.Header2, e.Body, "")
	}
	return append(lines, r.Summary.Lines()...)
}

// String renders the text report. Lines are joined with "\n" and there is no
// trailing newline.
func (r Report) String() string {
	return strings.Join(r.Lines(), "\n")
}
