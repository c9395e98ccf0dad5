package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mwiater/promptbench/internal/invoker"
	"github.com/mwiater/promptbench/internal/logging"
	"github.com/mwiater/promptbench/internal/util"
)

const timestampLayout = "20060102_150405"

// utf8BOM lets spreadsheet software detect the encoding of CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one exported result, tagged with the input it answered.
type Record struct {
	PromptID string `json:"prompt_id"`
	invoker.CallResult
}

// Export is the JSON artifact of a run.
type Export struct {
	Source      string    `json:"source"`
	Temperature *float64  `json:"temperature"`
	GeneratedAt time.Time `json:"generated_at"`
	Results     []Record  `json:"results"`
}

// ArtifactPath returns the path of the artifact with the given extension:
// <dir>/<source stem>_<YYYYMMDD_HHMMSS>.<ext>.
func (r Report) ArtifactPath(dir, ext string) string {
	stem := util.Stem(r.Source)
	if stem == "" {
		stem = "report"
	}
	name := fmt.Sprintf("%s_%s.%s", stem, r.GeneratedAt.Format(timestampLayout), ext)
	return filepath.Join(dir, name)
}

// WriteText writes the text report into dir, creating it if needed, and
// returns the file path.
func WriteText(dir string, r Report) (string, error) {
	path := r.ArtifactPath(dir, "txt")
	if err := writeArtifact(path, []byte(r.String())); err != nil {
		return "", err
	}
	logging.LogEvent("report written to %s", path)
	return path, nil
}

// ToExport converts r into its JSON artifact form.
func (r Report) ToExport() Export {
	promptID := util.Stem(r.Source)
	records := make([]Record, 0, len(r.Entries))
	for _, res := range r.Results() {
		records = append(records, Record{PromptID: promptID, CallResult: res})
	}
	var temp *float64
	if !math.IsNaN(r.Temperature) {
		t := r.Temperature
		temp = &t
	}
	return Export{
		Source:      r.Source,
		Temperature: temp,
		GeneratedAt: r.GeneratedAt,
		Results:     records,
	}
}

// WriteJSON writes the raw results and run metadata as indented JSON.
func WriteJSON(dir string, r Report) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r.ToExport()); err != nil {
		return "", fmt.Errorf("error encoding results: %w", err)
	}

	path := r.ArtifactPath(dir, "json")
	if err := writeArtifact(path, buf.Bytes()); err != nil {
		return "", err
	}
	logging.LogEvent("results written to %s", path)
	return path, nil
}

// LoadJSON reads an artifact written by WriteJSON and rebuilds the report.
func LoadJSON(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("error reading results file: %w", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return Report{}, fmt.Errorf("error parsing results file %s: %w", path, err)
	}

	results := make([]invoker.CallResult, 0, len(export.Results))
	for _, rec := range export.Results {
		results = append(results, rec.CallResult)
	}

	temperature := math.NaN()
	if export.Temperature != nil {
		temperature = *export.Temperature
	}
	source := export.Source
	if source == "" {
		source = path
	}

	rep := Build(results, source, temperature)
	if !export.GeneratedAt.IsZero() {
		rep.GeneratedAt = export.GeneratedAt
	}
	return rep, nil
}

var csvHeader = []string{"model", "response", "time_s", "prompt_tokens", "completion_tokens", "total_tokens", "prompt_id"}

// WriteCSV writes the raw results as CSV with a UTF-8 byte order mark.
// Missing numeric values are left empty.
func WriteCSV(dir string, r Report) (string, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("error writing csv header: %w", err)
	}
	for _, rec := range r.ToExport().Results {
		row := []string{
			rec.Model,
			rec.Response,
			csvFloat(rec.ElapsedSeconds),
			csvInt(rec.PromptTokens),
			csvInt(rec.CompletionTokens),
			csvInt(rec.TotalTokens),
			rec.PromptID,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("error writing csv row for %s: %w", rec.Model, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error writing csv: %w", err)
	}

	path := r.ArtifactPath(dir, "csv")
	if err := writeArtifact(path, buf.Bytes()); err != nil {
		return "", err
	}
	logging.LogEvent("results written to %s", path)
	return path, nil
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}

func csvInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating results directory: %w", err)
	}
	if err := util.WriteFile(path, data); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}
