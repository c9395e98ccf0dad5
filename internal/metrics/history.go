// internal/metrics/history.go

// Package metrics keeps a per-model performance history across benchmark
// runs in a single JSON file.
package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mwiater/promptbench/internal/invoker"
	"github.com/mwiater/promptbench/internal/logging"
)

var nowFn = time.Now

// History collects and persists performance metrics for models.
type History struct {
	mutex    sync.Mutex
	metrics  map[string]*ModelMetrics
	filePath string
}

// Load reads the history stored at path. A missing file yields an empty
// history that will be created on Save.
func Load(path string) (*History, error) {
	h := &History{
		metrics:  make(map[string]*ModelMetrics),
		filePath: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return h, nil
		}
		return nil, fmt.Errorf("error reading metrics file: %w", err)
	}

	var metricsSlice []*ModelMetrics
	if err := json.Unmarshal(data, &metricsSlice); err != nil {
		return nil, fmt.Errorf("error parsing metrics file %s: %w", path, err)
	}
	for _, m := range metricsSlice {
		if m == nil || m.ModelName == "" {
			continue
		}
		h.metrics[m.ModelName] = m
	}
	return h, nil
}

// Save writes the history to its file, sorted by model name.
func (h *History) Save() error {
	models := h.Models()
	data, err := json.MarshalIndent(models, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding metrics: %w", err)
	}
	if dir := filepath.Dir(h.filePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating metrics directory: %w", err)
		}
	}
	if err := os.WriteFile(h.filePath, data, 0o644); err != nil {
		return fmt.Errorf("error writing metrics file: %w", err)
	}
	logging.LogEvent("[METRICS] saved %d models to %s", len(models), h.filePath)
	return nil
}

// Models returns the recorded models sorted by name.
func (h *History) Models() []*ModelMetrics {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	out := make([]*ModelMetrics, 0, len(h.metrics))
	for _, m := range h.metrics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelName < out[j].ModelName })
	return out
}

// Record folds one benchmark result into the model's running statistics.
// Failed calls only increment the error count.
func (h *History) Record(result invoker.CallResult) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	modelMetrics, exists := h.metrics[result.Model]
	if !exists {
		modelMetrics = &ModelMetrics{ModelName: result.Model}
		h.metrics[result.Model] = modelMetrics
	}
	modelMetrics.LastUpdatedUTC = nowFn().UTC()

	if result.IsError() {
		modelMetrics.Errors++
		return
	}

	updateStats(&modelMetrics.OverallStats, result)

	prompt := 0
	if result.PromptTokens != nil {
		prompt = *result.PromptTokens
	}
	bucket := getBucket(prompt)
	for i := range modelMetrics.PerformanceBuckets {
		b := &modelMetrics.PerformanceBuckets[i]
		if b.Dimension == "prompt_tokens" && b.Bucket == bucket {
			updateStats(&b.Stats, result)
			return
		}
	}
	newBucket := PerformanceBucket{Dimension: "prompt_tokens", Bucket: bucket}
	updateStats(&newBucket.Stats, result)
	modelMetrics.PerformanceBuckets = append(modelMetrics.PerformanceBuckets, newBucket)
}

// RecordAll records every result of a run.
func (h *History) RecordAll(results []invoker.CallResult) {
	for _, r := range results {
		h.Record(r)
	}
}

// updateStats updates the running statistics with one successful result.
func updateStats(stats *RunningAggregatedStats, r invoker.CallResult) {
	stats.TotalRequests++

	elapsed := *r.ElapsedSeconds
	updateRunningStat(&stats.ElapsedSeconds, elapsed)
	if elapsed > 0 {
		updateRunningStat(&stats.TokensPerSecond, float64(*r.TotalTokens)/elapsed)
	}
	if r.PromptTokens != nil {
		updateRunningStat(&stats.PromptTokens, float64(*r.PromptTokens))
	}
	if r.CompletionTokens != nil {
		updateRunningStat(&stats.CompletionTokens, float64(*r.CompletionTokens))
	}
}

// updateRunningStat updates a single running statistic using Welford's online algorithm.
func updateRunningStat(rs *RunningStat, value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}

// getBucket determines the performance bucket for a given number of prompt tokens.
func getBucket(promptTokens int) string {
	switch {
	case promptTokens <= 256:
		return "0-256"
	case promptTokens <= 1024:
		return "257-1024"
	case promptTokens <= 4096:
		return "1025-4096"
	case promptTokens <= 8192:
		return "4097-8192"
	default:
		return "8192+"
	}
}
