// Package report folds the results of a benchmark run into a human-readable
// comparison: one block per model followed by a cross-model summary.
package report

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mwiater/promptbench/internal/invoker"
	"github.com/mwiater/promptbench/internal/util"
)

// nowFn stamps new reports; swapped in tests.
var nowFn = time.Now

// Stats are the per-response figures shown in an entry's second header line.
type Stats struct {
	Chars      int
	Lines      int
	Throughput *float64
}

// Entry is the rendered block for one CallResult.
type Entry struct {
	Result  invoker.CallResult
	Status  invoker.Status
	Stats   Stats
	Header1 string
	Header2 string
	Body    string
}

// TimeStats summarizes elapsed seconds over successful calls.
type TimeStats struct {
	Min     float64
	Max     float64
	Avg     float64
	Fastest string
	Slowest string
}

// TokenStats summarizes total token counts over successful calls.
type TokenStats struct {
	Min   int
	Max   int
	Avg   float64
	Least string
	Most  string
}

// Summary is the cross-model section of the report. Time and Tokens are nil
// when no call succeeded.
type Summary struct {
	Total       int
	OK          int
	Error       int
	Time        *TimeStats
	Tokens      *TokenStats
	ErrorModels []string
}

// Report is the complete outcome of a run.
type Report struct {
	Source      string
	Temperature float64
	GeneratedAt time.Time
	Entries     []Entry
	Summary     Summary
}

// Build classifies results, computes per-entry statistics and the summary.
// Entries keep the order of results. A NaN temperature is rendered as NA.
func Build(results []invoker.CallResult, source string, temperature float64) Report {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, buildEntry(r, temperature))
	}
	return Report{
		Source:      source,
		Temperature: temperature,
		GeneratedAt: nowFn(),
		Entries:     entries,
		Summary:     summarize(entries),
	}
}

// ComputeStats returns the character count, line count and throughput of r.
func ComputeStats(r invoker.CallResult) Stats {
	stats := Stats{
		Chars: utf8.RuneCountInString(r.Response),
	}
	if r.Response != "" {
		stats.Lines = strings.Count(r.Response, "\n") + 1
	}
	if r.ElapsedSeconds != nil && r.TotalTokens != nil && *r.ElapsedSeconds > 0 {
		tps := util.Round2(float64(*r.TotalTokens) / *r.ElapsedSeconds)
		stats.Throughput = &tps
	}
	return stats
}

func buildEntry(r invoker.CallResult, temperature float64) Entry {
	e := Entry{
		Result: r,
		Status: r.Status(),
		Stats:  ComputeStats(r),
		Body:   r.Response,
	}
	e.Header1 = header1(r.Model, temperature, r.ElapsedSeconds, e.Status)
	e.Header2 = header2(e.Stats, r)
	return e
}

// summarize aggregates over entries. Ties on min and max go to the entry that
// comes first.
func summarize(entries []Entry) Summary {
	s := Summary{Total: len(entries)}

	var (
		timeSum   float64
		tokenSum  int
		timeStats *TimeStats
		tokStats  *TokenStats
	)
	for _, e := range entries {
		r := e.Result
		if e.Status == invoker.StatusError {
			s.Error++
			s.ErrorModels = append(s.ErrorModels, r.Model)
			continue
		}
		s.OK++

		elapsed := *r.ElapsedSeconds
		timeSum += elapsed
		if timeStats == nil {
			timeStats = &TimeStats{Min: elapsed, Max: elapsed, Fastest: r.Model, Slowest: r.Model}
		} else {
			if elapsed < timeStats.Min {
				timeStats.Min, timeStats.Fastest = elapsed, r.Model
			}
			if elapsed > timeStats.Max {
				timeStats.Max, timeStats.Slowest = elapsed, r.Model
			}
		}

		tokens := *r.TotalTokens
		tokenSum += tokens
		if tokStats == nil {
			tokStats = &TokenStats{Min: tokens, Max: tokens, Least: r.Model, Most: r.Model}
		} else {
			if tokens < tokStats.Min {
				tokStats.Min, tokStats.Least = tokens, r.Model
			}
			if tokens > tokStats.Max {
				tokStats.Max, tokStats.Most = tokens, r.Model
			}
		}
	}

	if s.OK > 0 {
		count := float64(s.OK)
		timeStats.Min = util.Round2(timeStats.Min)
		timeStats.Max = util.Round2(timeStats.Max)
		timeStats.Avg = util.Round2(timeSum / count)
		tokStats.Avg = util.Round2(float64(tokenSum) / count)
		s.Time = timeStats
		s.Tokens = tokStats
	}
	return s
}

// Results returns the CallResults the report was built from, in order.
func (r Report) Results() []invoker.CallResult {
	out := make([]invoker.CallResult, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Result)
	}
	return out
}
