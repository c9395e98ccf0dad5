package invoker

import (
	"strings"
	"time"

	"github.com/mwiater/promptbench/internal/providers"
	"github.com/mwiater/promptbench/internal/util"
)

// ErrorPrefix starts the Response of every failed call.
const ErrorPrefix = "Error: "

// errorMarker is what classification looks for. A genuine model response
// that starts with it is reported as an error.
const errorMarker = "Error:"

// Status is the classification of a CallResult.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

// CallResult is the normalized outcome of one model invocation. Numeric
// fields are nil when the call failed; they are never partially populated by
// the Invoker.
type CallResult struct {
	Model            string   `json:"model"`
	Response         string   `json:"response"`
	ElapsedSeconds   *float64 `json:"time_s"`
	PromptTokens     *int     `json:"prompt_tokens"`
	CompletionTokens *int     `json:"completion_tokens"`
	TotalTokens      *int     `json:"total_tokens"`
}

// Succeeded builds the result of a completed call. The text is trimmed and
// the elapsed time is rounded to hundredths of a second.
func Succeeded(model, text string, elapsed time.Duration, usage providers.Usage) CallResult {
	seconds := util.Round2(elapsed.Seconds())
	prompt, completion, total := usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens
	return CallResult{
		Model:            model,
		Response:         strings.TrimSpace(text),
		ElapsedSeconds:   &seconds,
		PromptTokens:     &prompt,
		CompletionTokens: &completion,
		TotalTokens:      &total,
	}
}

// Failed builds the result of a call that did not complete.
func Failed(model string, err error) CallResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return CallResult{
		Model:    model,
		Response: ErrorPrefix + msg,
	}
}

// IsError reports whether r counts as a failed call: timing or total tokens
// are missing, or the response carries the error marker.
func (r CallResult) IsError() bool {
	return r.ElapsedSeconds == nil ||
		r.TotalTokens == nil ||
		strings.HasPrefix(r.Response, errorMarker)
}

// Status returns StatusError or StatusOK according to IsError.
func (r CallResult) Status() Status {
	if r.IsError() {
		return StatusError
	}
	return StatusOK
}
