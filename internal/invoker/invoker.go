// Package invoker performs one benchmark call per model and normalizes the
// outcome into a CallResult. Invoke never returns an error: every failure of
// the provider becomes an error-marked result.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mwiater/promptbench/internal/logging"
	"github.com/mwiater/promptbench/internal/providers"
)

// Invoker issues single, unretried requests through a provider.
type Invoker struct {
	provider providers.Completer
	timeout  time.Duration
	now      func() time.Time
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithTimeout bounds each call; an expired deadline is recorded as a failure.
// Zero or negative leaves calls unbounded.
func WithTimeout(d time.Duration) Option {
	return func(iv *Invoker) { iv.timeout = d }
}

// WithClock replaces the wall clock used to time calls.
func WithClock(now func() time.Time) Option {
	return func(iv *Invoker) {
		if now != nil {
			iv.now = now
		}
	}
}

// New returns an Invoker that sends requests through p.
func New(p providers.Completer, opts ...Option) *Invoker {
	iv := &Invoker{provider: p, now: time.Now}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Invoke sends prompt to model once and returns the normalized result.
func (iv *Invoker) Invoke(ctx context.Context, model, prompt string, temperature float64) CallResult {
	if ctx == nil {
		ctx = context.Background()
	}
	if iv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.timeout)
		defer cancel()
	}

	req := providers.CompletionRequest{
		Model:       model,
		Prompt:      prompt,
		Temperature: temperature,
	}

	start := iv.now()
	completion, err := iv.call(ctx, req)
	elapsed := iv.now().Sub(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && iv.timeout > 0 {
			err = fmt.Errorf("call exceeded %s deadline: %w", iv.timeout, err)
		}
		logging.FileEvent("call to %s failed after %s: %v", model, elapsed, err)
		return Failed(model, err)
	}
	return Succeeded(model, completion.Text, elapsed, completion.Usage)
}

// call runs the provider request, converting a panic into an error.
func (iv *Invoker) call(ctx context.Context, req providers.CompletionRequest) (completion providers.Completion, err error) {
	if iv.provider == nil {
		return providers.Completion{}, errors.New("no provider configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return iv.provider.Complete(ctx, req)
}
