package invoker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/promptbench/internal/providers"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	current := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

func TestInvokeSuccess(t *testing.T) {
	var seen providers.CompletionRequest
	calls := 0
	provider := providers.CompleterFunc(func(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
		calls++
		seen = req
		return providers.Completion{
			Text:  "\n  Warsaw is the capital.  \n",
			Usage: providers.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}, nil
	})

	iv := New(provider, WithClock(stepClock(1234*time.Millisecond)))
	got := iv.Invoke(context.Background(), "m1", "Capital of Poland?", 0.3)

	if calls != 1 {
		t.Fatalf("expected exactly one provider call, got %d", calls)
	}
	if seen.Model != "m1" || seen.Prompt != "Capital of Poland?" || seen.Temperature != 0.3 {
		t.Fatalf("unexpected request: %+v", seen)
	}
	if got.Model != "m1" {
		t.Fatalf("unexpected model: %q", got.Model)
	}
	if got.Response != "Warsaw is the capital." {
		t.Fatalf("expected trimmed response, got %q", got.Response)
	}
	if got.ElapsedSeconds == nil || *got.ElapsedSeconds != 1.23 {
		t.Fatalf("expected elapsed 1.23, got %v", got.ElapsedSeconds)
	}
	if got.PromptTokens == nil || *got.PromptTokens != 10 {
		t.Fatalf("unexpected prompt tokens: %v", got.PromptTokens)
	}
	if got.CompletionTokens == nil || *got.CompletionTokens != 5 {
		t.Fatalf("unexpected completion tokens: %v", got.CompletionTokens)
	}
	if got.TotalTokens == nil || *got.TotalTokens != 15 {
		t.Fatalf("unexpected total tokens: %v", got.TotalTokens)
	}
	if got.IsError() || got.Status() != StatusOK {
		t.Fatalf("expected OK result, got %s", got.Status())
	}
}

func TestInvokeFailure(t *testing.T) {
	provider := providers.CompleterFunc(func(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
		return providers.Completion{}, errors.New("connection refused")
	})

	got := New(provider).Invoke(context.Background(), "m2", "hi", 0.7)

	if got.Response != "Error: connection refused" {
		t.Fatalf("unexpected response: %q", got.Response)
	}
	if got.ElapsedSeconds != nil || got.PromptTokens != nil || got.CompletionTokens != nil || got.TotalTokens != nil {
		t.Fatalf("failure must not populate numeric fields: %+v", got)
	}
	if got.Status() != StatusError {
		t.Fatalf("expected ERROR status, got %s", got.Status())
	}
}

func TestInvokeRecoversPanic(t *testing.T) {
	provider := providers.CompleterFunc(func(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
		panic("boom")
	})

	got := New(provider).Invoke(context.Background(), "m3", "hi", 0.7)

	if !strings.HasPrefix(got.Response, "Error: provider panic: boom") {
		t.Fatalf("unexpected response: %q", got.Response)
	}
	if !got.IsError() {
		t.Fatal("panic should be recorded as an error")
	}
}

func TestInvokeNilProvider(t *testing.T) {
	got := New(nil).Invoke(context.Background(), "m4", "hi", 0.7)
	if got.Response != "Error: no provider configured" {
		t.Fatalf("unexpected response: %q", got.Response)
	}
}

func TestInvokeTimeout(t *testing.T) {
	provider := providers.CompleterFunc(func(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
		<-ctx.Done()
		return providers.Completion{}, ctx.Err()
	})

	got := New(provider, WithTimeout(10*time.Millisecond)).Invoke(context.Background(), "slow", "hi", 0.7)

	if !strings.HasPrefix(got.Response, "Error: call exceeded 10ms deadline") {
		t.Fatalf("unexpected response: %q", got.Response)
	}
	if got.ElapsedSeconds != nil {
		t.Fatal("timed out call must not record elapsed time")
	}
}

func TestInvokeCanceledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider := providers.CompleterFunc(func(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
		return providers.Completion{}, ctx.Err()
	})

	got := New(provider).Invoke(ctx, "m5", "hi", 0.7)
	if got.Response != "Error: context canceled" {
		t.Fatalf("unexpected response: %q", got.Response)
	}
}

func TestCallResultIsError(t *testing.T) {
	elapsed := 1.0
	total := 3

	tests := []struct {
		name   string
		result CallResult
		want   bool
	}{
		{
			name:   "complete result",
			result: CallResult{Model: "a", Response: "ok", ElapsedSeconds: &elapsed, TotalTokens: &total},
			want:   false,
		},
		{
			name:   "error marker",
			result: CallResult{Model: "a", Response: "Error: timeout", ElapsedSeconds: &elapsed, TotalTokens: &total},
			want:   true,
		},
		{
			name:   "marker without space",
			result: CallResult{Model: "a", Response: "Error:x", ElapsedSeconds: &elapsed, TotalTokens: &total},
			want:   true,
		},
		{
			name:   "marker not at start",
			result: CallResult{Model: "a", Response: "No Error: here", ElapsedSeconds: &elapsed, TotalTokens: &total},
			want:   false,
		},
		{
			name:   "missing elapsed",
			result: CallResult{Model: "a", Response: "hi", TotalTokens: &total},
			want:   true,
		},
		{
			name:   "missing total tokens",
			result: CallResult{Model: "a", Response: "hi", ElapsedSeconds: &elapsed},
			want:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.result.IsError(); got != tc.want {
				t.Fatalf("IsError() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFailedNilError(t *testing.T) {
	got := Failed("m", nil)
	if got.Response != "Error: unknown error" {
		t.Fatalf("unexpected response: %q", got.Response)
	}
}
