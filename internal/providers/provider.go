// internal/providers/provider.go

// Package providers defines the boundary between the benchmark and the
// text-generation services it measures. A Completer performs exactly one
// synchronous request; implementations exist for OpenAI-compatible APIs and
// llama.cpp servers.
package providers

import "context"

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries everything one benchmark call sends upstream.
type CompletionRequest struct {
	Model       string
	Prompt      string
	Temperature float64
}

// Messages returns the chat history sent for the request: a single user turn.
func (r CompletionRequest) Messages() []ChatMessage {
	return []ChatMessage{{Role: "user", Content: r.Prompt}}
}

// Usage holds the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is a successful provider response. Text is returned exactly as
// the provider produced it.
type Completion struct {
	Model string
	Text  string
	Usage Usage
}

// Completer is the interface every provider implements. Complete must issue
// exactly one request and must not retry.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	// Name identifies the provider in logs.
	Name() string
	// Close releases any resources held by the provider.
	Close() error
}

// ModelLister is implemented by providers that can enumerate the models the
// remote endpoint serves.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (Completion, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	return f(ctx, req)
}

// Name returns a fixed identifier for function-backed providers.
func (f CompleterFunc) Name() string { return "func" }

// Close is a no-op.
func (f CompleterFunc) Close() error { return nil }
