// Package openaicompat provides a Completer for OpenAI and any server that
// speaks the OpenAI chat completions API.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/mwiater/promptbench/internal/logging"
	"github.com/mwiater/promptbench/internal/providers"
)

// Provider implements providers.Completer on top of go-openai. A temperature
// of 0 goes over the wire as the smallest positive float32 (about 1e-45),
// since go-openai drops a zero temperature from the request.
type Provider struct {
	client  *openai.Client
	baseURL string
}

// New builds a client from the configured key, base URL and timeout.
func New(cfg *appconfig.Config) *Provider {
	clientConfig := openai.DefaultConfig(cfg.APIKey())
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout()}
	return &Provider{
		client:  openai.NewClientWithConfig(clientConfig),
		baseURL: clientConfig.BaseURL,
	}
}

// Name identifies the provider in logs.
func (p *Provider) Name() string {
	return "openai@" + p.baseURL
}

// Complete sends one chat completion request with a single user message.
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		}},
		Temperature: wireTemperature(req.Temperature),
	}
	logging.LogRequest("PB->LLM", p.baseURL, req.Model, chatReq)

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return providers.Completion{}, describeError(err)
	}
	logging.LogRequest("LLM->PB", p.baseURL, req.Model, resp)

	if len(resp.Choices) == 0 {
		return providers.Completion{}, fmt.Errorf("openai: chat response contained no choices")
	}

	modelName := resp.Model
	if modelName == "" {
		modelName = req.Model
	}
	return providers.Completion{
		Model: modelName,
		Text:  resp.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// ListModels returns the model IDs the endpoint reports.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, describeError(err)
	}
	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// Close is a no-op; the underlying client holds no long-lived resources.
func (p *Provider) Close() error {
	return nil
}

// wireTemperature converts the temperature for the request. The request field
// is omitempty, so an exact zero is sent as the smallest positive float32.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func describeError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai: status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("openai: status %d: %w", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Errorf("openai: %w", err)
}
