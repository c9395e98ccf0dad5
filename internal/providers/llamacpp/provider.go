// internal/providers/llamacpp/provider.go
// Package llamacpp provides a Completer backed by llama.cpp's OpenAI-compatible HTTP API.
package llamacpp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/mwiater/promptbench/internal/logging"
	"github.com/mwiater/promptbench/internal/providers"
	"github.com/mwiater/promptbench/internal/util"
)

// DefaultBaseURL is the address llama-server listens on out of the box.
const DefaultBaseURL = "http://localhost:8080"

const maxErrorBodyRunes = 512

// Provider implements providers.Completer using llama.cpp HTTP APIs.
type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New constructs a Provider for the configured base URL. The client timeout
// follows the configured per-call timeout; zero leaves calls unbounded.
func New(cfg *appconfig.Config) *Provider {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		client: &http.Client{
			Timeout:   cfg.RequestTimeout(),
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		baseURL: baseURL,
		apiKey:  cfg.APIKey(),
	}
}

// Name identifies the provider in logs.
func (p *Provider) Name() string {
	return "llama.cpp@" + p.baseURL
}

// Complete issues one non-streaming chat completion request.
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
	payload := map[string]any{
		"model":       req.Model,
		"messages":    toOpenAIMessages(sanitizeMessages(req.Messages())),
		"stream":      false,
		"temperature": req.Temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return providers.Completion{}, err
	}
	logging.LogRequest("PB->LLM", p.baseURL, req.Model, body)

	endpoint := p.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providers.Completion{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return providers.Completion{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.Completion{}, err
	}
	logging.LogRequest("LLM->PB", p.baseURL, req.Model, raw)

	if resp.StatusCode != http.StatusOK {
		return providers.Completion{}, fmt.Errorf("llama.cpp: /v1/chat/completions returned %s: %s", resp.Status, util.TruncateRunes(strings.TrimSpace(string(raw)), maxErrorBodyRunes))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return providers.Completion{}, fmt.Errorf("llama.cpp: invalid chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return providers.Completion{}, fmt.Errorf("llama.cpp: chat response contained no choices")
	}
	if parsed.Usage == nil {
		return providers.Completion{}, fmt.Errorf("llama.cpp: chat response contained no usage")
	}

	modelName := parsed.Model
	if modelName == "" {
		modelName = req.Model
	}
	return providers.Completion{
		Model: modelName,
		Text:  parsed.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

// ListModels returns the models the server reports on /models.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	endpoint := p.baseURL + "/models"
	logging.LogRequest("PB->LLM", p.baseURL, "", map[string]string{"method": http.MethodGet, "url": endpoint})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("LLM->PB", p.baseURL, "", body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llama.cpp: /models returned %s", resp.Status)
	}

	models, err := parseModels(body)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		if name := modelDisplayName(m); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type modelsResponse struct {
	Data   []llamaModel `json:"data"`
	Models []llamaModel `json:"models"`
}

type llamaModel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
	Path  string `json:"path"`
}

func parseModels(body []byte) ([]llamaModel, error) {
	var wrapped modelsResponse
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if len(wrapped.Models) > 0 {
			return wrapped.Models, nil
		}
		if len(wrapped.Data) > 0 {
			return wrapped.Data, nil
		}
	}

	var direct []llamaModel
	if err := json.Unmarshal(body, &direct); err == nil && len(direct) > 0 {
		return direct, nil
	}

	var names struct {
		Models []string `json:"models"`
	}
	if err := json.Unmarshal(body, &names); err == nil && len(names.Models) > 0 {
		out := make([]llamaModel, 0, len(names.Models))
		for _, name := range names.Models {
			out = append(out, llamaModel{Name: name})
		}
		return out, nil
	}

	return nil, fmt.Errorf("llama.cpp: unrecognized /models response")
}

func modelDisplayName(model llamaModel) string {
	if strings.TrimSpace(model.ID) != "" {
		return strings.TrimSpace(model.ID)
	}
	if strings.TrimSpace(model.Name) != "" {
		return strings.TrimSpace(model.Name)
	}
	if strings.TrimSpace(model.Model) != "" {
		return strings.TrimSpace(model.Model)
	}
	return strings.TrimSpace(model.Path)
}

// sanitizeMessages drops empty non-assistant turns and defaults missing roles.
func sanitizeMessages(messages []providers.ChatMessage) []providers.ChatMessage {
	sanitized := make([]providers.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		role := strings.TrimSpace(msg.Role)
		if role == "" {
			role = "user"
		}
		if role != "assistant" && strings.TrimSpace(msg.Content) == "" {
			continue
		}
		sanitized = append(sanitized, providers.ChatMessage{Role: role, Content: msg.Content})
	}
	return sanitized
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toOpenAIMessages(messages []providers.ChatMessage) []openAIMessage {
	out := make([]openAIMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openAIMessage{Role: msg.Role, Content: msg.Content})
	}
	return out
}
