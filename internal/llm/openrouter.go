package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Chat defaults shared by the TUI helper and the HTTP proxy.
const (
	DefaultChatModel       = "openai/gpt-4o-mini"
	DefaultChatMaxTokens   = 1000
	DefaultChatTemperature = 0.7
)

// OpenRouterProvider wraps OpenAIProvider with OpenRouter defaults and the
// attribution headers OpenRouter expects. Model IDs are passed through.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenRouterBaseURL
	}
	config.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": cfg.Referer,
				"X-Title":      cfg.Title,
			},
		},
	}

	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	return &OpenRouterProvider{OpenAIProvider: newOpenAIProvider(config, model)}, nil
}

// Complete forwards a chat-completion request unchanged and returns the
// provider's envelope. The HTTP chat proxy uses it.
func (p *OpenRouterProvider) Complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if req.Model == "" {
		req.Model = p.model
	}
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return openai.ChatCompletionResponse{}, mapOpenAIError(err)
	}
	return resp, nil
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}
