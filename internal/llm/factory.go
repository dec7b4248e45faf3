package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with retry
// and, when eventRepo is non-nil, request logging.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → retry → logging → base
	if eventRepo != nil {
		base = WithLogging(base, cfg.Provider, eventRepo, log)
	}
	return WithRetry(base, cfg.Retry), nil
}
