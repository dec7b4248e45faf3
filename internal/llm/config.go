package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "openrouter", "openai", "anthropic", "gemini", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single chat turn. Default: 60s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "openai/gpt-4o-mini"
	BaseURL string // Default: "https://openrouter.ai/api/v1"

	// Referer and Title identify the app to OpenRouter.
	Referer string
	Title   string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// AppTitle is sent as X-Title on OpenRouter requests.
const AppTitle = "AI-Native Change Agent Companion"

// DefaultConfig returns the chat helper defaults: OpenRouter with a small
// OpenAI model and a single attempt per turn.
func DefaultConfig() Config {
	return Config{
		Provider: "openrouter",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model:   DefaultChatModel,
			Referer: "http://localhost:5001",
			Title:   AppTitle,
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from CHANGEAGENT_* variables. The
// OpenRouter key also falls back to OPENROUTER_KEY, matching the chat proxy.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("CHANGEAGENT_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if n, err := strconv.Atoi(os.Getenv("CHANGEAGENT_LLM_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}

	if k := os.Getenv("CHANGEAGENT_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("CHANGEAGENT_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("CHANGEAGENT_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("CHANGEAGENT_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("CHANGEAGENT_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("CHANGEAGENT_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("CHANGEAGENT_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	cfg.OpenRouter.APIKey = OpenRouterKeyFromEnv()
	if m := os.Getenv("CHANGEAGENT_OPENROUTER_MODEL"); m != "" {
		cfg.OpenRouter.Model = m
	}
	if r := os.Getenv("CHANGEAGENT_OPENROUTER_REFERER"); r != "" {
		cfg.OpenRouter.Referer = r
	}

	return cfg
}

// OpenRouterKeyFromEnv returns CHANGEAGENT_OPENROUTER_API_KEY, or
// OPENROUTER_KEY when that is unset. Keys for other providers are never
// sent to OpenRouter.
func OpenRouterKeyFromEnv() string {
	for _, name := range []string{"CHANGEAGENT_OPENROUTER_API_KEY", "OPENROUTER_KEY"} {
		if k := os.Getenv(name); k != "" {
			return k
		}
	}
	return ""
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("CHANGEAGENT_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("CHANGEAGENT_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("CHANGEAGENT_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
