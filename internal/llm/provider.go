package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is the core abstraction for LLM interaction. The chat helper
// sends a conversation and reads plain text back.
type Provider interface {
	// Generate sends the conversation to the LLM and returns its reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// The chat helper uses 0.7.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the LLM's output.
type Response struct {
	// Content is the reply text wrapped as a JSON string.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response as plain text. Unstructured responses are
// stored as a JSON string; anything else is returned verbatim.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(r.Content))
}

// textContent wraps raw model text as a JSON string.
func textContent(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
