// Package chat implements the course's LLM chat helper: a single persisted
// conversation sent to an llm.Provider one turn at a time.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/changeagent/internal/llm"
	"github.com/abhisek/changeagent/internal/platform/logger"
)

// DocumentKey is where the conversation is persisted.
const DocumentKey = "chatHelperMessages"

// SystemPrompt is sent ahead of every conversation.
const SystemPrompt = "You are a helpful AI assistant for the AI-Native Change Agent Class. " +
	"Provide clear, concise, and practical advice related to change management, AI adoption, " +
	"stakeholder engagement, communication strategies, and the course content. " +
	"Focus on helping users understand and implement successful AI transformations in their organizations."

const (
	// Apology replaces the reply when the provider call fails.
	Apology = "Sorry, I encountered an error. Please try again."
	// EmptyReply replaces a reply with no text.
	EmptyReply = "Sorry, I could not generate a response."
)

// Purpose tags chat requests in the LLM event log.
const Purpose = "chat"

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Documents is the durable key/value backend.
type Documents interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for storage and provider failures.
func WithLogger(log *logger.Logger) Option {
	return func(s *Service) { s.log = log }
}

// Service owns the conversation. It is safe for concurrent use; the
// provider call runs without holding the lock so readers are not blocked.
type Service struct {
	mu       sync.Mutex
	provider llm.Provider
	docs     Documents
	log      *logger.Logger
	now      func() time.Time
	messages []Message
	pending  bool
}

// NewService loads the persisted conversation. A corrupt document starts
// an empty conversation.
func NewService(ctx context.Context, provider llm.Provider, docs Documents, opts ...Option) (*Service, error) {
	s := &Service{provider: provider, docs: docs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Nop()
	}

	data, ok, err := docs.Get(ctx, DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &s.messages); err != nil {
			s.log.Warn("discarding unreadable chat history", "error", err)
			s.messages = nil
		}
	}
	return s, nil
}

// Messages returns a copy of the conversation.
func (s *Service) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Pending reports whether a Send is in flight.
func (s *Service) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Available reports whether a provider is configured.
func (s *Service) Available() bool {
	return s.provider != nil
}

// Send appends text as a user turn, asks the provider for a reply and
// appends it. When the provider fails the apology is appended instead and
// the provider error is returned alongside it.
func (s *Service) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, fmt.Errorf("empty message")
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return Message{}, fmt.Errorf("a message is already being sent")
	}
	s.pending = true
	s.messages = append(s.messages, s.newMessage(RoleUser, text))
	req := s.buildRequest()
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("failed to persist chat history", "error", err)
	}

	reply, callErr := s.complete(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	msg := s.newMessage(RoleAssistant, reply)
	s.messages = append(s.messages, msg)
	if err := s.persistLocked(ctx); err != nil {
		s.log.Warn("failed to persist chat history", "error", err)
	}
	return msg, callErr
}

func (s *Service) complete(ctx context.Context, req llm.Request) (string, error) {
	if s.provider == nil {
		return Apology, fmt.Errorf("no LLM provider configured")
	}
	resp, err := s.provider.Generate(llm.WithPurpose(ctx, Purpose), req)
	if err != nil {
		s.log.Error("chat request failed", "error", err)
		return Apology, err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return EmptyReply, nil
	}
	return text, nil
}

// buildRequest carries the whole history. Callers hold mu.
func (s *Service) buildRequest() llm.Request {
	req := llm.Request{
		System:      SystemPrompt,
		MaxTokens:   llm.DefaultChatMaxTokens,
		Temperature: llm.DefaultChatTemperature,
	}
	for _, m := range s.messages {
		role := llm.RoleUser
		if m.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		req.Messages = append(req.Messages, llm.Message{Role: role, Content: m.Content})
	}
	return req
}

// Clear forgets the conversation and removes it from storage.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	if err := s.docs.Delete(ctx, DocumentKey); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}

func (s *Service) newMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content, Timestamp: s.now()}
}

func (s *Service) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.messages)
	if err != nil {
		return err
	}
	return s.docs.Put(ctx, DocumentKey, data)
}
