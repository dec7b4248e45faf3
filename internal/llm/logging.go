package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, providerName string, repo store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, provider: providerName, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Text()
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// A failed event write never fails the request.
	if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
		l.log.Warn("failed to record LLM request event", "error", logErr)
	}
	l.log.Debug("llm request", "purpose", purpose, "model", data.Model, "latency_ms", data.LatencyMs, "success", data.Success)

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// Completer forwards a chat-completion request unchanged.
type Completer interface {
	Complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LoggingCompleter records every forwarded completion as an event, the
// same way LoggingProvider does for Generate.
type LoggingCompleter struct {
	inner     Completer
	provider  string
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithCompletionLogging wraps a Completer with event logging.
func WithCompletionLogging(c Completer, providerName string, repo store.EventRepo, log *logger.Logger) Completer {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingCompleter{inner: c, provider: providerName, eventRepo: repo, log: log}
}

func (l *LoggingCompleter) Complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Complete(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       req.Model,
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeCompletion(req),
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	} else {
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.InputTokens = resp.Usage.PromptTokens
		data.OutputTokens = resp.Usage.CompletionTokens
		if len(resp.Choices) > 0 {
			data.ResponseBody = resp.Choices[0].Message.Content
		}
	}

	if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
		l.log.Warn("failed to record LLM request event", "error", logErr)
	}
	l.log.Debug("llm completion", "purpose", purpose, "model", data.Model, "latency_ms", data.LatencyMs, "success", data.Success)

	return resp, err
}

func serializeCompletion(req openai.ChatCompletionRequest) string {
	var b strings.Builder
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}
