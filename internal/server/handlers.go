package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"

	"github.com/abhisek/changeagent/internal/llm"
	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/progress"
)

// maxImportBytes bounds progress uploads.
const maxImportBytes = 4 << 20

type handlers struct {
	progress *progress.Store
	chat     Completer
	log      *logger.Logger
	now      func() time.Time
}

func (h *handlers) health(c *gin.Context) {
	RespondOK(c, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (h *handlers) getProgress(c *gin.Context) {
	RespondOK(c, h.progress.Snapshot())
}

func (h *handlers) postProgress(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "read_failed", err)
		return
	}
	if len(data) > maxImportBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "too_large", errors.New("progress file too large"))
		return
	}

	if err := h.progress.Import(c.Request.Context(), data); err != nil {
		if errors.Is(err, progress.ErrInvalidProgress) {
			RespondError(c, http.StatusBadRequest, "invalid_progress", progress.ErrInvalidProgress)
			return
		}
		RespondError(c, http.StatusInternalServerError, "save_failed", err)
		return
	}
	RespondOK(c, h.progress.Snapshot())
}

func (h *handlers) export(c *gin.Context) {
	name, data, err := h.progress.Export(h.now())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

type chatRequest struct {
	Messages json.RawMessage `json:"messages"`
	Model    string          `json:"model"`
}

func (h *handlers) chat(c *gin.Context) {
	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondChatError(c, http.StatusBadRequest, "Messages array is required")
		return
	}
	raw := bytes.TrimSpace(body.Messages)
	if len(raw) == 0 || raw[0] != '[' {
		respondChatError(c, http.StatusBadRequest, "Messages array is required")
		return
	}
	var messages []openai.ChatCompletionMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		respondChatError(c, http.StatusBadRequest, "Messages array is required")
		return
	}

	if h.chat == nil {
		h.log.Error("chat requested but OPENROUTER_KEY is not set")
		respondChatError(c, http.StatusInternalServerError, "OpenRouter API key not configured")
		return
	}

	model := body.Model
	if model == "" {
		model = llm.DefaultChatModel
	}
	h.log.Info("forwarding chat request", "model", model, "messages", len(messages))

	ctx := llm.WithPurpose(c.Request.Context(), "chat-proxy")
	resp, err := h.chat.Complete(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   llm.DefaultChatMaxTokens,
		Temperature: llm.DefaultChatTemperature,
	})
	if err != nil {
		h.log.Error("chat upstream failed", "model", model, "error", err)
		respondChatError(c, http.StatusInternalServerError, "Failed to get AI response")
		return
	}
	RespondOK(c, resp)
}
