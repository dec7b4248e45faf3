package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/progress"
)

type memDocs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memDocs) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memDocs) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memDocs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeCompleter struct {
	got  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeCompleter) Complete(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	return f.resp, f.err
}

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, chat Completer, staticDir string) (*Server, *progress.Store) {
	t.Helper()
	repo, err := content.Load()
	require.NoError(t, err)
	store, err := progress.NewStore(context.Background(), &memDocs{data: map[string][]byte{}}, repo, nil)
	require.NoError(t, err)

	cfg := Config{
		Progress:  store,
		StaticDir: staticDir,
		Now:       func() time.Time { return fixedNow },
	}
	if chat != nil {
		cfg.Chat = chat
	}
	return New(cfg), store
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil, "")
	w := do(s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2026-05-04T10:30:00.000Z", body["timestamp"])
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestProgressRoundTrip(t *testing.T) {
	s, store := newTestServer(t, nil, "")
	ctx := context.Background()
	require.NoError(t, store.MarkSubLessonComplete(ctx, 5, "5.1"))

	w := do(s, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="ai-change-agent-progress-2026-05-04.json"`, w.Header().Get("Content-Disposition"))
	exported := w.Body.String()
	assert.Contains(t, exported, `"completed": true`)

	require.NoError(t, store.MarkSubLessonComplete(ctx, 5, "5.2"))

	w = do(s, http.MethodPost, "/api/progress", exported)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, store.SubLessonCompleted(5, "5.2"))
	assert.True(t, store.SubLessonCompleted(5, "5.1"))

	w = do(s, http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rec progress.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.True(t, rec.Lessons[5].SubLessons["5.1"].Completed)
}

func TestImportInvalid(t *testing.T) {
	s, store := newTestServer(t, nil, "")
	require.NoError(t, store.MarkSubLessonComplete(context.Background(), 5, "5.1"))

	for _, body := range []string{`not json`, `{"foo":1}`, `{"lessons":{"x":{}}}`} {
		w := do(s, http.MethodPost, "/api/progress", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)

		var env ErrorEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "Invalid progress data format", env.Error.Message)
		assert.Equal(t, "invalid_progress", env.Error.Code)
	}
	assert.True(t, store.SubLessonCompleted(5, "5.1"))
}

func TestChatValidation(t *testing.T) {
	s, _ := newTestServer(t, &fakeCompleter{}, "")
	for _, body := range []string{`{}`, `{"messages":"hi"}`, `{"messages":{"role":"user"}}`, `nope`} {
		w := do(s, http.MethodPost, "/api/ai/chat", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"Messages array is required"}`, w.Body.String())
	}
}

func TestChatWithoutKey(t *testing.T) {
	s, _ := newTestServer(t, nil, "")
	w := do(s, http.MethodPost, "/api/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"OpenRouter API key not configured"}`, w.Body.String())
}

func TestChatForwardsWithDefaults(t *testing.T) {
	fc := &fakeCompleter{resp: openai.ChatCompletionResponse{
		ID: "gen-1",
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: "assistant", Content: "Start with why."},
		}},
	}}
	s, _ := newTestServer(t, fc, "")

	w := do(s, http.MethodPost, "/api/ai/chat", `{"messages":[{"role":"system","content":"sys"},{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "openai/gpt-4o-mini", fc.got.Model)
	assert.Equal(t, 1000, fc.got.MaxTokens)
	assert.InDelta(t, 0.7, fc.got.Temperature, 1e-6)
	require.Len(t, fc.got.Messages, 2)
	assert.Equal(t, "system", fc.got.Messages[0].Role)

	var resp openai.ChatCompletionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Start with why.", resp.Choices[0].Message.Content)
}

func TestChatModelOverrideAndUpstreamFailure(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("upstream 502")}
	s, _ := newTestServer(t, fc, "")

	w := do(s, http.MethodPost, "/api/ai/chat", `{"messages":[],"model":"anthropic/claude-3-haiku"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to get AI response"}`, w.Body.String())
	assert.Equal(t, "anthropic/claude-3-haiku", fc.got.Model)
}

func TestStaticAndSPAFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	s, _ := newTestServer(t, nil, dir)

	w := do(s, http.MethodGet, "/assets/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	w = do(s, http.MethodGet, "/lesson/5/5.1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app")

	w = do(s, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "not_found", env.Error.Code)
}
