package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/changeagent/internal/config"
	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/llm"
	"github.com/abhisek/changeagent/internal/progress"
	"github.com/abhisek/changeagent/internal/server"
	"github.com/abhisek/changeagent/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func setKeys(t *testing.T, openRouter, openAI string) {
	t.Helper()
	t.Setenv("CHANGEAGENT_OPENROUTER_API_KEY", "")
	t.Setenv("OPENROUTER_KEY", openRouter)
	t.Setenv("OPENAI_API_KEY", openAI)
}

func TestChatProxyNeedsOpenRouterKey(t *testing.T) {
	setKeys(t, "", "sk-openai-secret")
	st := openTestStore(t)

	completer, err := chatProxy(config.Load(), st.EventRepo(), nil)
	require.NoError(t, err)
	require.Nil(t, completer)

	repo, err := content.Load()
	require.NoError(t, err)
	ps, err := progress.NewStore(context.Background(), st.DocumentRepo(), repo, nil)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	srv := server.New(server.Config{Progress: ps, Chat: completer})
	req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"OpenRouter API key not configured"}`, w.Body.String())
}

func TestChatProxyLogsCompletions(t *testing.T) {
	setKeys(t, "sk-or", "")
	st := openTestStore(t)

	completer, err := chatProxy(config.Load(), st.EventRepo(), nil)
	require.NoError(t, err)
	require.NotNil(t, completer)
	assert.IsType(t, &llm.LoggingCompleter{}, completer)
}
