package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/changeagent/internal/llm"
)

type memDocs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemDocs() *memDocs { return &memDocs{data: make(map[string][]byte)} }

func (m *memDocs) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memDocs) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memDocs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var fixedNow = time.Date(2026, 3, 9, 14, 5, 7, 0, time.UTC)

func newTestService(t *testing.T, p llm.Provider, docs *memDocs) *Service {
	t.Helper()
	s, err := NewService(context.Background(), p, docs, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s
}

func reply(text string) llm.MockResponse {
	b, _ := json.Marshal(text)
	return llm.MockResponse{Content: b}
}

func TestSendAppendsBothTurns(t *testing.T) {
	mock := llm.NewMockProvider(reply("Name a sponsor first."))
	docs := newMemDocs()
	s := newTestService(t, mock, docs)

	msg, err := s.Send(context.Background(), "  How do I start?  ")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "Name a sponsor first.", msg.Content)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "How do I start?", msgs[0].Content)
	assert.NotEmpty(t, msgs[0].ID)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
	assert.Equal(t, fixedNow, msgs[1].Timestamp)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, SystemPrompt, req.System)
	assert.Equal(t, llm.DefaultChatMaxTokens, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
}

func TestSendCarriesHistory(t *testing.T) {
	mock := llm.NewMockProvider(reply("first"), reply("second"))
	s := newTestService(t, mock, newMemDocs())

	_, err := s.Send(context.Background(), "one")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), "two")
	require.NoError(t, err)

	req := mock.Calls[1]
	require.Len(t, req.Messages, 3)
	assert.Equal(t, llm.RoleAssistant, req.Messages[1].Role)
	assert.Equal(t, "first", req.Messages[1].Content)
	assert.Equal(t, "two", req.Messages[2].Content)
}

func TestSendFailureAppendsApology(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("502")}})
	s := newTestService(t, mock, newMemDocs())

	msg, err := s.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, Apology, msg.Content)
	assert.False(t, s.Pending())

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, Apology, msgs[1].Content)
}

func TestSendWithoutProvider(t *testing.T) {
	s := newTestService(t, nil, newMemDocs())
	assert.False(t, s.Available())

	msg, err := s.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, Apology, msg.Content)
}

func TestSendEmptyReply(t *testing.T) {
	s := newTestService(t, llm.NewMockProvider(reply("   ")), newMemDocs())
	msg, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, EmptyReply, msg.Content)
}

func TestSendRejectsBlank(t *testing.T) {
	mock := llm.NewMockProvider()
	s := newTestService(t, mock, newMemDocs())
	_, err := s.Send(context.Background(), "   ")
	require.Error(t, err)
	assert.Empty(t, s.Messages())
	assert.Equal(t, 0, mock.CallCount())
}

func TestHistoryPersistsAndClears(t *testing.T) {
	docs := newMemDocs()
	s := newTestService(t, llm.NewMockProvider(reply("ok")), docs)
	_, err := s.Send(context.Background(), "remember me")
	require.NoError(t, err)

	reloaded := newTestService(t, nil, docs)
	assert.Equal(t, s.Messages()[0].ID, reloaded.Messages()[0].ID)
	assert.Len(t, reloaded.Messages(), 2)

	require.NoError(t, reloaded.Clear(context.Background()))
	assert.Empty(t, reloaded.Messages())
	_, ok, _ := docs.Get(context.Background(), DocumentKey)
	assert.False(t, ok)
}

func TestCorruptHistoryStartsEmpty(t *testing.T) {
	docs := newMemDocs()
	docs.data[DocumentKey] = []byte("{not json")
	s := newTestService(t, nil, docs)
	assert.Empty(t, s.Messages())
}

func TestTranscript(t *testing.T) {
	s := newTestService(t, llm.NewMockProvider(reply("Use the ADKAR model.")), newMemDocs())

	_, _, ok := s.Transcript(fixedNow)
	assert.False(t, ok)

	_, err := s.Send(context.Background(), "Which model?")
	require.NoError(t, err)

	name, text, ok := s.Transcript(fixedNow)
	require.True(t, ok)
	assert.Equal(t, "chat-conversation-2026-03-09.txt", name)

	want := "AI-Native Change Agent - LLM Chat Helper\n" +
		"Exported: 03/09/2026, 02:05:07 PM\n\n" +
		strings.Repeat("=", 60) + "\n\n" +
		"User:\nWhich model?\n\n" +
		"-------\n\n" +
		"Assistant:\nUse the ADKAR model.\n\n"
	assert.Equal(t, want, text)
}
