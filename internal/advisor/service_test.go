package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply   string
	err     error
	calls   int
	history []Message
	docs    []Document
	prompt  string
}

func (s *stubGenerator) Generate(_ context.Context, history []Message, docs []Document, prompt string) (string, error) {
	s.calls++
	s.history = history
	s.docs = docs
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubGenerator) Name() string { return "stub-model" }

func TestChatOfflineNeverCallsModel(t *testing.T) {
	service := NewService(ServiceConfig{Logger: zerolog.Nop()}) // no Generator

	reply := service.Chat(context.Background(), "s1", "When should I plant maize?", nil)
	assert.Equal(t, OfflineMessage, reply)
}

func TestChatExitShortCircuits(t *testing.T) {
	generator := &stubGenerator{reply: "unused"}
	service := NewService(ServiceConfig{Generator: generator, Logger: zerolog.Nop()})

	for _, message := range []string{"exit", "quit", "Exit", "QUIT"} {
		reply := service.Chat(context.Background(), "s1", message, nil)
		assert.Equal(t, ExitMessage, reply, message)
	}
	assert.Equal(t, 0, generator.calls)
}

func TestChatSendsProfileAndDocs(t *testing.T) {
	generator := &stubGenerator{reply: "Plant early in June."}
	docs := []Document{{Name: "maize-guide.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")}}
	service := NewService(ServiceConfig{Generator: generator, Docs: docs, Logger: zerolog.Nop()})

	reply := service.Chat(context.Background(), "s1", "When should I plant maize?", map[string]any{
		"soil_ph":   6.5,
		"avg_temp_c": 27.0,
	})

	assert.Equal(t, "Plant early in June.", reply)
	assert.Equal(t, docs, generator.docs)
	assert.Contains(t, generator.prompt, "When should I plant maize?")
	assert.Contains(t, generator.prompt, "User Field Data:")
	assert.Contains(t, generator.prompt, "soil_ph: 6.5")
	assert.Contains(t, generator.prompt, "avg_temp_c: 27")
}

func TestChatGenerationFailureApologizes(t *testing.T) {
	generator := &stubGenerator{err: errors.New("quota exhausted")}
	repo := NewInMemoryRepository()
	service := NewService(ServiceConfig{Generator: generator, Repository: repo, Logger: zerolog.Nop()})

	reply := service.Chat(context.Background(), "s1", "hello", nil)
	assert.Equal(t, ApologyMessage, reply)

	history, err := repo.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, history, "failed exchanges are not recorded")
}

func TestChatRecordsTranscriptPerSession(t *testing.T) {
	generator := &stubGenerator{reply: "Use NPK 15-15-15."}
	repo := NewInMemoryRepository()
	service := NewService(ServiceConfig{Generator: generator, Repository: repo, Logger: zerolog.Nop()})

	service.Chat(context.Background(), "farm-a", "What fertilizer?", nil)
	service.Chat(context.Background(), "farm-b", "What about pests?", nil)

	historyA, err := repo.History(context.Background(), "farm-a")
	require.NoError(t, err)
	require.Len(t, historyA, 2)
	assert.Equal(t, RoleUser, historyA[0].Role)
	assert.Equal(t, "What fertilizer?", historyA[0].Text)
	assert.Equal(t, RoleModel, historyA[1].Role)
	assert.Equal(t, "Use NPK 15-15-15.", historyA[1].Text)

	historyB, err := repo.History(context.Background(), "farm-b")
	require.NoError(t, err)
	require.Len(t, historyB, 2)
	assert.Equal(t, "What about pests?", historyB[0].Text)
}

func TestChatReplaysHistory(t *testing.T) {
	generator := &stubGenerator{reply: "second answer"}
	repo := NewInMemoryRepository()
	service := NewService(ServiceConfig{Generator: generator, Repository: repo, Logger: zerolog.Nop()})

	service.Chat(context.Background(), "s1", "first question", nil)
	service.Chat(context.Background(), "s1", "second question", nil)

	require.Len(t, generator.history, 2)
	assert.Equal(t, "first question", generator.history[0].Text)
}

func TestChatDefaultSession(t *testing.T) {
	generator := &stubGenerator{reply: "ok"}
	repo := NewInMemoryRepository()
	service := NewService(ServiceConfig{Generator: generator, Repository: repo, Logger: zerolog.Nop()})

	service.Chat(context.Background(), "", "hello", nil)

	history, err := repo.History(context.Background(), DefaultSessionID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRenderProfileStableOrder(t *testing.T) {
	text := renderProfile(map[string]any{"b": 2, "a": 1, "c": "x"})
	assert.Equal(t, "a: 1\nb: 2\nc: x", text)
}
