package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/edgard/dailybot/internal/config"
	apperrors "github.com/edgard/dailybot/internal/errors"
)

func TestOllamaChat(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3:latest", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "what is 2+2?"},
		}, req.Messages)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3:latest","message":{"role":"assistant","content":" 4 \n"},"done":true}`))
	}))
	defer server.Close()

	client := NewOllama(server.URL+"/", "llama3:latest", time.Second, nil)
	answer, err := client.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "what is 2+2?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "4", answer)
}

func TestOllamaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "model missing", status: http.StatusNotFound, body: `{"error":"model \"llama9\" not found"}`, wantMsg: "llama9"},
		{name: "empty content", status: http.StatusOK, body: `{"message":{"role":"assistant","content":""}}`, wantMsg: "empty response"},
		{name: "garbage", status: http.StatusOK, body: `<html>`, wantMsg: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewOllama(server.URL, "llama9", time.Second, nil).Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
			require.Error(t, err)
			assert.True(t, apperrors.IsProvider(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestToContents(t *testing.T) {
	t.Parallel()

	base := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: "Be brief."}}},
	}
	contents, cfg := toContents([]Message{
		{Role: RoleSystem, Content: "Answer in French."},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "bonjour"},
	}, base)

	require.Len(t, contents, 2)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, "hello", contents[0].Parts[0].Text)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "Be brief.\nAnswer in French.", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "Be brief.", base.SystemInstruction.Parts[0].Text, "base config must not be modified")
}

func TestRetriable(t *testing.T) {
	t.Parallel()

	code, ok := retriable(&genai.APIError{Code: 503})
	assert.True(t, ok)
	assert.Equal(t, 503, code)

	_, ok = retriable(&genai.APIError{Code: 400})
	assert.False(t, ok)

	_, ok = retriable(errors.New("boom"))
	assert.False(t, ok)
}

func TestNewBackends(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.LLMConfig{}, nil)
	assert.ErrorIs(t, err, ErrDisabled)

	client, err := New(context.Background(), config.LLMConfig{
		Backend: BackendOllama,
		Ollama:  config.OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3:latest"},
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Ollama{}, client)

	_, err = New(context.Background(), config.LLMConfig{Backend: BackendGemini}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfig, apperrors.Code(err))

	_, err = New(context.Background(), config.LLMConfig{Backend: "gpt"}, nil)
	assert.Equal(t, apperrors.CodeConfig, apperrors.Code(err))
}
