package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

// BackendOllama selects the Ollama HTTP API.
const BackendOllama = "ollama"

// Ollama calls a local or tunnelled Ollama server's /api/chat endpoint.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
	log     *slog.Logger
}

// NewOllama returns an Ollama client. A zero timeout means 60 seconds.
func NewOllama(baseURL, model string, timeout time.Duration, log *slog.Logger) *Ollama {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		log:     log.With("component", "ollama_client"),
	}
}

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error"`
}

// Chat sends the whole conversation and returns the assistant's reply.
func (o *Ollama) Chat(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(ollamaChatRequest{Model: o.model, Messages: messages, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.NewProviderError(BackendOllama, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	o.log.DebugContext(ctx, "Sending chat request", "model", o.model, "message_count", len(messages))

	resp, err := o.client.Do(req)
	if err != nil {
		return "", apperrors.NewProviderError(BackendOllama, "request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			o.log.WarnContext(ctx, "close response body", "error", closeErr)
		}
	}()

	var out ollamaChatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if decodeErr == nil && out.Error != "" {
			msg += ": " + out.Error
		}
		return "", apperrors.NewProviderError(BackendOllama, msg, nil)
	}
	if decodeErr != nil {
		return "", apperrors.NewProviderError(BackendOllama, "failed to decode response", decodeErr)
	}

	answer := strings.TrimSpace(out.Message.Content)
	if answer == "" {
		return "", apperrors.NewProviderError(BackendOllama, "empty response", nil)
	}
	return answer, nil
}
