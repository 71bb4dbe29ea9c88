// Package llm talks to a language model for /ask and the terminal chat client.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edgard/dailybot/internal/config"
	apperrors "github.com/edgard/dailybot/internal/errors"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ErrDisabled is returned by New when no backend is configured.
var ErrDisabled = errors.New("llm backend not configured")

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client produces the assistant reply to a conversation.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// New builds the client for cfg.Backend. It returns ErrDisabled when the
// backend is empty.
//
//nolint:ireturn // the backend is chosen by configuration
func New(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (Client, error) {
	switch cfg.Backend {
	case "":
		return nil, ErrDisabled
	case BackendOllama:
		return NewOllama(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Timeout, log), nil
	case BackendGemini:
		client, err := NewGemini(ctx, cfg.Gemini, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown llm backend %q", cfg.Backend), nil)
	}
}
