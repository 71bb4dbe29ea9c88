package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/dailybot/internal/config"
	apperrors "github.com/edgard/dailybot/internal/errors"
)

// BackendGemini selects Google's Gemini API.
const BackendGemini = "gemini"

// Gemini implements Client with the genai SDK.
type Gemini struct {
	models        *genai.Models
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	model         string
	maxRetries    int
	retryDelay    time.Duration
}

// NewGemini creates a Gemini client with the provided configuration.
func NewGemini(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError("gemini API key is required", nil)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if cfg.SystemInstruction != "" {
		baseCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.SystemInstruction}}}
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &Gemini{
		models:        gi.Models,
		log:           logger,
		contentConfig: baseCfg,
		model:         cfg.Model,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    cfg.RetryDelay,
	}, nil
}

// toContents maps chat messages to genai contents. System messages are
// folded into the system instruction of cfg.
func toContents(messages []Message, base *genai.GenerateContentConfig) ([]*genai.Content, *genai.GenerateContentConfig) {
	cfg := *base
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	if len(system) > 0 {
		var existing string
		if base.SystemInstruction != nil && len(base.SystemInstruction.Parts) > 0 {
			existing = base.SystemInstruction.Parts[0].Text + "\n"
		}
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: existing + strings.Join(system, "\n")}}}
	}
	return contents, &cfg
}

// retriable reports whether err is a genai API error worth retrying.
func retriable(err error) (int, bool) {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
		return apiErr.Code, true
	}
	return 0, false
}

func (g *Gemini) generateWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	for i := 0; ; i++ {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err == nil {
			return resp, nil
		}

		g.log.WarnContext(ctx, "Gemini API call failed, checking for retry", "attempt", i+1, "max_retries", g.maxRetries, "error", err)

		code, ok := retriable(err)
		if !ok {
			return nil, apperrors.NewProviderError(BackendGemini, "API call failed", err)
		}
		if i >= g.maxRetries {
			return nil, apperrors.NewProviderError(BackendGemini,
				fmt.Sprintf("API call failed after %d retries (code %d)", g.maxRetries, code), err)
		}

		g.log.InfoContext(ctx, "Retrying Gemini API call", "delay", g.retryDelay, "code", code)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.retryDelay):
		}
	}
}

// Chat sends the conversation to Gemini and returns the reply text.
func (g *Gemini) Chat(ctx context.Context, messages []Message) (string, error) {
	contents, cfg := toContents(messages, g.contentConfig)
	if len(contents) == 0 {
		return "", apperrors.NewValidationError("conversation is empty", nil)
	}

	resp, err := g.generateWithRetries(ctx, contents, cfg)
	if err != nil {
		g.log.ErrorContext(ctx, "Gemini chat failed", "error", err)
		return "", err
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		return "", apperrors.NewProviderError(BackendGemini, "blocked by safety filter: "+reason, nil)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.NewProviderError(BackendGemini, "empty response", nil)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperrors.NewProviderError(BackendGemini, "empty response", nil)
	}
	return text, nil
}
