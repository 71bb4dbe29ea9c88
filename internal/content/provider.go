// Package content fetches weather forecasts and news headlines from public
// HTTP APIs and renders them as chat-ready text.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edgard/dailybot/internal/config"
	apperrors "github.com/edgard/dailybot/internal/errors"
)

// ErrNotFound is wrapped by provider errors when the topic resolved to nothing
// (unknown city, no articles).
var ErrNotFound = errors.New("no content found")

const defaultMaxItems = 5

// Provider names accepted by content.provider.
const (
	NameOpenMeteo  = "open-meteo"
	NameWttr       = "wttr"
	NameNewsAPI    = "newsapi"
	NameGoogleNews = "google-news"
)

// Provider returns formatted, localized text for a topic.
type Provider interface {
	Fetch(ctx context.Context, topic, locale string) (string, error)
	Name() string
}

// New builds the provider selected in cfg.
//
//nolint:ireturn // the concrete provider depends on configuration
func New(cfg config.ContentConfig) (Provider, error) {
	client := NewHTTPClient(cfg.Timeout, cfg.UserAgent)

	switch cfg.Provider {
	case NameOpenMeteo:
		return NewOpenMeteo(cfg.OpenMeteo.GeocodingURL, cfg.OpenMeteo.ForecastURL, client), nil
	case NameWttr:
		return NewWttr(cfg.Wttr.BaseURL, client), nil
	case NameNewsAPI:
		return NewNewsAPI(cfg.NewsAPI.BaseURL, cfg.NewsAPI.APIKey, cfg.MaxItems, client), nil
	case NameGoogleNews:
		return NewGoogleNews(cfg.GoogleNews.BaseURL, cfg.GoogleNews.Country, cfg.MaxItems, client), nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown content provider %q", cfg.Provider), nil)
	}
}

func checkTopic(provider, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", apperrors.NewValidationError(provider+": topic cannot be empty", nil)
	}
	return topic, nil
}

func notFound(provider, topic string) error {
	return apperrors.NewProviderError(provider, fmt.Sprintf("nothing found for %q", topic), ErrNotFound)
}
