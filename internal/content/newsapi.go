package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/edgard/dailybot/internal/errors"
	"github.com/edgard/dailybot/internal/i18n"
)

// Languages accepted by NewsAPI's language parameter.
var newsAPILanguages = map[string]bool{
	"ar": true, "de": true, "en": true, "es": true, "fr": true, "he": true, "it": true,
	"nl": true, "no": true, "pt": true, "ru": true, "sv": true, "ud": true, "zh": true,
}

// NewsAPI searches newsapi.org for the latest articles matching a query.
type NewsAPI struct {
	endpoint string
	apiKey   string
	maxItems int
	http     *HTTPClient
}

func NewNewsAPI(endpoint, apiKey string, maxItems int, client *HTTPClient) *NewsAPI {
	if maxItems < 1 {
		maxItems = defaultMaxItems
	}
	return &NewsAPI{endpoint: endpoint, apiKey: apiKey, maxItems: maxItems, http: client}
}

func (p *NewsAPI) Name() string { return NameNewsAPI }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"articles"`
}

func (p *NewsAPI) Fetch(ctx context.Context, topic, locale string) (string, error) {
	query, err := checkTopic(p.Name(), topic)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(p.maxItems))
	if lang := i18n.Language(locale); newsAPILanguages[lang] {
		q.Set("language", lang)
	}
	q.Set("apiKey", p.apiKey)

	body, err := p.http.get(ctx, p.Name(), p.endpoint+"?"+q.Encode())
	var se *statusError
	if err != nil && !errors.As(err, &se) {
		return "", err
	}

	// NewsAPI reports failures as {"status":"error"} with a non-2xx code.
	var resp newsAPIResponse
	if decodeErr := json.Unmarshal(body, &resp); decodeErr != nil {
		if se != nil {
			return "", wrapStatus(p.Name(), se)
		}
		return "", apperrors.NewProviderError(p.Name(), "failed to decode response", decodeErr)
	}
	if resp.Status == "error" {
		var cause error
		if resp.Code != "" {
			cause = errors.New(resp.Code)
		}
		return "", apperrors.NewProviderError(p.Name(), "API error: "+resp.Message, cause)
	}
	if se != nil {
		return "", wrapStatus(p.Name(), se)
	}
	if len(resp.Articles) == 0 {
		return "", notFound(p.Name(), query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", i18n.Text(locale, i18n.KeyNewsHeader), query)
	for i, art := range resp.Articles {
		if i >= p.maxItems {
			break
		}
		fmt.Fprintf(&b, "🔹 %s\n%s\n\n", art.Title, art.URL)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
