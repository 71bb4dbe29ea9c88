package content

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	apperrors "github.com/edgard/dailybot/internal/errors"
	"github.com/edgard/dailybot/internal/i18n"
)

// Google News topic sections addressable by keyword.
var googleNewsSections = map[string]bool{
	"WORLD":         true,
	"NATION":        true,
	"BUSINESS":      true,
	"TECHNOLOGY":    true,
	"ENTERTAINMENT": true,
	"SPORTS":        true,
	"SCIENCE":       true,
	"HEALTH":        true,
}

// GoogleNews reads headlines from the Google News RSS feeds. Section keywords
// select a topic feed, anything else is a search.
type GoogleNews struct {
	baseURL  string
	country  string
	maxItems int
	http     *HTTPClient
}

func NewGoogleNews(baseURL, country string, maxItems int, client *HTTPClient) *GoogleNews {
	if maxItems < 1 {
		maxItems = defaultMaxItems
	}
	return &GoogleNews{
		baseURL:  strings.TrimRight(baseURL, "/"),
		country:  strings.ToUpper(country),
		maxItems: maxItems,
		http:     client,
	}
}

func (p *GoogleNews) Name() string { return NameGoogleNews }

// FeedURL returns the RSS URL for topic in the given locale.
func (p *GoogleNews) FeedURL(topic, locale string) string {
	lang := i18n.Language(locale)
	q := url.Values{}
	q.Set("hl", lang+"-"+p.country)
	q.Set("gl", p.country)
	q.Set("ceid", p.country+":"+lang)

	if section := strings.ToUpper(topic); googleNewsSections[section] && topic == section {
		return p.baseURL + "/headlines/section/topic/" + section + "?" + q.Encode()
	}
	q.Set("q", topic)
	return p.baseURL + "/search?" + q.Encode()
}

func (p *GoogleNews) Fetch(ctx context.Context, topic, locale string) (string, error) {
	topic, err := checkTopic(p.Name(), topic)
	if err != nil {
		return "", err
	}

	body, err := p.http.get(ctx, p.Name(), p.FeedURL(topic, locale))
	if err != nil {
		return "", wrapStatus(p.Name(), err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewProviderError(p.Name(), "failed to parse feed", err)
	}
	if len(feed.Items) == 0 {
		return "", notFound(p.Name(), topic)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", i18n.Text(locale, i18n.KeyNewsHeader), topic)
	for i, item := range feed.Items {
		if i >= p.maxItems {
			break
		}
		fmt.Fprintf(&b, "🔹 %s\n", item.Title)
		if item.Published != "" {
			fmt.Fprintf(&b, "📅 %s\n", item.Published)
		}
		fmt.Fprintf(&b, "🔗 %s\n\n", item.Link)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
