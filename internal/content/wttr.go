package content

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/edgard/dailybot/internal/errors"
	"github.com/edgard/dailybot/internal/i18n"
)

// wttr.in reports 3-hourly slots; 2, 4, 6 and 7 are 06:00, 12:00, 18:00 and 21:00.
const (
	wttrMorning = 2
	wttrDay     = 4
	wttrEvening = 6
	wttrNight   = 7
)

// Wttr renders today's forecast from wttr.in's j1 JSON format.
type Wttr struct {
	baseURL string
	http    *HTTPClient
}

func NewWttr(baseURL string, client *HTTPClient) *Wttr {
	return &Wttr{baseURL: strings.TrimRight(baseURL, "/"), http: client}
}

func (p *Wttr) Name() string { return NameWttr }

type wttrResponse struct {
	Weather []struct {
		AvgTempC string `json:"avgtempC"`
		MaxTempC string `json:"maxtempC"`
		MinTempC string `json:"mintempC"`
		Hourly   []struct {
			TempC        string      `json:"tempC"`
			ChanceOfRain string      `json:"chanceofrain"`
			WeatherDesc  []wttrValue `json:"weatherDesc"`
		} `json:"hourly"`
	} `json:"weather"`
}

type wttrValue struct {
	Value string `json:"value"`
}

func (p *Wttr) Fetch(ctx context.Context, topic, locale string) (string, error) {
	city, err := checkTopic(p.Name(), topic)
	if err != nil {
		return "", err
	}

	endpoint := p.baseURL + "/" + url.PathEscape(city) + "?" + url.Values{
		"format": {"j1"},
		"lang":   {i18n.Language(locale)},
	}.Encode()

	var resp wttrResponse
	if err := p.http.getJSON(ctx, p.Name(), endpoint, &resp); err != nil {
		return "", err
	}
	if len(resp.Weather) == 0 {
		return "", notFound(p.Name(), city)
	}
	today := resp.Weather[0]
	if len(today.Hourly) <= wttrNight {
		return "", apperrors.NewProviderError(p.Name(), "incomplete forecast", nil)
	}

	rain, err := strconv.Atoi(today.Hourly[wttrDay].ChanceOfRain)
	if err != nil {
		rain = 0
	}
	var desc string
	if d := today.Hourly[wttrDay].WeatherDesc; len(d) > 0 {
		desc = d[0].Value
	}

	return formatForecast(locale, forecast{
		Place:       city,
		RainText:    rainText(locale, float64(rain)),
		Morning:     today.Hourly[wttrMorning].TempC,
		Day:         today.Hourly[wttrDay].TempC,
		Evening:     today.Hourly[wttrEvening].TempC,
		Night:       today.Hourly[wttrNight].TempC,
		Max:         today.MaxTempC,
		Min:         today.MinTempC,
		Avg:         today.AvgTempC,
		Description: desc,
	}), nil
}
