package content

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/edgard/dailybot/internal/errors"
	"github.com/edgard/dailybot/internal/i18n"
)

// Hours of the hourly series reported as morning, day, evening and night.
var openMeteoHours = [4]int{8, 13, 18, 23}

// OpenMeteo resolves a city with the geocoding API and renders today's forecast.
type OpenMeteo struct {
	geocodingURL string
	forecastURL  string
	http         *HTTPClient
}

func NewOpenMeteo(geocodingURL, forecastURL string, client *HTTPClient) *OpenMeteo {
	return &OpenMeteo{geocodingURL: geocodingURL, forecastURL: forecastURL, http: client}
}

func (p *OpenMeteo) Name() string { return NameOpenMeteo }

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Daily struct {
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		RainMax        []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
	Hourly struct {
		Temperature []float64 `json:"temperature_2m"`
	} `json:"hourly"`
}

func (p *OpenMeteo) Fetch(ctx context.Context, topic, locale string) (string, error) {
	city, err := checkTopic(p.Name(), topic)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")
	q.Set("language", i18n.Language(locale))
	q.Set("format", "json")

	var geo geocodingResponse
	if err := p.http.getJSON(ctx, p.Name(), p.geocodingURL+"?"+q.Encode(), &geo); err != nil {
		return "", err
	}
	if len(geo.Results) == 0 {
		return "", notFound(p.Name(), city)
	}
	place := geo.Results[0]

	q = url.Values{}
	q.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', -1, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	q.Set("hourly", "temperature_2m")
	q.Set("timezone", "auto")

	var fc forecastResponse
	if err := p.http.getJSON(ctx, p.Name(), p.forecastURL+"?"+q.Encode(), &fc); err != nil {
		return "", err
	}
	if len(fc.Daily.TemperatureMax) == 0 || len(fc.Daily.TemperatureMin) == 0 ||
		len(fc.Hourly.Temperature) <= openMeteoHours[3] {
		return "", apperrors.NewProviderError(p.Name(), "incomplete forecast", nil)
	}

	name := place.Name
	if place.Country != "" {
		name += ", " + place.Country
	}

	maxTemp := fc.Daily.TemperatureMax[0]
	minTemp := fc.Daily.TemperatureMin[0]
	var rain float64
	if len(fc.Daily.RainMax) > 0 {
		rain = fc.Daily.RainMax[0]
	}
	hourly := fc.Hourly.Temperature

	return formatForecast(locale, forecast{
		Place:    name,
		RainText: fmt.Sprintf("%s (%.0f%%)", rainText(locale, rain), rain),
		Morning:  formatTemp(hourly[openMeteoHours[0]]),
		Day:      formatTemp(hourly[openMeteoHours[1]]),
		Evening:  formatTemp(hourly[openMeteoHours[2]]),
		Night:    formatTemp(hourly[openMeteoHours[3]]),
		Max:      formatTemp(maxTemp),
		Min:      formatTemp(minTemp),
		Avg:      formatTemp(math.Round((maxTemp+minTemp)/2*10) / 10),
	}), nil
}

// forecast holds preformatted values shared by the weather providers.
type forecast struct {
	Place       string
	RainText    string
	Morning     string
	Day         string
	Evening     string
	Night       string
	Max         string
	Min         string
	Avg         string
	Description string
}

func rainText(locale string, probability float64) string {
	if probability > 50 {
		return i18n.Text(locale, i18n.KeyRainYes)
	}
	return i18n.Text(locale, i18n.KeyRainNo)
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatForecast(locale string, f forecast) string {
	t := func(key string) string { return i18n.Text(locale, key) }

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", t(i18n.KeyForecast), f.Place)
	fmt.Fprintf(&b, "%s\n\n", f.RainText)
	fmt.Fprintf(&b, "%s: %s°C\n", t(i18n.KeyMorning), f.Morning)
	fmt.Fprintf(&b, "%s: %s°C\n", t(i18n.KeyDay), f.Day)
	fmt.Fprintf(&b, "%s: %s°C\n", t(i18n.KeyEvening), f.Evening)
	fmt.Fprintf(&b, "%s: %s°C\n\n", t(i18n.KeyNight), f.Night)
	fmt.Fprintf(&b, "%s: %s°C\n", t(i18n.KeyMax), f.Max)
	fmt.Fprintf(&b, "%s: %s°C\n", t(i18n.KeyMin), f.Min)
	fmt.Fprintf(&b, "%s: %s°C", t(i18n.KeyAvg), f.Avg)
	if f.Description != "" {
		fmt.Fprintf(&b, "\n📝 %s", f.Description)
	}
	return b.String()
}
