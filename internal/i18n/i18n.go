// Package i18n holds the localized text used in weather and news digests.
package i18n

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Fallback is the locale used when a locale or key is missing.
const Fallback = "en"

// Text keys.
const (
	KeyWelcome    = "welcome"
	KeyRainYes    = "rain_yes"
	KeyRainNo     = "rain_no"
	KeyForecast   = "forecast"
	KeyMorning    = "morning"
	KeyDay        = "day"
	KeyEvening    = "evening"
	KeyNight      = "night"
	KeyMax        = "max"
	KeyMin        = "min"
	KeyAvg        = "avg"
	KeyNewsHeader = "news_header"
)

var catalog = map[string]map[string]string{
	"en": {
		KeyWelcome:    "Welcome! Use /subscribe <city> <HH:MM>",
		KeyRainYes:    "🌧 Rain expected",
		KeyRainNo:     "☀️ No rain expected",
		KeyForecast:   "📅 Forecast for",
		KeyMorning:    "🌅 Morning",
		KeyDay:        "🌞 Day",
		KeyEvening:    "🌆 Evening",
		KeyNight:      "🌙 Night",
		KeyMax:        "⬆️ Max",
		KeyMin:        "⬇️ Min",
		KeyAvg:        "🌡 Avg",
		KeyNewsHeader: "🗞 Latest news:",
	},
	"es": {
		KeyWelcome:    "¡Bienvenido! Usa /subscribe <ciudad> <HH:MM>",
		KeyRainYes:    "🌧 Lluvia probable",
		KeyRainNo:     "☀️ Sin lluvia",
		KeyForecast:   "📅 Pronóstico para",
		KeyMorning:    "🌅 Mañana",
		KeyDay:        "🌞 Día",
		KeyEvening:    "🌆 Tarde",
		KeyNight:      "🌙 Noche",
		KeyMax:        "⬆️ Máx",
		KeyMin:        "⬇️ Mín",
		KeyAvg:        "🌡 Prom",
		KeyNewsHeader: "🗞 Últimas noticias:",
	},
	"fr": {
		KeyWelcome:    "Bienvenue ! Utilisez /subscribe <ville> <HH:MM>",
		KeyRainYes:    "🌧 Pluie prévue",
		KeyRainNo:     "☀️ Pas de pluie prévue",
		KeyForecast:   "📅 Prévisions pour",
		KeyMorning:    "🌅 Matin",
		KeyDay:        "🌞 Journée",
		KeyEvening:    "🌆 Soirée",
		KeyNight:      "🌙 Nuit",
		KeyMax:        "⬆️ Max",
		KeyMin:        "⬇️ Min",
		KeyAvg:        "🌡 Moy",
		KeyNewsHeader: "🗞 Dernières nouvelles :",
	},
	"de": {
		KeyWelcome:    "Willkommen! Nutze /subscribe <Stadt> <HH:MM>",
		KeyRainYes:    "🌧 Regen erwartet",
		KeyRainNo:     "☀️ Kein Regen erwartet",
		KeyForecast:   "📅 Vorhersage für",
		KeyMorning:    "🌅 Morgen",
		KeyDay:        "🌞 Tag",
		KeyEvening:    "🌆 Abend",
		KeyNight:      "🌙 Nacht",
		KeyMax:        "⬆️ Max",
		KeyMin:        "⬇️ Min",
		KeyAvg:        "🌡 Schn",
		KeyNewsHeader: "🗞 Aktuelle Nachrichten:",
	},
	"it": {
		KeyWelcome:    "Benvenuto! Usa /subscribe <città> <HH:MM>",
		KeyRainYes:    "🌧 Pioggia prevista",
		KeyRainNo:     "☀️ Niente pioggia",
		KeyForecast:   "📅 Meteo per",
		KeyMorning:    "🌅 Mattina",
		KeyDay:        "🌞 Giorno",
		KeyEvening:    "🌆 Sera",
		KeyNight:      "🌙 Notte",
		KeyMax:        "⬆️ Max",
		KeyMin:        "⬇️ Min",
		KeyAvg:        "🌡 Media",
		KeyNewsHeader: "🗞 Ultime notizie:",
	},
	"pt": {
		KeyWelcome:    "Bem-vindo! Use /subscribe <cidade> <HH:MM>",
		KeyRainYes:    "🌧 Chuva esperada",
		KeyRainNo:     "☀️ Sem chuva",
		KeyForecast:   "📅 Previsão para",
		KeyMorning:    "🌅 Manhã",
		KeyDay:        "🌞 Dia",
		KeyEvening:    "🌆 Tarde",
		KeyNight:      "🌙 Noite",
		KeyMax:        "⬆️ Máx",
		KeyMin:        "⬇️ Mín",
		KeyAvg:        "🌡 Méd",
		KeyNewsHeader: "🗞 Últimas notícias:",
	},
	"ru": {
		KeyWelcome:    "Добро пожаловать! Используйте /subscribe <город> <ЧЧ:ММ>",
		KeyRainYes:    "🌧 Ожидается дождь",
		KeyRainNo:     "☀️ Без осадков",
		KeyForecast:   "📅 Прогноз для",
		KeyMorning:    "🌅 Утро",
		KeyDay:        "🌞 День",
		KeyEvening:    "🌆 Вечер",
		KeyNight:      "🌙 Ночь",
		KeyMax:        "⬆️ Макс",
		KeyMin:        "⬇️ Мин",
		KeyAvg:        "🌡 Сред",
		KeyNewsHeader: "🗞 Последние новости:",
	},
	"ua": {
		KeyWelcome:    "Вітаємо! Використовуйте /subscribe <місто> <ГГ:ХХ>",
		KeyRainYes:    "🌧 Очікується дощ",
		KeyRainNo:     "☀️ Без опадів",
		KeyForecast:   "📅 Прогноз для",
		KeyMorning:    "🌅 Ранок",
		KeyDay:        "🌞 День",
		KeyEvening:    "🌆 Вечір",
		KeyNight:      "🌙 Ніч",
		KeyMax:        "⬆️ Макс",
		KeyMin:        "⬇️ Мін",
		KeyAvg:        "🌡 Середня",
		KeyNewsHeader: "🗞 Останні новини:",
	},
}

// aliases maps ISO 639-1 codes to catalog keys that differ from them.
var aliases = map[string]string{
	"uk": "ua",
}

// Normalize maps a Telegram language_code or user input ("pt-BR", "uk",
// "en_US") to a supported catalog locale.
func Normalize(tag string) (string, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return "", false
	}
	if _, ok := catalog[tag]; ok {
		return tag, true
	}

	parsed, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	base, _ := parsed.Base()
	code := base.String()
	if alias, ok := aliases[code]; ok {
		code = alias
	}
	if _, ok := catalog[code]; !ok {
		return "", false
	}
	return code, true
}

// Text returns the text for key in locale, falling back to English.
func Text(locale, key string) string {
	if table, ok := catalog[locale]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	return catalog[Fallback][key]
}

// Supported returns the supported locales in sorted order.
func Supported() []string {
	out := make([]string, 0, len(catalog))
	for code := range catalog {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Language returns the ISO code to send to upstream APIs for a catalog locale.
func Language(locale string) string {
	if locale == "ua" {
		return "uk"
	}
	if _, ok := catalog[locale]; !ok {
		return Fallback
	}
	return locale
}
