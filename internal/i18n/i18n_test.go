package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "en", want: "en", ok: true},
		{in: "ES", want: "es", ok: true},
		{in: "pt-BR", want: "pt", ok: true},
		{in: "en_US", want: "en", ok: true},
		{in: "uk", want: "ua", ok: true},
		{in: "ua", want: "ua", ok: true},
		{in: " ru ", want: "ru", ok: true},
		{in: "ja", ok: false},
		{in: "", ok: false},
		{in: "not a tag", ok: false},
	}

	for _, tt := range tests {
		got, ok := Normalize(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestTextFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "🌧 Regen erwartet", Text("de", KeyRainYes))
	assert.Equal(t, "🌧 Rain expected", Text("xx", KeyRainYes))
	assert.Equal(t, "", Text("en", "missing"))
}

func TestEveryLocaleHasEveryKey(t *testing.T) {
	t.Parallel()

	for _, code := range Supported() {
		for key := range catalog[Fallback] {
			assert.NotEmpty(t, catalog[code][key], "locale %s key %s", code, key)
		}
	}
}

func TestSupportedAndLanguage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"de", "en", "es", "fr", "it", "pt", "ru", "ua"}, Supported())
	assert.Equal(t, "uk", Language("ua"))
	assert.Equal(t, "fr", Language("fr"))
	assert.Equal(t, "en", Language("zz"))
}
