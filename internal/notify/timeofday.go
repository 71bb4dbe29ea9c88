package notify

import (
	"strings"
	"time"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

// MinuteLayout is the canonical delivery time format.
const MinuteLayout = "15:04"

// ParseDeliveryTime validates a 24-hour H:MM or HH:MM string and returns it
// zero-padded.
func ParseDeliveryTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperrors.NewValidationError("delivery time is empty", nil)
	}
	t, err := time.Parse(MinuteLayout, s)
	if err != nil {
		return "", apperrors.NewValidationError("invalid delivery time "+s+", expected HH:MM", err)
	}
	return t.Format(MinuteLayout), nil
}

// MinuteOf formats t in its own location at minute precision.
func MinuteOf(t time.Time) string {
	return t.Format(MinuteLayout)
}
