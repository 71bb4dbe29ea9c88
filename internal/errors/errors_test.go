package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

func TestCode(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "validation", err: apperrors.NewValidationError("bad time", nil), want: apperrors.CodeValidation},
		{name: "provider", err: apperrors.NewProviderError("wttr", "status 500", cause), want: apperrors.CodeProvider},
		{name: "delivery", err: apperrors.NewDeliveryError(42, cause), want: apperrors.CodeDelivery},
		{name: "database", err: apperrors.NewDatabaseError("insert failed", cause), want: apperrors.CodeDatabase},
		{name: "config", err: apperrors.NewConfigError("missing token", nil), want: apperrors.CodeConfig},
		{name: "unauthorized", err: apperrors.NewUnauthorizedError("admins only"), want: apperrors.CodeUnauthorized},
		{name: "wrapped", err: fmt.Errorf("tick: %w", apperrors.NewDeliveryError(1, cause)), want: apperrors.CodeDelivery},
		{name: "plain", err: cause, want: apperrors.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, apperrors.Code(tt.err))
		})
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("connection refused")
	err := apperrors.NewProviderError("open-meteo", "geocoding request failed", cause)

	assert.Equal(t, "open-meteo: geocoding request failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, apperrors.IsProvider(err))
	assert.False(t, apperrors.IsDelivery(err))

	var perr *apperrors.ProviderError
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, "open-meteo", perr.Provider)
		assert.Equal(t, "open-meteo: geocoding request failed", perr.Message())
	}
}

func TestDeliveryErrorCarriesUser(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("notify: %w", apperrors.NewDeliveryError(42, stderrors.New("chat not found")))

	var derr *apperrors.DeliveryError
	if assert.ErrorAs(t, err, &derr) {
		assert.Equal(t, int64(42), derr.UserID)
	}
	assert.True(t, apperrors.IsDelivery(err))
	assert.False(t, apperrors.IsValidation(err))
}
