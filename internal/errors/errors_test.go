package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := Validation("check_out must be after check_in")
	wrapped := fmt.Errorf("create reservation: %w", base)

	assert.Equal(t, KindValidation, KindOf(base))
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindValidation))
	assert.False(t, Is(wrapped, KindCapacity))
	assert.Equal(t, KindUnknown, KindOf(stderrors.New("boom")))
	assert.False(t, Is(nil, KindUnknown))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("duplicate key")
	err := Wrap(KindConflict, cause, "vip code already issued")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "vip code already issued: duplicate key", err.Error())
}

func TestToHTTP(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", Validation("bad interval"), http.StatusBadRequest, "bad interval"},
		{"capacity", New(KindCapacity, "no space"), http.StatusConflict, "no space"},
		{"promo", New(KindPromoCode, "promo code expired"), http.StatusUnprocessableEntity, "promo code expired"},
		{"not found", NotFound("reservation 7 not found"), http.StatusNotFound, "reservation 7 not found"},
		{"pricing is masked", New(KindPricingConfiguration, "override -5 for category 3"), http.StatusInternalServerError, "internal error"},
		{"unknown is masked", stderrors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := ToHTTP(tt.err)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.message, httpErr.Message)
		})
	}
}
