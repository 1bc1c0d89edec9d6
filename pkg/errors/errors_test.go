package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	err := InvalidInput("quantity must be positive")
	assert.Equal(t, "INVALID_INPUT: quantity must be positive", err.Error())

	wrapped := DraftBuild(errors.New("boom"))
	assert.Contains(t, wrapped.Error(), "DRAFT_BUILD_FAILED")
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestAppError_Unwrap(t *testing.T) {
	assert.ErrorIs(t, NotFound("session", "abc"), ErrNotFound)
	assert.ErrorIs(t, InvalidInput("bad"), ErrInvalidInput)
	assert.ErrorIs(t, MissingShippingInfo(), ErrInvalidCheckout)
	assert.ErrorIs(t, EmptyCart(), ErrInvalidCheckout)
	assert.ErrorIs(t, PaymentFailed("declined"), ErrPaymentFailed)
	assert.ErrorIs(t, DraftBuild(errors.New("boom")), ErrDraftBuild)
}

func TestMissingShippingInfoAndEmptyCartAreDistinct(t *testing.T) {
	shipping := MissingShippingInfo()
	cart := EmptyCart()

	assert.NotEqual(t, shipping.Code, cart.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, shipping.Status)
	assert.Equal(t, http.StatusUnprocessableEntity, cart.Status)
}

func TestPaymentFailed_DefaultMessage(t *testing.T) {
	err := PaymentFailed("")
	assert.Equal(t, "payment failed, please try again", err.Message)

	err = PaymentFailed("card declined")
	assert.Equal(t, "card declined", err.Message)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("session", "abc"), http.StatusNotFound},
		{InvalidInput("bad"), http.StatusBadRequest},
		{MissingShippingInfo(), http.StatusUnprocessableEntity},
		{PaymentFailed("declined"), http.StatusUnprocessableEntity},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", ErrPaymentFailed), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "error %v", tt.err)
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("boom")
	wrapped := Wrap(base, "load cart")

	require.Error(t, wrapped)
	assert.Equal(t, "load cart: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
}
