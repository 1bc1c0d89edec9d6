package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for the checkout finalization domain.
//
// Storage-layer failures (primary store, fallback cache, cart clear) are
// deliberately NOT represented here: they are carried as outcome values so
// callers can assert on them without exceptions-as-control-flow.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidCheckout = errors.New("invalid checkout context")
	ErrDraftBuild      = errors.New("order draft construction failed")
	ErrPaymentFailed   = errors.New("payment failed")
	ErrInternal        = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// MissingShippingInfo creates a 422 error for a checkout context without a
// usable shipping address. Distinct from EmptyCart so the caller can show a
// targeted error view.
func MissingShippingInfo() *AppError {
	return &AppError{
		Code:    "MISSING_SHIPPING_INFO",
		Message: "please complete the shipping information before proceeding to payment",
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrInvalidCheckout,
	}
}

// EmptyCart creates a 422 error for a checkout context with no valid cart items.
func EmptyCart() *AppError {
	return &AppError{
		Code:    "EMPTY_CART",
		Message: "add some items to your cart before proceeding to checkout",
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrInvalidCheckout,
	}
}

// DraftBuild creates a 500 error for an unexpected failure assembling the order draft.
func DraftBuild(err error) *AppError {
	return &AppError{
		Code:    "DRAFT_BUILD_FAILED",
		Message: "failed to prepare order, please try again",
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrDraftBuild, err),
	}
}

// PaymentFailed creates a 422 error carrying the payment collaborator's message.
func PaymentFailed(message string) *AppError {
	if message == "" {
		message = "payment failed, please try again"
	}
	return &AppError{
		Code:    "PAYMENT_FAILED",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrPaymentFailed,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCheckout), errors.Is(err, ErrPaymentFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
