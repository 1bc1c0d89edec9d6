package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/Abanoub-Magdy-gabra/style-checkout/pkg/errors"
	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/httputil"
	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/validator"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/service"
)

// CheckoutHandler serves the checkout confirmation session endpoints.
type CheckoutHandler struct {
	finalizer *service.Finalizer
	logger    *slog.Logger
}

// NewCheckoutHandler creates a checkout HTTP handler.
func NewCheckoutHandler(finalizer *service.Finalizer, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{finalizer: finalizer, logger: logger}
}

type shippingAddressRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (r *shippingAddressRequest) toDomain() *domain.ShippingAddress {
	if r == nil {
		return nil
	}
	return &domain.ShippingAddress{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address1:   r.Address1,
		Address2:   r.Address2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// createSessionRequest opens a confirmation session. The shipping address is
// optional at the transport level; its completeness is a domain rule with its
// own error code, not a 400.
type createSessionRequest struct {
	CartID          string                  `json:"cart_id" validate:"required"`
	ShippingMethod  string                  `json:"shipping_method" validate:"omitempty,oneof=standard express same-day"`
	ShippingAddress *shippingAddressRequest `json:"shipping_address"`
}

type paymentSuccessRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	LastFour  string `json:"last_four" validate:"omitempty,len=4"`
	CardBrand string `json:"card_brand"`
	Simulated bool   `json:"simulated"`
}

type paymentFailureRequest struct {
	Message string `json:"message"`
}

// CreateSession handles POST /api/v1/checkout/confirmation.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	snap, err := h.finalizer.CreateSession(r.Context(), service.CreateSessionInput{
		CartID:         req.CartID,
		UserID:         userIDFromHeader(r),
		ShippingMethod: req.ShippingMethod,
		Address:        req.ShippingAddress.toDomain(),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: snap})
}

// GetSession handles GET /api/v1/checkout/confirmation/{sessionID}.
func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.finalizer.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// PaymentSuccess handles POST /api/v1/checkout/confirmation/{sessionID}/payment.
func (h *CheckoutHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	var req paymentSuccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	snap, err := h.finalizer.HandlePaymentSuccess(r.Context(), chi.URLParam(r, "sessionID"), domain.PaymentResult{
		PaymentID: req.PaymentID,
		LastFour:  req.LastFour,
		CardBrand: req.CardBrand,
		Simulated: req.Simulated,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: snap})
}

// PaymentFailure handles POST /api/v1/checkout/confirmation/{sessionID}/payment-failure.
func (h *CheckoutHandler) PaymentFailure(w http.ResponseWriter, r *http.Request) {
	var req paymentFailureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}

	snap, err := h.finalizer.HandlePaymentFailure(r.Context(), chi.URLParam(r, "sessionID"), req.Message)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// Retry handles POST /api/v1/checkout/confirmation/{sessionID}/retry.
func (h *CheckoutHandler) Retry(w http.ResponseWriter, r *http.Request) {
	snap, err := h.finalizer.Retry(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// Teardown handles DELETE /api/v1/checkout/confirmation/{sessionID}.
func (h *CheckoutHandler) Teardown(w http.ResponseWriter, r *http.Request) {
	if err := h.finalizer.Teardown(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// userIDFromHeader reads the optional X-User-ID header. Anonymous checkouts
// have no user id; orders are persisted with a NULL user in that case.
func userIDFromHeader(r *http.Request) *string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return &id
	}
	return nil
}
