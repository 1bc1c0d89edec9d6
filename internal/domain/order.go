package domain

import (
	"time"
)

// Persisted order status constants. Simulated payments are recorded as demo
// orders so they can never be mistaken for real ones.
const (
	OrderStatusDemo       = "demo"
	OrderStatusProcessing = "processing"

	PaymentStatusDemoPaid = "demo_paid"
	PaymentStatusPaid     = "paid"

	PaymentMethodDemoCard = "demo_card"
	PaymentMethodCard     = "card"
)

// Shipping method keys recognized by the total calculator.
const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
	ShippingSameDay  = "same-day"
)

// RawCartEntry is an unsanitized cart entry as supplied by the shipping/payment
// UI. Price and Quantity are pointers so that an absent field can be told apart
// from a zero value during sanitation.
type RawCartEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    *int64 `json:"price"`
	Quantity *int   `json:"quantity"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
	ImageURL string `json:"image,omitempty"`
}

// CartLineItem is a sanitized cart entry. Invariants: Quantity > 0, UnitPrice >= 0.
// UnitPrice is in source currency units before normalization.
type CartLineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	ImageURL  string `json:"image,omitempty"`
}

// ShippingAddress is the delivery address collected by the external shipping
// form. Required fields are believed validated there; the checkout validator
// re-checks only first name, email and address line 1.
type ShippingAddress struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OrderTotals holds the derived monetary amounts, all in normalized currency
// units. Invariant: Total == Subtotal + ShippingCost + Tax exactly.
type OrderTotals struct {
	Subtotal     int64 `json:"subtotal"`
	ShippingCost int64 `json:"shipping_cost"`
	Tax          int64 `json:"tax"`
	Total        int64 `json:"total"`
}

// PaymentResult is the attestation returned by the external payment simulator.
// The core does not validate payment authenticity.
type PaymentResult struct {
	PaymentID string `json:"payment_id"`
	LastFour  string `json:"last_four"`
	CardBrand string `json:"card_brand"`
	Simulated bool   `json:"simulated"`
}

// OrderDraft is an immutable snapshot of an order's content prior to durable
// persistence. It is created once per checkout attempt and owned exclusively
// by one finalization run; a retry builds a new draft with a new identifier.
type OrderDraft struct {
	ID              string          `json:"id"`
	Totals          OrderTotals     `json:"totals"`
	Items           []CartLineItem  `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Persistence targets.
const (
	TargetPrimary  = "primary"
	TargetFallback = "fallback"
)

// PersistenceOutcome reports the result of a single write target.
type PersistenceOutcome struct {
	Target    string `json:"target"`
	Succeeded bool   `json:"succeeded"`
	Reason    string `json:"reason,omitempty"`
}

// Failed constructs a failed outcome for the given target.
func Failed(target string, err error) PersistenceOutcome {
	return PersistenceOutcome{Target: target, Reason: err.Error()}
}

// Succeeded constructs a successful outcome for the given target.
func Succeeded(target string) PersistenceOutcome {
	return PersistenceOutcome{Target: target, Succeeded: true}
}

// FallbackItem is the compact line-item shape stored in the fallback cache.
type FallbackItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	ImageURL string `json:"image,omitempty"`
}

// FallbackRecord is the denormalized order copy kept in the fallback cache for
// resilience and display even if the primary store fails.
type FallbackRecord struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"order_number"`
	Date              time.Time       `json:"date"`
	Status            string          `json:"status"`
	Total             int64           `json:"total"`
	Items             []FallbackItem  `json:"items"`
	ShippingAddress   ShippingAddress `json:"shipping_address"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentID         string          `json:"payment_id"`
	EstimatedDelivery string          `json:"estimated_delivery"`
}

// NavigationPayload is emitted on the terminal Succeeded transition and
// consumed by the order-confirmation view.
type NavigationPayload struct {
	OrderID           string          `json:"order_id"`
	OrderNumber       string          `json:"order_number,omitempty"`
	PaymentID         string          `json:"payment_id"`
	Totals            OrderTotals     `json:"totals"`
	Items             []CartLineItem  `json:"items"`
	ShippingAddress   ShippingAddress `json:"shipping_address"`
	PaymentMethod     string          `json:"payment_method"`
	Status            string          `json:"status"`
	LastFour          string          `json:"last_four"`
	CardBrand         string          `json:"card_brand"`
	OrderDate         time.Time       `json:"order_date"`
	Simulated         bool            `json:"simulated"`
	EstimatedDelivery string          `json:"estimated_delivery,omitempty"`
}
