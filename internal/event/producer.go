package event

import (
	"context"
	"time"

	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/kafka"
	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/logger"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
)

// Topics for checkout finalization events.
const (
	TopicOrderFinalized     = "style.order.finalized"
	TopicFinalizationFailed = "style.order.finalization_failed"
)

const (
	eventTypeOrderFinalized     = "order.finalized"
	eventTypeFinalizationFailed = "order.finalization_failed"

	aggregateTypeOrder = "order"
	source             = "checkout-service"
)

// OrderFinalizedPayload is the data carried by an order.finalized event.
type OrderFinalizedPayload struct {
	OrderID         string                 `json:"order_id"`
	OrderNumber     string                 `json:"order_number,omitempty"`
	PaymentID       string                 `json:"payment_id"`
	Status          string                 `json:"status"`
	PaymentMethod   string                 `json:"payment_method"`
	Totals          domain.OrderTotals     `json:"totals"`
	Items           []domain.CartLineItem  `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	Simulated       bool                   `json:"simulated"`
	OrderDate       time.Time              `json:"order_date"`
}

// FinalizationFailedPayload is the data carried by an
// order.finalization_failed event.
type FinalizationFailedPayload struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// Publisher emits finalization lifecycle events to Kafka.
type Publisher struct {
	producer *kafka.Producer
}

// NewPublisher creates a finalization event publisher.
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{producer: producer}
}

// OrderFinalized publishes the terminal success of a finalization run.
func (p *Publisher) OrderFinalized(ctx context.Context, nav domain.NavigationPayload) error {
	payload := OrderFinalizedPayload{
		OrderID:         nav.OrderID,
		OrderNumber:     nav.OrderNumber,
		PaymentID:       nav.PaymentID,
		Status:          nav.Status,
		PaymentMethod:   nav.PaymentMethod,
		Totals:          nav.Totals,
		Items:           nav.Items,
		ShippingAddress: nav.ShippingAddress,
		Simulated:       nav.Simulated,
		OrderDate:       nav.OrderDate,
	}

	ev, err := kafka.NewEvent(eventTypeOrderFinalized, nav.OrderID, aggregateTypeOrder, source, payload)
	if err != nil {
		return err
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}

	return p.producer.Publish(ctx, TopicOrderFinalized, ev)
}

// FinalizationFailed publishes the terminal failure of a finalization run.
func (p *Publisher) FinalizationFailed(ctx context.Context, orderID, reason string) error {
	payload := FinalizationFailedPayload{
		OrderID: orderID,
		Reason:  reason,
	}

	ev, err := kafka.NewEvent(eventTypeFinalizationFailed, orderID, aggregateTypeOrder, source, payload)
	if err != nil {
		return err
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}

	return p.producer.Publish(ctx, TopicFinalizationFailed, ev)
}
