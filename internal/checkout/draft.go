package checkout

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
)

// DraftBuilder assembles immutable order drafts. The identifier and clock
// functions are injectable for tests.
type DraftBuilder struct {
	newID func() string
	now   func() time.Time
}

// NewDraftBuilder creates a builder using UUID identifiers and UTC wall time.
func NewDraftBuilder() *DraftBuilder {
	return &DraftBuilder{
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NewDraftBuilderWithClock creates a builder with injected identifier and
// clock functions.
func NewDraftBuilderWithClock(newID func() string, now func() time.Time) *DraftBuilder {
	return &DraftBuilder{newID: newID, now: now}
}

// Build captures the sanitized items, address and totals into a new draft with
// a freshly generated identifier. The items slice is copied so later cart
// mutations cannot leak into the snapshot. Every attempt gets a new draft;
// identifiers are never reused across attempts.
func (b *DraftBuilder) Build(items []domain.CartLineItem, addr domain.ShippingAddress, totals domain.OrderTotals) (domain.OrderDraft, error) {
	if len(items) == 0 {
		return domain.OrderDraft{}, fmt.Errorf("build order draft: no line items")
	}
	if totals.Total < 0 {
		return domain.OrderDraft{}, fmt.Errorf("build order draft: negative total %d", totals.Total)
	}

	captured := make([]domain.CartLineItem, len(items))
	copy(captured, items)

	return domain.OrderDraft{
		ID:              b.newID(),
		Totals:          totals,
		Items:           captured,
		ShippingAddress: addr,
		PaymentMethod:   domain.PaymentMethodCard,
		CreatedAt:       b.now(),
	}, nil
}
