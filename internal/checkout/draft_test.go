package checkout

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
)

func testClockBuilder() *DraftBuilder {
	var n int
	return NewDraftBuilderWithClock(
		func() string {
			n++
			return fmt.Sprintf("draft-%d", n)
		},
		func() time.Time {
			return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
		},
	)
}

func TestDraftBuilder_Build(t *testing.T) {
	b := testClockBuilder()

	items := []domain.CartLineItem{
		{ProductID: "p1", Name: "Shirt", UnitPrice: 100, Quantity: 2},
	}
	addr := *validAddress()
	totals := domain.OrderTotals{Subtotal: 200, ShippingCost: 150, Tax: 28, Total: 378}

	draft, err := b.Build(items, addr, totals)
	require.NoError(t, err)

	assert.Equal(t, "draft-1", draft.ID)
	assert.Equal(t, totals, draft.Totals)
	assert.Equal(t, addr, draft.ShippingAddress)
	assert.Equal(t, domain.PaymentMethodCard, draft.PaymentMethod)
	assert.Equal(t, time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC), draft.CreatedAt)
}

func TestDraftBuilder_CopiesItems(t *testing.T) {
	b := testClockBuilder()

	items := []domain.CartLineItem{
		{ProductID: "p1", Name: "Shirt", UnitPrice: 100, Quantity: 2},
	}

	draft, err := b.Build(items, *validAddress(), domain.OrderTotals{Total: 378})
	require.NoError(t, err)

	items[0].Quantity = 99
	assert.Equal(t, 2, draft.Items[0].Quantity)
}

func TestDraftBuilder_FreshIDPerAttempt(t *testing.T) {
	b := testClockBuilder()

	items := []domain.CartLineItem{
		{ProductID: "p1", Name: "Shirt", UnitPrice: 100, Quantity: 1},
	}

	first, err := b.Build(items, *validAddress(), domain.OrderTotals{Total: 100})
	require.NoError(t, err)
	second, err := b.Build(items, *validAddress(), domain.OrderTotals{Total: 100})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestDraftBuilder_RejectsEmptyItems(t *testing.T) {
	b := testClockBuilder()

	_, err := b.Build(nil, *validAddress(), domain.OrderTotals{})
	assert.Error(t, err)
}

func TestDraftBuilder_RejectsNegativeTotal(t *testing.T) {
	b := testClockBuilder()

	items := []domain.CartLineItem{
		{ProductID: "p1", Name: "Shirt", UnitPrice: 100, Quantity: 1},
	}

	_, err := b.Build(items, *validAddress(), domain.OrderTotals{Total: -1})
	assert.Error(t, err)
}
