package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/repository"
)

// --- Mock Order Store ---

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) InsertOrderHeader(ctx context.Context, header repository.OrderHeader) (*repository.InsertedOrder, error) {
	args := m.Called(ctx, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.InsertedOrder), args.Error(1)
}

func (m *mockOrderStore) InsertOrderItems(ctx context.Context, rows []repository.OrderItemRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

// --- Mock Fallback Cache ---

type mockFallbackCache struct {
	mock.Mock
}

func (m *mockFallbackCache) Prepend(ctx context.Context, record domain.FallbackRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{13}-[0-9A-Z]{6}$`)

func sampleDraft() domain.OrderDraft {
	return domain.OrderDraft{
		ID: "draft-001",
		Totals: domain.OrderTotals{
			Subtotal:     200,
			ShippingCost: 150,
			Tax:          28,
			Total:        378,
		},
		Items: []domain.CartLineItem{
			{ProductID: "p1", Name: "Shirt", UnitPrice: 100, Quantity: 2, Size: "M"},
		},
		ShippingAddress: domain.ShippingAddress{
			FirstName: "Nour",
			Email:     "nour@example.com",
			Address1:  "12 Tahrir Sq",
		},
		PaymentMethod: domain.PaymentMethodCard,
		CreatedAt:     time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
}

func samplePayment() domain.PaymentResult {
	return domain.PaymentResult{
		PaymentID: "pay-001",
		LastFour:  "4242",
		CardBrand: "visa",
		Simulated: true,
	}
}

func insertedOrder() *repository.InsertedOrder {
	return &repository.InsertedOrder{
		StorageID:   "row-123",
		OrderNumber: "ORD-1767052800000-ABC123",
		CreatedAt:   time.Date(2026, time.March, 10, 12, 0, 1, 0, time.UTC),
	}
}

func TestCoordinator_Persist_BothTargetsSucceed(t *testing.T) {
	store := new(mockOrderStore)
	cache := new(mockFallbackCache)

	store.On("InsertOrderHeader", mock.Anything, mock.Anything).Return(insertedOrder(), nil)
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)
	cache.On("Prepend", mock.Anything, mock.Anything).Return(nil)

	c := NewCoordinator(store, cache, newTestLogger())
	result := c.Persist(context.Background(), sampleDraft(), samplePayment(), nil)

	assert.True(t, result.Primary.Succeeded)
	assert.True(t, result.Fallback.Succeeded)
	assert.Equal(t, "row-123", result.StorageID)
	assert.Equal(t, "ORD-1767052800000-ABC123", result.OrderNumber)
	assert.Equal(t, "Sunday, March 15, 2026", result.EstimatedDelivery)

	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCoordinator_Persist_SimulatedPaymentUsesDemoStatuses(t *testing.T) {
	store := new(mockOrderStore)
	cache := new(mockFallbackCache)

	var header repository.OrderHeader
	store.On("InsertOrderHeader", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			header = args.Get(1).(repository.OrderHeader)
		}).
		Return(insertedOrder(), nil)
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)

	var record domain.FallbackRecord
	cache.On("Prepend", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			record = args.Get(1).(domain.FallbackRecord)
		}).
		Return(nil)

	c := NewCoordinator(store, cache, newTestLogger())
	c.Persist(context.Background(), sampleDraft(), samplePayment(), nil)

	assert.Equal(t, domain.OrderStatusDemo, header.Status)
	assert.Equal(t, domain.PaymentStatusDemoPaid, header.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodDemoCard, header.PaymentMethod)
	assert.Equal(t, domain.OrderStatusDemo, record.Status)
	assert.Equal(t, domain.PaymentMethodDemoCard, record.PaymentMethod)
}

func TestCoordinator_Persist_RealPaymentUsesLiveStatuses(t *testing.T) {
	store := new(mockOrderStore)
	cache := new(mockFallbackCache)

	var header repository.OrderHeader
	store.On("InsertOrderHeader", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			header = args.Get(1).(repository.OrderHeader)
		}).
		Return(insertedOrder(), nil)
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)
	cache.On("Prepend", mock.Anything, mock.Anything).Return(nil)

	pay := samplePayment()
	pay.Simulated = false

	c := NewCoordinator(store, cache, newTestLogger())
	c.Persist(context.Background(), sampleDraft(), pay, nil)

	assert.Equal(t, domain.OrderStatusProcessing, header.Status)
	assert.Equal(t, domain.PaymentStatusPaid, header.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodCard, header.PaymentMethod)
}

func TestCoordinator_Persist_BillingMirrorsShipping(t *testing.T) {
	store := new(mockOrderStore)
	cache := new(mockFallbackCache)

	var header repository.OrderHeader
	store.On("InsertOrderHeader", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			header = args.Get(1).(repository.OrderHeader)
		}).
		Return(insertedOrder(), nil)
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)
	cache.On("Prepend", mock.Anything, mock.Anything).Return(nil)

	draft := sampleDraft()
	c := NewCoordinator(store, cache, newTestLogger())
	c.Persist(context.Background(), draft, samplePayment(), nil)

	assert.Equal(t, draft.ShippingAddress, header.BillingAddress)
}

func TestCoordinator_Persist_HeaderFailureDoesNotAffectFallback(t *testing.T) {
	store := new(mockOrderStore)
	cache := new(mockFallbackCache)

	store.On("InsertOrderHeader", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))
	cache.On("Prepend", mock.Anything, mock.Anything).Return(nil)

	c := NewCoordinator(store, cache, newTestLogger())
	result := c.Persist(context.Background(), sampleDraft(), samplePayment(), nil)

	assert.False(t, result.Primary.Succeeded)
	assert.Contains(t, result.Primary.Reason, "connection refused")
	assert.True(t, result.Fallback.Succeeded)
	assert.Empty(t, result.StorageID)
	assert.Regexp(t, orderNumberPattern, result.OrderNumber)

	store.AssertNotCalled(t, "InsertOrderItems", mock.Anything, mock.Anything)
}

func TestCoordinator_Persist_ItemFailureIsPrimaryFailure(t *testing.T) {
	store := new(mockOrderStore)
	cache := new(mockFallbackCache)

	store.On("InsertOrderHeader", mock.Anything, mock.Anything).Return(insertedOrder(), nil)
	store.On("InsertOrderItems", mock.Anything, mock.Anything).
		Return(errors.New("deadlock detected"))
	cache.On("Prepend", mock.Anything, mock.Anything).Return(nil)

	c := NewCoordinator(store, cache, newTestLogger())
	result := c.Persist(context.Background(), sampleDraft(), samplePayment(), nil)

	assert.False(t, result.Primary.Succeeded)
	// Header identity is still reported for reconciliation.
	assert.Equal(t, "row-123", result.StorageID)
	assert.True(t, result.Fallback.Succeeded)
}

func TestCoordinator_Persist_FallbackFailureDoesNotAffectPrimary(t *testing.T) {
	store := new(mockOrderStore)
	cache := new(mockFallbackCache)

	store.On("InsertOrderHeader", mock.Anything, mock.Anything).Return(insertedOrder(), nil)
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)
	cache.On("Prepend", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	c := NewCoordinator(store, cache, newTestLogger())
	result := c.Persist(context.Background(), sampleDraft(), samplePayment(), nil)

	assert.True(t, result.Primary.Succeeded)
	assert.False(t, result.Fallback.Succeeded)
	assert.Contains(t, result.Fallback.Reason, "redis down")
}

func TestCoordinator_Persist_FallbackRecordContents(t *testing.T) {
	store := new(mockOrderStore)
	cache := new(mockFallbackCache)

	store.On("InsertOrderHeader", mock.Anything, mock.Anything).Return(insertedOrder(), nil)
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)

	var record domain.FallbackRecord
	cache.On("Prepend", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			record = args.Get(1).(domain.FallbackRecord)
		}).
		Return(nil)

	draft := sampleDraft()
	c := NewCoordinator(store, cache, newTestLogger())
	c.Persist(context.Background(), draft, samplePayment(), nil)

	assert.Equal(t, draft.ID, record.ID)
	assert.Equal(t, draft.CreatedAt, record.Date)
	assert.Equal(t, int64(378), record.Total)
	assert.Equal(t, "pay-001", record.PaymentID)
	assert.Equal(t, "Sunday, March 15, 2026", record.EstimatedDelivery)
	require.Len(t, record.Items, 1)
	assert.Equal(t, "p1", record.Items[0].ID)
	assert.Equal(t, int64(100), record.Items[0].Price)
	assert.Equal(t, 2, record.Items[0].Quantity)
}

func TestCoordinator_Persist_PassesUserID(t *testing.T) {
	store := new(mockOrderStore)
	cache := new(mockFallbackCache)

	var header repository.OrderHeader
	store.On("InsertOrderHeader", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			header = args.Get(1).(repository.OrderHeader)
		}).
		Return(insertedOrder(), nil)
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)
	cache.On("Prepend", mock.Anything, mock.Anything).Return(nil)

	userID := "user-42"
	c := NewCoordinator(store, cache, newTestLogger())
	c.Persist(context.Background(), sampleDraft(), samplePayment(), &userID)

	require.NotNil(t, header.UserID)
	assert.Equal(t, "user-42", *header.UserID)
}
