package repository

import (
	"context"
	"time"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
)

// OrderHeader holds the fields written to the primary store's orders table.
// UserID is nil for anonymous checkouts.
type OrderHeader struct {
	UserID          *string
	OrderNumber     string
	Status          string
	TotalAmount     int64
	ShippingAddress domain.ShippingAddress
	BillingAddress  domain.ShippingAddress
	PaymentMethod   string
	PaymentStatus   string
}

// InsertedOrder reports the storage-assigned identity of a written header row.
type InsertedOrder struct {
	StorageID   string
	OrderNumber string
	CreatedAt   time.Time
}

// OrderItemRow is one line-item row keyed by the storage-assigned order id.
type OrderItemRow struct {
	OrderID   string
	ProductID string
	Quantity  int
	Price     int64
	Size      string
	Color     string
}

// OrderStore is the primary (authoritative) order store. Header and item
// writes fail independently; a failed item write after a successful header
// write leaves the header row in place.
type OrderStore interface {
	InsertOrderHeader(ctx context.Context, header OrderHeader) (*InsertedOrder, error)
	InsertOrderItems(ctx context.Context, rows []OrderItemRow) error
}

// FallbackCache is the best-effort secondary record store. Prepend pushes the
// record to the front of a persisted list under a fixed namespace.
type FallbackCache interface {
	Prepend(ctx context.Context, record domain.FallbackRecord) error
}

// CartStore is the cart collaborator: read the active cart's raw entries and
// clear it after a confirmed order. Clearing may fail; callers treat that as
// non-fatal.
type CartStore interface {
	Items(ctx context.Context, cartID string) ([]domain.RawCartEntry, error)
	Clear(ctx context.Context, cartID string) error
}
