package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/repository"
)

// estimatedDeliveryAfter is added to the order creation time to produce the
// human-readable estimated delivery date stored in the fallback record.
const estimatedDeliveryAfter = 5 * 24 * time.Hour

// estimatedDeliveryLayout renders e.g. "Monday, January 2, 2006".
const estimatedDeliveryLayout = "Monday, January 2, 2006"

// DualWriteResult is the combined report of one Persist call: one outcome per
// target plus the identity assigned by whichever writes succeeded.
type DualWriteResult struct {
	Primary  domain.PersistenceOutcome
	Fallback domain.PersistenceOutcome

	// OrderNumber is always set; it is generated before either write.
	OrderNumber string

	// StorageID and CreatedAt are set only when the primary header write
	// succeeded.
	StorageID string
	CreatedAt time.Time

	EstimatedDelivery string
}

// Coordinator writes an order to the primary store and, independently, a
// denormalized summary to the fallback cache. The two writes run concurrently
// and each target's failure is isolated from the other.
//
// A failure writing line items after the header succeeded is reported as a
// primary failure; the header row is not retracted. Compensating cleanup is an
// accepted gap in this design: the fallback record plus the orphaned header
// are both recoverable by offline reconciliation.
type Coordinator struct {
	store  repository.OrderStore
	cache  repository.FallbackCache
	logger *slog.Logger
	now    func() time.Time
}

// NewCoordinator creates a dual-write persistence coordinator.
func NewCoordinator(store repository.OrderStore, cache repository.FallbackCache, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type primaryResult struct {
	outcome  domain.PersistenceOutcome
	inserted *repository.InsertedOrder
}

// Persist writes the draft to both targets and reports per-target outcomes.
// It never returns an error: storage failures are data, not control flow.
func (c *Coordinator) Persist(ctx context.Context, draft domain.OrderDraft, pay domain.PaymentResult, userID *string) DualWriteResult {
	orderNumber := GenerateOrderNumber(c.now())

	status := domain.OrderStatusProcessing
	paymentStatus := domain.PaymentStatusPaid
	paymentMethod := domain.PaymentMethodCard
	if pay.Simulated {
		status = domain.OrderStatusDemo
		paymentStatus = domain.PaymentStatusDemoPaid
		paymentMethod = domain.PaymentMethodDemoCard
	}

	estimatedDelivery := draft.CreatedAt.Add(estimatedDeliveryAfter).Format(estimatedDeliveryLayout)

	primaryCh := make(chan primaryResult, 1)
	fallbackCh := make(chan domain.PersistenceOutcome, 1)

	go func() {
		primaryCh <- c.writePrimary(ctx, draft, userID, orderNumber, status, paymentStatus, paymentMethod)
	}()

	go func() {
		fallbackCh <- c.writeFallback(ctx, draft, pay, orderNumber, status, paymentMethod, estimatedDelivery)
	}()

	primary := <-primaryCh
	fallback := <-fallbackCh

	observePersistence(domain.TargetPrimary, primary.outcome.Succeeded)
	observePersistence(domain.TargetFallback, fallback.Succeeded)

	result := DualWriteResult{
		Primary:           primary.outcome,
		Fallback:          fallback,
		OrderNumber:       orderNumber,
		EstimatedDelivery: estimatedDelivery,
	}
	if primary.inserted != nil {
		result.StorageID = primary.inserted.StorageID
		result.OrderNumber = primary.inserted.OrderNumber
		result.CreatedAt = primary.inserted.CreatedAt
	}

	return result
}

// writePrimary inserts the order header and then its line items as a batch
// keyed by the storage-assigned order id.
func (c *Coordinator) writePrimary(ctx context.Context, draft domain.OrderDraft, userID *string, orderNumber, status, paymentStatus, paymentMethod string) primaryResult {
	header := repository.OrderHeader{
		UserID:          userID,
		OrderNumber:     orderNumber,
		Status:          status,
		TotalAmount:     draft.Totals.Total,
		ShippingAddress: draft.ShippingAddress,
		BillingAddress:  draft.ShippingAddress,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   paymentStatus,
	}

	inserted, err := c.store.InsertOrderHeader(ctx, header)
	if err != nil {
		c.logger.ErrorContext(ctx, "primary order header write failed",
			slog.String("order_id", draft.ID),
			slog.String("order_number", orderNumber),
			slog.String("error", err.Error()),
		)
		return primaryResult{outcome: domain.Failed(domain.TargetPrimary, err)}
	}

	rows := make([]repository.OrderItemRow, len(draft.Items))
	for i, item := range draft.Items {
		rows[i] = repository.OrderItemRow{
			OrderID:   inserted.StorageID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
		}
	}

	if err := c.store.InsertOrderItems(ctx, rows); err != nil {
		// Header row stays; see the accepted-gap note on Coordinator.
		c.logger.ErrorContext(ctx, "primary order items write failed, header row kept",
			slog.String("order_id", draft.ID),
			slog.String("storage_id", inserted.StorageID),
			slog.String("error", err.Error()),
		)
		return primaryResult{outcome: domain.Failed(domain.TargetPrimary, err), inserted: inserted}
	}

	c.logger.InfoContext(ctx, "order persisted to primary store",
		slog.String("order_id", draft.ID),
		slog.String("storage_id", inserted.StorageID),
		slog.String("order_number", inserted.OrderNumber),
		slog.Int64("total_amount", draft.Totals.Total),
	)

	return primaryResult{outcome: domain.Succeeded(domain.TargetPrimary), inserted: inserted}
}

// writeFallback stores the denormalized record. Unconditionally best-effort:
// any failure is caught and reported as a non-fatal outcome.
func (c *Coordinator) writeFallback(ctx context.Context, draft domain.OrderDraft, pay domain.PaymentResult, orderNumber, status, paymentMethod, estimatedDelivery string) domain.PersistenceOutcome {
	items := make([]domain.FallbackItem, len(draft.Items))
	for i, item := range draft.Items {
		items[i] = domain.FallbackItem{
			ID:       item.ProductID,
			Name:     item.Name,
			Price:    item.UnitPrice,
			Quantity: item.Quantity,
			ImageURL: item.ImageURL,
		}
	}

	record := domain.FallbackRecord{
		ID:                draft.ID,
		OrderNumber:       orderNumber,
		Date:              draft.CreatedAt,
		Status:            status,
		Total:             draft.Totals.Total,
		Items:             items,
		ShippingAddress:   draft.ShippingAddress,
		PaymentMethod:     paymentMethod,
		PaymentID:         pay.PaymentID,
		EstimatedDelivery: estimatedDelivery,
	}

	if err := c.cache.Prepend(ctx, record); err != nil {
		c.logger.WarnContext(ctx, "fallback cache write failed",
			slog.String("order_id", draft.ID),
			slog.String("error", err.Error()),
		)
		return domain.Failed(domain.TargetFallback, err)
	}

	c.logger.InfoContext(ctx, "order recorded in fallback cache",
		slog.String("order_id", draft.ID),
		slog.String("order_number", orderNumber),
	)

	return domain.Succeeded(domain.TargetFallback)
}
