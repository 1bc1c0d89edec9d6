package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/database"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/repository"
)

// OrderStore implements repository.OrderStore using PostgreSQL.
type OrderStore struct {
	pool database.DBTX
}

// NewOrderStore creates a new PostgreSQL-backed order store.
func NewOrderStore(pool database.DBTX) *OrderStore {
	return &OrderStore{pool: pool}
}

// InsertOrderHeader writes the order header row and returns its
// storage-assigned identity. The id and created_at come from column defaults.
func (s *OrderStore) InsertOrderHeader(ctx context.Context, header repository.OrderHeader) (*repository.InsertedOrder, error) {
	shippingJSON, err := json.Marshal(header.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshal shipping address: %w", err)
	}
	billingJSON, err := json.Marshal(header.BillingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshal billing address: %w", err)
	}

	query := `
		INSERT INTO orders (user_id, order_number, status, total_amount, shipping_address, billing_address, payment_method, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, order_number, created_at`

	var inserted repository.InsertedOrder
	err = s.pool.QueryRow(ctx, query,
		header.UserID,
		header.OrderNumber,
		header.Status,
		header.TotalAmount,
		shippingJSON,
		billingJSON,
		header.PaymentMethod,
		header.PaymentStatus,
	).Scan(&inserted.StorageID, &inserted.OrderNumber, &inserted.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order header: %w", err)
	}

	return &inserted, nil
}

// InsertOrderItems writes all line-item rows in a single transaction. Empty
// size/color variants are stored as NULL.
func (s *OrderStore) InsertOrderItems(ctx context.Context, rows []repository.OrderItemRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO order_items (order_id, product_id, quantity, price, size, color)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, row := range rows {
		_, err = tx.Exec(ctx, query,
			row.OrderID,
			row.ProductID,
			row.Quantity,
			row.Price,
			nullable(row.Size),
			nullable(row.Color),
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
