package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
)

const cartKeyPrefix = "cart:"

// CartStore implements repository.CartStore using Redis. Carts are stored as
// a JSON array of raw entries under cart:<id>.
type CartStore struct {
	client *redis.Client
}

// NewCartStore creates a new Redis-backed cart store.
func NewCartStore(client *redis.Client) *CartStore {
	return &CartStore{client: client}
}

// Items returns the raw entries of the given cart. An absent cart is an empty
// cart, not an error.
func (s *CartStore) Items(ctx context.Context, cartID string) ([]domain.RawCartEntry, error) {
	data, err := s.client.Get(ctx, cartKeyPrefix+cartID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.RawCartEntry{}, nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var entries []domain.RawCartEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return entries, nil
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context, cartID string) error {
	if err := s.client.Del(ctx, cartKeyPrefix+cartID).Err(); err != nil {
		return fmt.Errorf("redis clear cart: %w", err)
	}
	return nil
}
