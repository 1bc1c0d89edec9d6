package rediscache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
)

func setupCart(t *testing.T) (*CartStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCartStore(client), mr
}

func TestCartStore_Items(t *testing.T) {
	store, mr := setupCart(t)

	price := int64(100)
	qty := 2
	entries := []domain.RawCartEntry{
		{ID: "p1", Name: "Shirt", Price: &price, Quantity: &qty, Size: "M"},
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, mr.Set("cart:cart-001", string(data)))

	got, err := store.Items(context.Background(), "cart-001")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, int64(100), *got[0].Price)
	require.NotNil(t, got[0].Quantity)
	assert.Equal(t, 2, *got[0].Quantity)
}

func TestCartStore_Items_AbsentFieldsStayNil(t *testing.T) {
	store, mr := setupCart(t)

	// A malformed upstream write without price or quantity.
	require.NoError(t, mr.Set("cart:cart-001", `[{"id":"p1","name":"Shirt"}]`))

	got, err := store.Items(context.Background(), "cart-001")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Price)
	assert.Nil(t, got[0].Quantity)
}

func TestCartStore_Items_MissingCartIsEmpty(t *testing.T) {
	store, _ := setupCart(t)

	got, err := store.Items(context.Background(), "no-such-cart")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCartStore_Items_CorruptPayload(t *testing.T) {
	store, mr := setupCart(t)

	require.NoError(t, mr.Set("cart:cart-001", "{not json"))

	_, err := store.Items(context.Background(), "cart-001")
	assert.Error(t, err)
}

func TestCartStore_Clear(t *testing.T) {
	store, mr := setupCart(t)

	require.NoError(t, mr.Set("cart:cart-001", "[]"))
	require.NoError(t, store.Clear(context.Background(), "cart-001"))
	assert.False(t, mr.Exists("cart:cart-001"))
}

func TestCartStore_Clear_MissingCartIsNoError(t *testing.T) {
	store, _ := setupCart(t)
	assert.NoError(t, store.Clear(context.Background(), "no-such-cart"))
}
