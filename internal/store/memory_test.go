package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/cart"
)

func TestMemoryCartStore_RoundTrip(t *testing.T) {
	s := NewMemoryCartStore()
	ctx := context.Background()

	_, err := s.LoadCart(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	c := cart.Cart{Lines: []cart.Line{{ProductID: "1", UnitPrice: decimal.NewFromInt(900), Quantity: 2}}}
	require.NoError(t, s.SaveCart(ctx, "sess-1", c))
	assert.Equal(t, 1, s.Len())

	loaded, err := s.LoadCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	require.NoError(t, s.DeleteCart(ctx, "sess-1"))
	assert.ErrorIs(t, s.DeleteCart(ctx, "sess-1"), ErrCartNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryCartStore_CopiesLines(t *testing.T) {
	s := NewMemoryCartStore()
	ctx := context.Background()

	c := cart.Cart{Lines: []cart.Line{{ProductID: "1", Quantity: 1}}}
	require.NoError(t, s.SaveCart(ctx, "sess-1", c))
	c.Lines[0].Quantity = 99

	loaded, err := s.LoadCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Lines[0].Quantity)

	loaded.Lines[0].Quantity = 42
	again, err := s.LoadCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Lines[0].Quantity)
}

func TestMemoryCartStore_NilLinesLoadEmpty(t *testing.T) {
	s := NewMemoryCartStore()
	require.NoError(t, s.SaveCart(context.Background(), "sess-1", cart.Cart{}))

	loaded, err := s.LoadCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.NotNil(t, loaded.Lines)
	assert.Empty(t, loaded.Lines)
}
