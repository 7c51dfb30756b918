package session

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos/internal/cart"
	"pos/internal/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	loaded, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.True(t, loaded.Cart.IsEmpty())
	assert.Empty(t, loaded.Flashes)

	c, err := cart.Cart{}.Add(model.Product{
		ID: 1, Name: "Coffee", Price: decimal.NewFromFloat(3.50), Stock: 10,
	}, 2)
	require.NoError(t, err)

	sess := Session{Cart: c}
	sess.Flash(FlashSuccess, "Added Coffee to cart")
	require.NoError(t, store.Save(ctx, "sid-1", sess))

	loaded, err = store.Load(ctx, "sid-1")
	require.NoError(t, err)
	require.Len(t, loaded.Cart.Lines, 1)
	assert.Equal(t, "Coffee", loaded.Cart.Lines[0].Name)
	assert.True(t, loaded.Cart.Lines[0].Price.Equal(decimal.NewFromFloat(3.50)))
	require.Len(t, loaded.Flashes, 1)
	assert.Equal(t, FlashSuccess, loaded.Flashes[0].Level)
}

func TestLoadedSessionDoesNotAliasStoredState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := Session{}
	sess.Cart.Lines = []cart.Line{{ProductID: 1, Name: "Tea", Price: decimal.NewFromFloat(2.50), Quantity: 1}}
	require.NoError(t, store.Save(ctx, "sid", sess))

	first, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	first.Cart.Lines[0].Quantity = 99

	second, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Cart.Lines[0].Quantity)
}

func TestPopFlashes(t *testing.T) {
	sess := Session{}
	sess.Flash(FlashError, "boom")
	sess.Flash(FlashInfo, "fyi")

	flashes := sess.PopFlashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, "boom", flashes[0].Message)
	assert.Empty(t, sess.Flashes)
	assert.Empty(t, sess.PopFlashes())
}
