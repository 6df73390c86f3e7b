package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartItem(t *testing.T) {
	userID, productID := uuid.New(), uuid.New()

	t.Run("creates item", func(t *testing.T) {
		item, err := NewCartItem(userID, productID, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, userID, item.UserID)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewCartItem(userID, productID, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("rejects missing ids", func(t *testing.T) {
		_, err := NewCartItem(uuid.Nil, productID, 1)
		assert.Error(t, err)
		_, err = NewCartItem(userID, uuid.Nil, 1)
		assert.Error(t, err)
	})
}

func TestCart_Total(t *testing.T) {
	c := Cart{Lines: []Line{
		{Price: decimal.NewFromInt(100), Quantity: 2, Stock: 5},
		{Price: decimal.NewFromInt(50), Quantity: 1, Stock: 0},
	}}

	assert.True(t, c.Total().Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 3, c.ItemCount())
	assert.False(t, c.IsEmpty())
	assert.True(t, c.Lines[0].HasEnoughStock())
	assert.False(t, c.Lines[1].HasEnoughStock())
}
