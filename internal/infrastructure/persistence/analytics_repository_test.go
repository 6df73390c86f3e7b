package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/cart"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAnalyticsRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orders := NewGormOrderRepository(db)

	alice := seedUser(t, db, "alice@example.com", "")
	bob := seedUser(t, db, "bob@example.com", "")
	singer := seedProduct(t, db, "Singer Heavy Duty", "40000.00", 10)
	juki := seedProduct(t, db, "Juki DDL-8700", "90000.00", 10)
	unsold := seedProduct(t, db, "Walking Foot", "5000.00", 10)

	now := time.Now().UTC()
	place := func(userID, productID string, qty int, status order.Status) *order.Order {
		t.Helper()
		var line cart.Line
		switch productID {
		case "singer":
			line = cart.Line{ProductID: singer.ID, Name: singer.Name, Price: singer.Price, Stock: 10, Quantity: qty}
		case "juki":
			line = cart.Line{ProductID: juki.ID, Name: juki.Name, Price: juki.Price, Stock: 10, Quantity: qty}
		}
		uid := alice.ID
		if userID == "bob" {
			uid = bob.ID
		}
		o, err := order.Place(order.PlaceRequest{
			UserID: uid, Lines: []cart.Line{line}, ShippingAddress: "12 Temple Road, Kandy",
			TrackingNumber: order.NewTrackingNumber(now), Now: now,
		})
		require.NoError(t, err)
		o.Status = status
		require.NoError(t, orders.Create(ctx, o))
		return o
	}

	place("alice", "singer", 2, order.StatusDelivered)
	place("bob", "singer", 1, order.StatusDelivered)
	place("bob", "juki", 1, order.StatusDelivered)
	place("alice", "juki", 3, order.StatusCancelled)
	shipped := place("alice", "singer", 1, order.StatusShipped)

	repo := NewGormAnalyticsRepository(db)

	t.Run("product performance counts delivered sales only", func(t *testing.T) {
		perf, err := repo.ProductPerformance(ctx)
		require.NoError(t, err)
		require.Len(t, perf, 3)

		byID := map[string]int{}
		for i, p := range perf {
			byID[p.ProductID.String()] = i
		}
		s := perf[byID[singer.ID.String()]]
		assert.Equal(t, int64(3), s.TotalSold)
		assert.True(t, s.TotalRevenue.Equal(decimal.NewFromInt(120000)), s.TotalRevenue.String())
		assert.True(t, s.AvgPrice.Equal(decimal.NewFromInt(40000)))

		j := perf[byID[juki.ID.String()]]
		assert.Equal(t, int64(1), j.TotalSold)

		u := perf[byID[unsold.ID.String()]]
		assert.Zero(t, u.TotalSold)
		assert.True(t, u.TotalRevenue.IsZero())
	})

	t.Run("delivered totals", func(t *testing.T) {
		totals, err := repo.DeliveredTotals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), totals.TotalOrders)
		assert.True(t, totals.TotalRevenue.Equal(decimal.NewFromInt(210000)), totals.TotalRevenue.String())
		assert.True(t, totals.AvgOrderValue.Equal(decimal.NewFromInt(70000)))
		assert.Equal(t, int64(2), totals.TotalCustomers)
	})

	t.Run("status distribution is most frequent first", func(t *testing.T) {
		dist, err := repo.StatusDistribution(ctx)
		require.NoError(t, err)
		require.Len(t, dist, 3)
		assert.Equal(t, string(order.StatusDelivered), dist[0].Status)
		assert.Equal(t, int64(3), dist[0].Count)
	})

	t.Run("delivered orders since", func(t *testing.T) {
		recent, err := repo.DeliveredOrdersSince(ctx, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, recent, 3)

		none, err := repo.DeliveredOrdersSince(ctx, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("count orders", func(t *testing.T) {
		n, err := repo.CountOrders(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
	})

	t.Run("shipped order counts in full once delivered", func(t *testing.T) {
		require.NoError(t, orders.UpdateStatus(ctx, shipped.ID, order.StatusDelivered, now.Add(time.Minute)))

		totals, err := repo.DeliveredTotals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), totals.TotalOrders)
		assert.True(t, totals.TotalRevenue.Equal(decimal.NewFromInt(250000)), totals.TotalRevenue.String())
		assert.Equal(t, int64(2), totals.TotalCustomers)

		perf, err := repo.ProductPerformance(ctx)
		require.NoError(t, err)
		for _, p := range perf {
			if p.ProductID == singer.ID {
				assert.Equal(t, int64(4), p.TotalSold)
				assert.True(t, p.TotalRevenue.Equal(decimal.NewFromInt(160000)), p.TotalRevenue.String())
			}
		}
	})
}
