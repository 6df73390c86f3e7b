package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type orderFixture struct {
	store    *memStore
	scope    *memTxScope
	svc      *OrderService
	userID   uuid.UUID
	customer shared.Principal
	admin    shared.Principal
	machine  uuid.UUID
	bobbins  uuid.UUID
}

func newOrderFixture(t *testing.T, cfg Config, opts ...Option) *orderFixture {
	t.Helper()
	store := newMemStore()
	scope := &memTxScope{store: store}
	userID := uuid.New()

	f := &orderFixture{
		store:    store,
		scope:    scope,
		userID:   userID,
		customer: shared.NewPrincipal(userID, shared.RoleUser),
		admin:    shared.NewPrincipal(uuid.New(), shared.RoleAdmin),
		machine:  store.addProduct("Singer Heavy Duty", 100, 5),
		bobbins:  store.addProduct("Bobbin Pack", 50, 1),
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	f.svc = NewOrderService(memOrderRepo{store}, memHistoryRepo{store}, scope, cfg, nil, opts...)
	return f
}

func (f *orderFixture) fillCart() {
	f.store.addCartItem(f.userID, f.machine, 2)
	f.store.addCartItem(f.userID, f.bobbins, 1)
}

func (f *orderFixture) place(t *testing.T) *PlaceOrderResponse {
	t.Helper()
	f.fillCart()
	resp, err := f.svc.PlaceOrder(context.Background(), f.customer, PlaceOrderRequest{ShippingAddress: "1 Loom Street, Weaverton"})
	require.NoError(t, err)
	return resp
}

func TestOrderService_PlaceOrder(t *testing.T) {
	t.Run("commits order, stock, history, cart and event together", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		f.fillCart()

		resp, err := f.svc.PlaceOrder(context.Background(), f.customer, PlaceOrderRequest{ShippingAddress: "1 Loom Street, Weaverton"})
		require.NoError(t, err)

		assert.True(t, resp.Total.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, "Order has been placed successfully", resp.Message)
		assert.Regexp(t, `^TRK\d+[0-9A-Z]{5}$`, resp.TrackingNumber)

		assert.Equal(t, 3, f.store.stock(f.machine))
		assert.Equal(t, 0, f.store.stock(f.bobbins))
		assert.Equal(t, 0, f.store.cartCount(f.userID))

		saved := f.store.orders[resp.OrderID]
		assert.Equal(t, order.StatusConfirmed, saved.Status)
		assert.Equal(t, order.DefaultPaymentMethod, saved.PaymentMethod)
		assert.Equal(t, fixedNow.Add(7*24*time.Hour), saved.EstimatedDelivery)
		assert.Len(t, saved.Items, 2)

		require.Len(t, f.store.history, 1)
		assert.Equal(t, order.StatusConfirmed, f.store.history[0].Status)
		assert.Equal(t, "Order has been placed successfully", f.store.history[0].Notes)

		require.Len(t, f.store.events, 1)
		assert.Equal(t, order.EventTypeOrderPlaced, f.store.events[0].EventType())
	})

	t.Run("empty cart changes nothing", func(t *testing.T) {
		f := newOrderFixture(t, Config{})

		_, err := f.svc.PlaceOrder(context.Background(), f.customer, PlaceOrderRequest{ShippingAddress: "1 Loom Street"})
		assert.ErrorIs(t, err, shared.ErrEmptyCart)
		assert.Empty(t, f.store.orders)
		assert.Equal(t, 5, f.store.stock(f.machine))
	})

	t.Run("insufficient stock names the product and changes nothing", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		f.store.addCartItem(f.userID, f.bobbins, 3)

		_, err := f.svc.PlaceOrder(context.Background(), f.customer, PlaceOrderRequest{ShippingAddress: "1 Loom Street"})
		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, "Insufficient stock for Bobbin Pack. Available: 1, Requested: 3", err.Error())
		assert.Empty(t, f.store.orders)
		assert.Empty(t, f.store.history)
		assert.Equal(t, 1, f.store.stock(f.bobbins))
		assert.Equal(t, 1, f.store.cartCount(f.userID))
	})

	t.Run("failure after stock decrement rolls everything back", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		f.fillCart()
		f.store.failHistoryAppend = errInjected

		_, err := f.svc.PlaceOrder(context.Background(), f.customer, PlaceOrderRequest{ShippingAddress: "1 Loom Street"})
		assert.ErrorIs(t, err, errInjected)
		assert.Empty(t, f.store.orders)
		assert.Empty(t, f.store.events)
		assert.Equal(t, 5, f.store.stock(f.machine))
		assert.Equal(t, 1, f.store.stock(f.bobbins))
		assert.Equal(t, 2, f.store.cartCount(f.userID))
	})

	t.Run("concurrent buyer draining stock aborts the checkout", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		f.fillCart()
		f.store.beforeDecrement = func(s *memStore, id uuid.UUID) {
			if id == f.bobbins {
				p := s.products[id]
				p.Stock = 0
				s.products[id] = p
			}
		}

		_, err := f.svc.PlaceOrder(context.Background(), f.customer, PlaceOrderRequest{ShippingAddress: "1 Loom Street"})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Empty(t, f.store.orders)
		assert.Equal(t, 5, f.store.stock(f.machine))
		assert.Equal(t, 2, f.store.cartCount(f.userID))
	})

	t.Run("regenerates colliding tracking numbers", func(t *testing.T) {
		calls := 0
		gen := func(time.Time) string {
			calls++
			if calls <= 2 {
				return "TRKTAKEN"
			}
			return fmt.Sprintf("TRKFREE%d", calls)
		}
		f := newOrderFixture(t, Config{}, WithTrackingNumberGenerator(gen))
		f.store.orders[uuid.New()] = order.Order{TrackingNumber: "TRKTAKEN"}

		resp := f.place(t)
		assert.Equal(t, "TRKFREE3", resp.TrackingNumber)
	})

	t.Run("gives up after three collisions", func(t *testing.T) {
		f := newOrderFixture(t, Config{}, WithTrackingNumberGenerator(func(time.Time) string { return "TRKTAKEN" }))
		f.store.orders[uuid.New()] = order.Order{TrackingNumber: "TRKTAKEN"}
		f.fillCart()

		_, err := f.svc.PlaceOrder(context.Background(), f.customer, PlaceOrderRequest{ShippingAddress: "1 Loom Street"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.Equal(t, 5, f.store.stock(f.machine))
	})

	t.Run("expired storage deadline surfaces as timeout", func(t *testing.T) {
		f := newOrderFixture(t, Config{StorageTimeout: time.Second})
		f.scope.err = fmt.Errorf("query: %w", context.DeadlineExceeded)

		_, err := f.svc.PlaceOrder(context.Background(), f.customer, PlaceOrderRequest{ShippingAddress: "1 Loom Street"})
		assert.ErrorIs(t, err, shared.ErrStorageTimeout)
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		_, err := f.svc.PlaceOrder(context.Background(), shared.Principal{}, PlaceOrderRequest{ShippingAddress: "x"})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	t.Run("non-admin is denied before anything else", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		resp := f.place(t)

		_, err := f.svc.UpdateOrderStatus(context.Background(), f.customer, resp.OrderID, UpdateStatusRequest{Status: "Shipped"})
		require.ErrorIs(t, err, shared.ErrForbidden)
		assert.Equal(t, "Admin access required", err.Error())
		assert.Len(t, f.store.history, 1)
	})

	t.Run("invalid status writes no history", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		resp := f.place(t)

		_, err := f.svc.UpdateOrderStatus(context.Background(), f.admin, resp.OrderID, UpdateStatusRequest{Status: "Teleported"})
		assert.ErrorIs(t, err, shared.ErrInvalidStatus)
		assert.Len(t, f.store.history, 1)
		assert.Equal(t, order.StatusConfirmed, f.store.orders[resp.OrderID].Status)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		_, err := f.svc.UpdateOrderStatus(context.Background(), f.admin, uuid.New(), UpdateStatusRequest{Status: "Shipped"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("appends history with default note", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		resp := f.place(t)

		out, err := f.svc.UpdateOrderStatus(context.Background(), f.admin, resp.OrderID, UpdateStatusRequest{Status: "Shipped"})
		require.NoError(t, err)
		assert.Equal(t, "Shipped", out.Status)

		require.Len(t, f.store.history, 2)
		assert.Equal(t, "Status updated to Shipped", f.store.history[1].Notes)
		require.Len(t, f.store.events, 2)
		assert.Equal(t, order.EventTypeOrderStatusChanged, f.store.events[1].EventType())
	})

	t.Run("cancellation keeps stock by default", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		resp := f.place(t)

		_, err := f.svc.UpdateOrderStatus(context.Background(), f.admin, resp.OrderID, UpdateStatusRequest{Status: "Cancelled"})
		require.NoError(t, err)
		assert.Equal(t, 3, f.store.stock(f.machine))
	})

	t.Run("cancellation restocks once when enabled", func(t *testing.T) {
		f := newOrderFixture(t, Config{RestockOnCancel: true})
		resp := f.place(t)

		for i := 0; i < 2; i++ {
			_, err := f.svc.UpdateOrderStatus(context.Background(), f.admin, resp.OrderID, UpdateStatusRequest{Status: "Cancelled"})
			require.NoError(t, err)
		}
		assert.Equal(t, 5, f.store.stock(f.machine))
		assert.Equal(t, 1, f.store.stock(f.bobbins))
	})

	t.Run("reopened order cancelled again is not restocked twice", func(t *testing.T) {
		f := newOrderFixture(t, Config{RestockOnCancel: true})
		resp := f.place(t)

		for _, s := range []string{"Cancelled", "Processing", "Cancelled"} {
			_, err := f.svc.UpdateOrderStatus(context.Background(), f.admin, resp.OrderID, UpdateStatusRequest{Status: s})
			require.NoError(t, err)
		}
		assert.Equal(t, 5, f.store.stock(f.machine))
		assert.Equal(t, 1, f.store.stock(f.bobbins))
		assert.Len(t, f.store.history, 4)
	})

	t.Run("any valid status may follow a final one", func(t *testing.T) {
		f := newOrderFixture(t, Config{})
		resp := f.place(t)

		for _, s := range []string{"Delivered", "Cancelled"} {
			out, err := f.svc.UpdateOrderStatus(context.Background(), f.admin, resp.OrderID, UpdateStatusRequest{Status: s})
			require.NoError(t, err)
			assert.Equal(t, s, out.Status)
		}
		assert.Len(t, f.store.history, 3)
	})
}

func TestOrderService_GetOrderStatusHistory(t *testing.T) {
	f := newOrderFixture(t, Config{})
	clock := fixedNow
	f.svc.now = func() time.Time { return clock }
	resp := f.place(t)

	for _, s := range []string{"Processing", "Shipped", "Delivered"} {
		clock = clock.Add(time.Hour)
		_, err := f.svc.UpdateOrderStatus(context.Background(), f.admin, resp.OrderID, UpdateStatusRequest{Status: s, Notes: "note " + s})
		require.NoError(t, err)
	}

	t.Run("owner sees entries oldest first", func(t *testing.T) {
		history, err := f.svc.GetOrderStatusHistory(context.Background(), f.customer, resp.OrderID)
		require.NoError(t, err)
		require.Len(t, history, 4)
		assert.Equal(t, "Order Confirmed", history[0].Status)
		assert.Equal(t, "Delivered", history[3].Status)
		for i := 1; i < len(history); i++ {
			assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp))
		}
	})

	t.Run("admin may read any order", func(t *testing.T) {
		_, err := f.svc.GetOrderStatusHistory(context.Background(), f.admin, resp.OrderID)
		assert.NoError(t, err)
	})

	t.Run("other customers are denied", func(t *testing.T) {
		stranger := shared.NewPrincipal(uuid.New(), shared.RoleUser)
		_, err := f.svc.GetOrderStatusHistory(context.Background(), stranger, resp.OrderID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		_, err := f.svc.GetOrderStatusHistory(context.Background(), f.customer, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_Listing(t *testing.T) {
	f := newOrderFixture(t, Config{})
	resp := f.place(t)

	t.Run("admin lists all orders", func(t *testing.T) {
		orders, err := f.svc.ListOrders(context.Background(), f.admin)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, resp.OrderID, orders[0].ID)
	})

	t.Run("customer cannot list all orders", func(t *testing.T) {
		_, err := f.svc.ListOrders(context.Background(), f.customer)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("customer lists own orders with items", func(t *testing.T) {
		orders, err := f.svc.ListUserOrders(context.Background(), f.customer)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Len(t, orders[0].Items, 2)
	})

	t.Run("get order enforces access", func(t *testing.T) {
		got, err := f.svc.GetOrder(context.Background(), f.customer, resp.OrderID)
		require.NoError(t, err)
		assert.True(t, got.Total.Equal(decimal.NewFromInt(250)))

		_, err = f.svc.GetOrder(context.Background(), shared.NewPrincipal(uuid.New(), shared.RoleUser), resp.OrderID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
