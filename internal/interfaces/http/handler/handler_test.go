package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/stitchline/backend/internal/application/cart"
	orderapp "github.com/stitchline/backend/internal/application/order"
	servicedeskapp "github.com/stitchline/backend/internal/application/servicedesk"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// asPrincipal attaches p the way JWTAuth does
func asPrincipal(p shared.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, p)
		c.Next()
	}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockCartService struct {
	mock.Mock
}

func (m *mockCartService) AddToCart(ctx context.Context, p shared.Principal, req cartapp.AddToCartRequest) error {
	return m.Called(ctx, p, req).Error(0)
}

func (m *mockCartService) UpdateQuantity(ctx context.Context, p shared.Principal, req cartapp.UpdateQuantityRequest) error {
	return m.Called(ctx, p, req).Error(0)
}

func (m *mockCartService) RemoveItem(ctx context.Context, p shared.Principal, cartID uuid.UUID) error {
	return m.Called(ctx, p, cartID).Error(0)
}

func (m *mockCartService) GetCart(ctx context.Context, p shared.Principal) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartapp.CartResponse), args.Error(1)
}

func TestCartHandler(t *testing.T) {
	user := shared.NewPrincipal(uuid.New(), shared.RoleUser)
	svc := new(mockCartService)
	h := NewCartHandler(NewBaseHandler(true), svc)

	r := gin.New()
	g := r.Group("/cart", asPrincipal(user))
	g.GET("", h.Get)
	g.POST("/add", h.Add)
	g.PUT("/update", h.Update)
	g.DELETE("/remove/:cartId", h.Remove)

	productID := uuid.New()

	t.Run("add passes the caller and body through", func(t *testing.T) {
		two := 2
		svc.On("AddToCart", mock.Anything, user, cartapp.AddToCartRequest{ProductID: productID, Quantity: &two}).
			Return(nil).Once()

		w := do(r, http.MethodPost, "/cart/add", `{"product_id":"`+productID.String()+`","quantity":2}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"message": "Item added to cart"}, decode(t, w).Data)
	})

	t.Run("add keeps an absent quantity apart from zero", func(t *testing.T) {
		svc.On("AddToCart", mock.Anything, user, cartapp.AddToCartRequest{ProductID: productID}).
			Return(nil).Once()
		w := do(r, http.MethodPost, "/cart/add", `{"product_id":"`+productID.String()+`"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		zero := 0
		svc.On("AddToCart", mock.Anything, user, cartapp.AddToCartRequest{ProductID: productID, Quantity: &zero}).
			Return(shared.ErrInvalidQuantity).Once()
		w = do(r, http.MethodPost, "/cart/add", `{"product_id":"`+productID.String()+`","quantity":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_QUANTITY", decode(t, w).Error.Code)
	})

	t.Run("add without product is a validation error", func(t *testing.T) {
		w := do(r, http.MethodPost, "/cart/add", `{"quantity":2}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Contains(t, resp.Error.Details["fields"], "product_id")
	})

	t.Run("insufficient stock is a 400", func(t *testing.T) {
		svc.On("AddToCart", mock.Anything, user, mock.Anything).
			Return(shared.NewInsufficientStockError(productID, "Brother XM2701", 0, 1)).Once()

		w := do(r, http.MethodPost, "/cart/add", `{"product_id":"`+productID.String()+`","quantity":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INSUFFICIENT_STOCK", decode(t, w).Error.Code)
	})

	t.Run("get returns the cart", func(t *testing.T) {
		svc.On("GetCart", mock.Anything, user).Return(&cartapp.CartResponse{
			Items:     []cartapp.LineResponse{},
			ItemCount: 0,
			Total:     decimal.Zero,
		}, nil).Once()

		w := do(r, http.MethodGet, "/cart", "")
		assert.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w).Data.(map[string]any)
		assert.EqualValues(t, 0, data["item_count"])
	})

	t.Run("remove of a foreign line is not found", func(t *testing.T) {
		cartID := uuid.New()
		svc.On("RemoveItem", mock.Anything, user, cartID).Return(shared.ErrNotFound).Once()

		w := do(r, http.MethodDelete, "/cart/remove/"+cartID.String(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	svc.AssertExpectations(t)
}

type stubOrders struct {
	placed  orderapp.PlaceOrderRequest
	placeFn func() (*orderapp.PlaceOrderResponse, error)
}

func (s *stubOrders) PlaceOrder(_ context.Context, _ shared.Principal, req orderapp.PlaceOrderRequest) (*orderapp.PlaceOrderResponse, error) {
	s.placed = req
	return s.placeFn()
}

func (s *stubOrders) UpdateOrderStatus(context.Context, shared.Principal, uuid.UUID, orderapp.UpdateStatusRequest) (*orderapp.OrderResponse, error) {
	return nil, shared.ErrInvalidStatus
}

func (s *stubOrders) GetOrderStatusHistory(context.Context, shared.Principal, uuid.UUID) ([]orderapp.StatusHistoryResponse, error) {
	return []orderapp.StatusHistoryResponse{{Status: "Order Confirmed"}}, nil
}

func (s *stubOrders) GetOrder(context.Context, shared.Principal, uuid.UUID) (*orderapp.OrderResponse, error) {
	return nil, shared.ErrForbidden
}

func (s *stubOrders) ListOrders(context.Context, shared.Principal) ([]orderapp.AdminOrderResponse, error) {
	return nil, nil
}

func (s *stubOrders) ListUserOrders(context.Context, shared.Principal) ([]orderapp.OrderResponse, error) {
	return []orderapp.OrderResponse{}, nil
}

type stubInvoices struct{}

func (stubInvoices) RenderInvoice(context.Context, shared.Principal, uuid.UUID) (*orderapp.InvoiceDocument, error) {
	return &orderapp.InvoiceDocument{
		ContentType: "text/html; charset=utf-8",
		Filename:    "invoice-TRK1.html",
		Data:        []byte("<html></html>"),
	}, nil
}

func TestOrderHandler(t *testing.T) {
	user := shared.NewPrincipal(uuid.New(), shared.RoleUser)
	orders := &stubOrders{}
	h := NewOrderHandler(NewBaseHandler(true), orders, stubInvoices{})

	r := gin.New()
	g := r.Group("/orders", asPrincipal(user))
	g.POST("", h.Place)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.UpdateStatus)
	g.GET("/:id/history", h.History)
	g.GET("/:id/invoice", h.Invoice)

	t.Run("place returns the tracking number", func(t *testing.T) {
		orderID := uuid.New()
		orders.placeFn = func() (*orderapp.PlaceOrderResponse, error) {
			return &orderapp.PlaceOrderResponse{
				Message:        "Order placed successfully",
				OrderID:        orderID,
				TrackingNumber: "TRK1700000000000ABCDE",
				Total:          decimal.NewFromInt(250),
			}, nil
		}
		w := do(r, http.MethodPost, "/orders", `{"shipping_address":"1 Loom Lane","payment_method":"COD"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1 Loom Lane", orders.placed.ShippingAddress)
		data := decode(t, w).Data.(map[string]any)
		assert.Equal(t, orderID.String(), data["order_id"])
	})

	t.Run("place on an empty cart is a 400", func(t *testing.T) {
		orders.placeFn = func() (*orderapp.PlaceOrderResponse, error) { return nil, shared.ErrEmptyCart }
		w := do(r, http.MethodPost, "/orders", `{"shipping_address":"1 Loom Lane"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "EMPTY_CART", decode(t, w).Error.Code)
	})

	t.Run("place requires a shipping address", func(t *testing.T) {
		w := do(r, http.MethodPost, "/orders", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("someone else's order is forbidden", func(t *testing.T) {
		w := do(r, http.MethodGet, "/orders/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown status is a 400", func(t *testing.T) {
		w := do(r, http.MethodPut, "/orders/"+uuid.NewString(), `{"status":"Lost"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_STATUS", decode(t, w).Error.Code)
	})

	t.Run("history", func(t *testing.T) {
		w := do(r, http.MethodGet, "/orders/"+uuid.NewString()+"/history", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w).Data, 1)
	})

	t.Run("invoice streams the document", func(t *testing.T) {
		w := do(r, http.MethodGet, "/orders/"+uuid.NewString()+"/invoice", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-TRK1.html")
		assert.Equal(t, "<html></html>", w.Body.String())
	})
}

type stubDesk struct {
	submittedBy shared.Principal
	filter      servicedeskapp.ListFilter
}

func (s *stubDesk) Submit(_ context.Context, p shared.Principal, req servicedeskapp.SubmitRequest) (*servicedeskapp.ServiceRequestResponse, error) {
	s.submittedBy = p
	return &servicedeskapp.ServiceRequestResponse{ID: uuid.New(), Name: req.Name, Status: "Pending"}, nil
}

func (s *stubDesk) List(_ context.Context, _ shared.Principal, f servicedeskapp.ListFilter) ([]servicedeskapp.ServiceRequestResponse, error) {
	s.filter = f
	return []servicedeskapp.ServiceRequestResponse{}, nil
}

func (s *stubDesk) ListMine(context.Context, shared.Principal) ([]servicedeskapp.ServiceRequestResponse, error) {
	return nil, nil
}

func (s *stubDesk) UpdateStatus(context.Context, shared.Principal, uuid.UUID, servicedeskapp.UpdateStatusRequest) (*servicedeskapp.ServiceRequestResponse, error) {
	return nil, shared.ErrNotFound
}

func TestServiceDeskHandler(t *testing.T) {
	desk := &stubDesk{}
	h := NewServiceDeskHandler(NewBaseHandler(true), desk)

	r := gin.New()
	r.POST("/services", h.Submit)
	r.GET("/services", h.List)
	r.PUT("/services/:id/status", h.UpdateStatus)

	w := do(r, http.MethodPost, "/services", `{"name":"Ada","email":"ada@example.com","phone":"9876543210","machine_model":"Usha","complaint":"Needle jams"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, desk.submittedBy.IsAnonymous())

	w = do(r, http.MethodGet, "/services?status=Pending", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pending", desk.filter.Status)

	w = do(r, http.MethodPut, "/services/"+uuid.NewString()+"/status", `{"status":"Completed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/services/bad/status", `{"status":"Completed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func TestSystemHandler_Health(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewSystemHandler(NewBaseHandler(true), nil, stubPinger{}, "1.0.0").Health)
	r.GET("/down", NewSystemHandler(NewBaseHandler(true), nil, stubPinger{err: context.DeadlineExceeded}, "1.0.0").Health)

	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "1.0.0", data["version"])

	w = do(r, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unreachable", decode(t, w).Data.(map[string]any)["database"])
}
