package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/stitchline/backend/internal/application/order"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/interfaces/http/middleware"
)

// OrderService is checkout and the order lifecycle
type OrderService interface {
	PlaceOrder(ctx context.Context, p shared.Principal, req orderapp.PlaceOrderRequest) (*orderapp.PlaceOrderResponse, error)
	UpdateOrderStatus(ctx context.Context, p shared.Principal, id uuid.UUID, req orderapp.UpdateStatusRequest) (*orderapp.OrderResponse, error)
	GetOrderStatusHistory(ctx context.Context, p shared.Principal, id uuid.UUID) ([]orderapp.StatusHistoryResponse, error)
	GetOrder(ctx context.Context, p shared.Principal, id uuid.UUID) (*orderapp.OrderResponse, error)
	ListOrders(ctx context.Context, p shared.Principal) ([]orderapp.AdminOrderResponse, error)
	ListUserOrders(ctx context.Context, p shared.Principal) ([]orderapp.OrderResponse, error)
}

// InvoiceService renders printable invoices
type InvoiceService interface {
	RenderInvoice(ctx context.Context, p shared.Principal, orderID uuid.UUID) (*orderapp.InvoiceDocument, error)
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orders   OrderService
	invoices InvoiceService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(base BaseHandler, orders OrderService, invoices InvoiceService) *OrderHandler {
	return &OrderHandler{BaseHandler: base, orders: orders, invoices: invoices}
}

// Place godoc
// @Summary      Place an order from the cart
// @Description  Validates stock, decrements it, creates the order and clears the cart in one transaction
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.PlaceOrderRequest true "Shipping and payment"
// @Success      200 {object} dto.Response{data=orderapp.PlaceOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      504 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	var req orderapp.PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orders.PlaceOrder(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List all orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]orderapp.AdminOrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// ListMine godoc
// @Summary      List the caller's orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse}
// @Security     BearerAuth
// @Router       /orders/user [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.orders.ListUserOrders(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// UpdateStatus godoc
// @Summary      Change an order's status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Order ID" format(uuid)
// @Param        request body orderapp.UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orderapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	o, err := h.orders.UpdateOrderStatus(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// History godoc
// @Summary      Get an order's status timeline
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]orderapp.StatusHistoryResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/history [get]
func (h *OrderHandler) History(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	history, err := h.orders.GetOrderStatusHistory(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// Invoice godoc
// @Summary      Download an order invoice
// @Description  PDF when rendering is enabled, HTML otherwise
// @Tags         orders
// @Produce      application/pdf
// @Produce      text/html
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {file} file
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.invoices.RenderInvoice(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
