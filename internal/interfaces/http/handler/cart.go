package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/stitchline/backend/internal/application/cart"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/interfaces/http/middleware"
)

// CartService is the caller's shopping cart
type CartService interface {
	AddToCart(ctx context.Context, p shared.Principal, req cartapp.AddToCartRequest) error
	UpdateQuantity(ctx context.Context, p shared.Principal, req cartapp.UpdateQuantityRequest) error
	RemoveItem(ctx context.Context, p shared.Principal, cartID uuid.UUID) error
	GetCart(ctx context.Context, p shared.Principal) (*cartapp.CartResponse, error)
}

// CartHandler handles the cart endpoints
type CartHandler struct {
	BaseHandler
	cart CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(base BaseHandler, cart CartService) *CartHandler {
	return &CartHandler{BaseHandler: base, cart: cart}
}

// Get godoc
// @Summary      Get the caller's cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	resp, err := h.cart.GetCart(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Add godoc
// @Summary      Add a product to the cart
// @Description  Adding a product already in the cart increases its quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.AddToCartRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/add [post]
func (h *CartHandler) Add(c *gin.Context) {
	var req cartapp.AddToCartRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.cart.AddToCart(c.Request.Context(), middleware.GetPrincipal(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Item added to cart")
}

// Update godoc
// @Summary      Change the quantity of a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.UpdateQuantityRequest true "Cart line and quantity"
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/update [put]
func (h *CartHandler) Update(c *gin.Context) {
	var req cartapp.UpdateQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.cart.UpdateQuantity(c.Request.Context(), middleware.GetPrincipal(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Cart updated")
}

// Remove godoc
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        cartId path string true "Cart line ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/remove/{cartId} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	id, ok := h.pathID(c, "cartId")
	if !ok {
		return
	}
	if err := h.cart.RemoveItem(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Item removed from cart")
}
