package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/cart"
	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AddToCartRequest adds a product to the caller's cart
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity"`
}

// UpdateQuantityRequest sets the quantity of one cart line
type UpdateQuantityRequest struct {
	CartID   uuid.UUID `json:"cart_id" binding:"required"`
	Quantity int       `json:"quantity"`
}

// LineResponse is one cart line joined with product data
type LineResponse struct {
	CartID    uuid.UUID       `json:"cart_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

// CartResponse is the caller's cart
type CartResponse struct {
	Items     []LineResponse  `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// CartService manages the stock-aware cart
type CartService struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	timeout     time.Duration
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cartRepo cart.Repository, productRepo catalog.ProductRepository, storageTimeout time.Duration, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		timeout:     storageTimeout,
		logger:      logger,
	}
}

// AddToCart adds quantity units of a product, merging with an existing line.
// An absent quantity means 1; an explicit one must be positive.
func (s *CartService) AddToCart(ctx context.Context, p shared.Principal, req AddToCartRequest) error {
	if p.IsAnonymous() {
		return shared.ErrUnauthorized
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	item, err := cart.NewCartItem(p.UserID, req.ProductID, qty)
	if err != nil {
		return err
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return shared.TranslateStorageError(err)
	}
	if !product.HasStock(qty) {
		return shared.NewInsufficientStockError(product.ID, product.Name, product.Stock, qty)
	}

	if err := s.cartRepo.AddOrMerge(ctx, item); err != nil {
		return shared.TranslateStorageError(err)
	}
	s.logger.Debug("Product added to cart",
		zap.String("user_id", p.UserID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", qty))
	return nil
}

// UpdateQuantity sets the quantity of a line the caller owns
func (s *CartService) UpdateQuantity(ctx context.Context, p shared.Principal, req UpdateQuantityRequest) error {
	if p.IsAnonymous() {
		return shared.ErrUnauthorized
	}
	if req.Quantity <= 0 {
		return shared.ErrInvalidQuantity
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	item, err := s.cartRepo.FindByIDForUser(ctx, req.CartID, p.UserID)
	if err != nil {
		return cartItemError(err)
	}
	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		return shared.TranslateStorageError(err)
	}
	if !product.HasStock(req.Quantity) {
		return shared.NewInsufficientStockError(product.ID, product.Name, product.Stock, req.Quantity)
	}

	return cartItemError(s.cartRepo.UpdateQuantity(ctx, item.ID, p.UserID, req.Quantity))
}

// RemoveItem deletes a line the caller owns
func (s *CartService) RemoveItem(ctx context.Context, p shared.Principal, cartID uuid.UUID) error {
	if p.IsAnonymous() {
		return shared.ErrUnauthorized
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	return cartItemError(s.cartRepo.DeleteForUser(ctx, cartID, p.UserID))
}

// GetCart returns the caller's lines, newest first, with totals
func (s *CartService) GetCart(ctx context.Context, p shared.Principal) (*CartResponse, error) {
	if p.IsAnonymous() {
		return nil, shared.ErrUnauthorized
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	lines, err := s.cartRepo.FindLines(ctx, p.UserID)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	c := cart.Cart{UserID: p.UserID, Lines: lines}
	items := make([]LineResponse, len(lines))
	for i, l := range lines {
		items[i] = LineResponse{
			CartID:    l.CartItemID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			ImageURL:  l.ImageURL,
			Stock:     l.Stock,
			Quantity:  l.Quantity,
			Total:     l.Total(),
		}
	}
	return &CartResponse{Items: items, ItemCount: c.ItemCount(), Total: c.Total()}, nil
}

func cartItemError(err error) error {
	if err == nil {
		return nil
	}
	err = shared.TranslateStorageError(err)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.ErrNotFound.Code, "Cart item not found")
	}
	return err
}
