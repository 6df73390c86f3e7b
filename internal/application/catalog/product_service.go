package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AllowedImageTypes maps accepted image content types to the file extension of the stored object.
// SVG is not accepted since it can carry scripts.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ErrProductInCart is returned when deleting a product some cart still holds
var ErrProductInCart = shared.NewDomainError("PRODUCT_IN_CART", "Cannot delete product. It is currently in users' carts.")

// ImageStorage is the object store product images are uploaded to.
// Implemented by the infrastructure layer (S3, MinIO, RustFS).
type ImageStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// PublicURL returns the URL the stored object is served from
	PublicURL(storageKey string) string
}

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	StorageTimeout  time.Duration
	UploadURLExpiry time.Duration
}

// ProductService handles product catalog operations
type ProductService struct {
	productRepo catalog.ProductRepository
	images      ImageStorage
	cfg         ProductServiceConfig
	logger      *zap.Logger
}

// NewProductService creates a new ProductService. images may be nil when
// no object storage is configured; image uploads are then rejected.
func NewProductService(productRepo catalog.ProductRepository, images ImageStorage, cfg ProductServiceConfig, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UploadURLExpiry <= 0 {
		cfg.UploadURLExpiry = 15 * time.Minute
	}
	return &ProductService{
		productRepo: productRepo,
		images:      images,
		cfg:         cfg,
		logger:      logger,
	}
}

// List returns products newest first, filtered by category and name
func (s *ProductService) List(ctx context.Context, f ProductListFilter) (shared.Paginated[ProductResponse], error) {
	filter := shared.DefaultFilter()
	filter.Page = f.Page
	filter.PageSize = f.PageSize
	filter.Search = strings.TrimSpace(f.Search)
	if c := strings.TrimSpace(f.Category); c != "" {
		filter.Filters["category"] = c
	}
	filter = filter.Normalize()

	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, shared.TranslateStorageError(err)
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// GetByID returns one product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create adds a product to the catalog
func (s *ProductService) Create(ctx context.Context, p shared.Principal, req ProductRequest) (*ProductResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(req.details())
	if err != nil {
		return nil, err
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name))

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update replaces the editable attributes of a product
func (s *ProductService) Update(ctx context.Context, p shared.Principal, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	if err := product.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product no cart references
func (s *ProductService) Delete(ctx context.Context, p shared.Principal, id uuid.UUID) error {
	if err := p.RequireAdmin(); err != nil {
		return err
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return productError(err)
	}
	inCarts, err := s.productRepo.CountCartReferences(ctx, id)
	if err != nil {
		return shared.TranslateStorageError(err)
	}
	if inCarts > 0 {
		return ErrProductInCart.WithDetail("cart_lines", inCarts)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return productError(err)
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// CreateImageUploadURL presigns an upload for a new product image.
// The returned image URL is stored on the product with Update once the upload is done.
func (s *ProductService) CreateImageUploadURL(ctx context.Context, p shared.Principal, id uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Image storage is not configured")
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG, GIF and WebP images are accepted").
			WithDetail("content_type", req.ContentType)
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, productError(err)
	}

	key := ProductImageKey(id, uuid.New(), ext)
	uploadURL, expiresAt, err := s.images.GenerateUploadURL(ctx, key, contentType, s.cfg.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign product image upload: %w", shared.TranslateStorageError(err))
	}

	return &ImageUploadResponse{
		UploadURL:  uploadURL,
		StorageKey: key,
		ImageURL:   s.images.PublicURL(key),
		ExpiresAt:  expiresAt,
	}, nil
}

// ProductImageKey builds the object key of a product image
func ProductImageKey(productID, imageID uuid.UUID, ext string) string {
	return fmt.Sprintf("products/%s/%s%s", productID, imageID, ext)
}

func productError(err error) error {
	err = shared.TranslateStorageError(err)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.ErrNotFound.Code, "Product not found")
	}
	return err
}
