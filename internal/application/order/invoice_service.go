package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/company"
	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoiceData is everything printed on an invoice
type InvoiceData struct {
	Order         *order.Order
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Company       company.Profile
	IssuedAt      time.Time
}

// InvoiceDocument is a rendered invoice ready to download
type InvoiceDocument struct {
	ContentType string
	Filename    string
	Data        []byte
}

// InvoiceRenderer turns invoice data into a document
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, data InvoiceData) (*InvoiceDocument, error)
}

// InvoiceService renders invoices for orders the caller may read
type InvoiceService struct {
	orderRepo   order.Repository
	userRepo    identity.UserRepository
	companyRepo company.Repository
	renderer    InvoiceRenderer
	timeout     time.Duration
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	orderRepo order.Repository,
	userRepo identity.UserRepository,
	companyRepo company.Repository,
	renderer InvoiceRenderer,
	storageTimeout time.Duration,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		renderer:    renderer,
		timeout:     storageTimeout,
		logger:      logger,
	}
}

// RenderInvoice builds the invoice of one order. Owner or admin.
func (s *InvoiceService) RenderInvoice(ctx context.Context, p shared.Principal, orderID uuid.UUID) (*InvoiceDocument, error) {
	data, err := s.load(ctx, p, orderID)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.RenderInvoice(ctx, *data)
	if err != nil {
		s.logger.Error("Invoice rendering failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return nil, err
	}
	return doc, nil
}

func (s *InvoiceService) load(ctx context.Context, p shared.Principal, orderID uuid.UUID) (*InvoiceData, error) {
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	if !order.CanAccessOrder(p, o) {
		return nil, shared.ErrForbidden
	}

	data := &InvoiceData{Order: o, Company: company.DefaultProfile(), IssuedAt: time.Now()}

	customer, err := s.userRepo.FindByID(ctx, o.UserID)
	switch {
	case err == nil:
		data.CustomerName = customer.Name
		data.CustomerEmail = customer.Email
		data.CustomerPhone = customer.Phone
	case !errors.Is(err, shared.ErrNotFound):
		return nil, shared.TranslateStorageError(err)
	}

	profile, err := s.companyRepo.FindFirst(ctx)
	switch {
	case err == nil:
		data.Company = *profile
	case !errors.Is(err, shared.ErrNotFound):
		return nil, shared.TranslateStorageError(err)
	}

	return data, nil
}
