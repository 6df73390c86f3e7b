package servicedesk

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/servicedesk"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SubmitRequest is the public repair ticket form
type SubmitRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	MachineModel string `json:"machine_model"`
	PurchaseDate string `json:"purchase_date"`
	Complaint    string `json:"complaint"`
}

// UpdateStatusRequest moves a ticket along
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// ListFilter narrows the admin listing
type ListFilter struct {
	Status string `form:"status"`
}

// ServiceRequestResponse is a ticket as returned to clients
type ServiceRequestResponse struct {
	ID           uuid.UUID          `json:"service_id"`
	UserID       *uuid.UUID         `json:"user_id,omitempty"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	MachineModel string             `json:"machine_model"`
	PurchaseDate string             `json:"purchase_date"`
	Complaint    string             `json:"complaint"`
	Status       servicedesk.Status `json:"status"`
	AdminNotes   string             `json:"admin_notes,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ToServiceRequestResponse converts a domain ticket to its response
func ToServiceRequestResponse(r *servicedesk.ServiceRequest) ServiceRequestResponse {
	return ServiceRequestResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		MachineModel: r.MachineModel,
		PurchaseDate: r.PurchaseDate.Format("2006-01-02"),
		Complaint:    r.Complaint,
		Status:       r.Status,
		AdminNotes:   r.AdminNotes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toResponses(rs []servicedesk.ServiceRequest) []ServiceRequestResponse {
	out := make([]ServiceRequestResponse, len(rs))
	for i := range rs {
		out[i] = ToServiceRequestResponse(&rs[i])
	}
	return out
}

// Service manages repair and maintenance tickets
type Service struct {
	repo    servicedesk.Repository
	timeout time.Duration
	logger  *zap.Logger
}

// NewService creates a new servicedesk Service
func NewService(repo servicedesk.Repository, storageTimeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, timeout: storageTimeout, logger: logger}
}

// Submit files a ticket. Guests may submit; a signed-in caller is linked to it.
func (s *Service) Submit(ctx context.Context, p shared.Principal, req SubmitRequest) (*ServiceRequestResponse, error) {
	var userID *uuid.UUID
	if !p.IsAnonymous() {
		id := p.UserID
		userID = &id
	}
	ticket, err := servicedesk.NewServiceRequest(userID, servicedesk.Submission{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		MachineModel: req.MachineModel,
		PurchaseDate: req.PurchaseDate,
		Complaint:    req.Complaint,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	s.logger.Info("Service request submitted",
		zap.String("service_id", ticket.ID.String()),
		zap.String("machine_model", ticket.MachineModel))

	resp := ToServiceRequestResponse(ticket)
	return &resp, nil
}

// List returns every ticket newest first, optionally by status
func (s *Service) List(ctx context.Context, p shared.Principal, f ListFilter) ([]ServiceRequestResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	status := servicedesk.Status(f.Status)
	if status != "" && !status.IsValid() {
		return nil, shared.ErrInvalidStatus.WithDetail("allowed", allowedStatuses())
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	tickets, err := s.repo.FindAll(ctx, status)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	return toResponses(tickets), nil
}

// ListMine returns the caller's own tickets
func (s *Service) ListMine(ctx context.Context, p shared.Principal) ([]ServiceRequestResponse, error) {
	if p.IsAnonymous() {
		return nil, shared.ErrUnauthorized
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	tickets, err := s.repo.FindByUser(ctx, p.UserID)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	return toResponses(tickets), nil
}

// UpdateStatus changes the status and admin notes of a ticket
func (s *Service) UpdateStatus(ctx context.Context, p shared.Principal, id uuid.UUID, req UpdateStatusRequest) (*ServiceRequestResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	next := servicedesk.Status(req.Status)
	if !next.IsValid() {
		return nil, shared.ErrInvalidStatus.WithDetail("allowed", allowedStatuses())
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		err = shared.TranslateStorageError(err)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Service request not found")
		}
		return nil, err
	}
	previous := ticket.Status
	if err := ticket.ChangeStatus(next, req.Notes); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	s.logger.Info("Service request status changed",
		zap.String("service_id", ticket.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(next)))
	resp := ToServiceRequestResponse(ticket)
	return &resp, nil
}

func allowedStatuses() []string {
	return []string{
		string(servicedesk.StatusPending),
		string(servicedesk.StatusProcessing),
		string(servicedesk.StatusCompleted),
	}
}
