package servicedesk

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/shared"
)

// Status of a repair or maintenance ticket
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusProcessing || s == StatusCompleted
}

const dateLayout = "2006-01-02"

// ServiceRequest is a customer's repair or maintenance ticket.
// Guests may file requests, so UserID is optional.
type ServiceRequest struct {
	shared.BaseEntity
	UserID       *uuid.UUID
	Name         string
	Email        string
	Phone        string
	MachineModel string
	PurchaseDate time.Time
	Complaint    string
	Status       Status
	AdminNotes   string
}

// Submission is the public ticket form
type Submission struct {
	Name         string
	Email        string
	Phone        string
	MachineModel string
	PurchaseDate string
	Complaint    string
}

// NewServiceRequest validates a submission and opens a pending ticket
func NewServiceRequest(userID *uuid.UUID, s Submission) (*ServiceRequest, error) {
	var violations []string
	required := []struct {
		value, field string
	}{
		{s.Name, "name"},
		{s.Email, "email"},
		{s.Phone, "phone"},
		{s.MachineModel, "machine_model"},
		{s.PurchaseDate, "purchase_date"},
		{s.Complaint, "complaint"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			violations = append(violations, r.field+" is required")
		}
	}

	var purchased time.Time
	if strings.TrimSpace(s.PurchaseDate) != "" {
		var err error
		purchased, err = time.Parse(dateLayout, strings.TrimSpace(s.PurchaseDate))
		if err != nil {
			violations = append(violations, "purchase_date must be YYYY-MM-DD")
		}
	}

	if len(violations) > 0 {
		return nil, shared.NewValidationError("All fields are required", violations)
	}

	if userID != nil && *userID == uuid.Nil {
		userID = nil
	}

	return &ServiceRequest{
		BaseEntity:   shared.NewBaseEntity(),
		UserID:       userID,
		Name:         strings.TrimSpace(s.Name),
		Email:        strings.ToLower(strings.TrimSpace(s.Email)),
		Phone:        strings.TrimSpace(s.Phone),
		MachineModel: strings.TrimSpace(s.MachineModel),
		PurchaseDate: purchased,
		Complaint:    strings.TrimSpace(s.Complaint),
		Status:       StatusPending,
	}, nil
}

// ChangeStatus moves the ticket along; completed tickets are final
func (r *ServiceRequest) ChangeStatus(next Status, notes string) error {
	if !next.IsValid() {
		return shared.ErrInvalidStatus
	}
	if r.Status == StatusCompleted && next != StatusCompleted {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Completed service requests cannot be reopened")
	}
	r.Status = next
	if strings.TrimSpace(notes) != "" {
		r.AdminNotes = strings.TrimSpace(notes)
	}
	r.UpdatedAt = time.Now()
	return nil
}

// Repository defines the interface for service request persistence
type Repository interface {
	Create(ctx context.Context, r *ServiceRequest) error
	Update(ctx context.Context, r *ServiceRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error)

	// FindAll returns requests newest first; an empty status means all
	FindAll(ctx context.Context, status Status) ([]ServiceRequest, error)

	FindByUser(ctx context.Context, userID uuid.UUID) ([]ServiceRequest, error)
	Count(ctx context.Context) (int64, error)
}
