package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/servicedesk"
	"github.com/stitchline/backend/internal/domain/shared"
)

// ServiceRequestModel is the persistence model for servicedesk.ServiceRequest
type ServiceRequestModel struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey"`
	UserID       *uuid.UUID         `gorm:"type:uuid;index"`
	Name         string             `gorm:"type:varchar(100);not null"`
	Email        string             `gorm:"type:varchar(255);not null"`
	Phone        string             `gorm:"type:varchar(20);not null"`
	MachineModel string             `gorm:"type:varchar(100);not null"`
	PurchaseDate time.Time          `gorm:"type:date;not null"`
	Complaint    string             `gorm:"type:text;not null"`
	Status       servicedesk.Status `gorm:"type:varchar(20);not null;index"`
	AdminNotes   string             `gorm:"type:text"`
	RequestDate  time.Time          `gorm:"not null"`
	UpdatedAt    time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ServiceRequestModel) TableName() string {
	return "services"
}

// ToDomain converts the model to a domain ServiceRequest
func (m *ServiceRequestModel) ToDomain() *servicedesk.ServiceRequest {
	return &servicedesk.ServiceRequest{
		BaseEntity:   shared.BaseEntity{ID: m.ID, CreatedAt: m.RequestDate, UpdatedAt: m.UpdatedAt},
		UserID:       m.UserID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		MachineModel: m.MachineModel,
		PurchaseDate: m.PurchaseDate,
		Complaint:    m.Complaint,
		Status:       m.Status,
		AdminNotes:   m.AdminNotes,
	}
}

// ServiceRequestModelFromDomain creates a model from a domain ServiceRequest
func ServiceRequestModelFromDomain(r *servicedesk.ServiceRequest) *ServiceRequestModel {
	return &ServiceRequestModel{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		MachineModel: r.MachineModel,
		PurchaseDate: r.PurchaseDate,
		Complaint:    r.Complaint,
		Status:       r.Status,
		AdminNotes:   r.AdminNotes,
		RequestDate:  r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
