package company

import (
	"context"

	"github.com/google/uuid"
)

// Profile is the public information about the shop
type Profile struct {
	ID          uuid.UUID
	Name        string
	Description string
	Contact     string
	Address     string
}

// DefaultProfile is served when no profile row exists
func DefaultProfile() Profile {
	return Profile{
		Name:        "Sewing Machine Company",
		Description: "We provide high-quality sewing machines and services.",
		Contact:     "contact@sewingmachine.com",
		Address:     "123 Sewing Street, City, Country",
	}
}

// Repository reads the company profile
type Repository interface {
	// FindFirst returns shared.ErrNotFound when no row exists
	FindFirst(ctx context.Context) (*Profile, error)
}
