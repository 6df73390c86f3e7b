package company

import (
	"context"
	"errors"
	"time"

	"github.com/stitchline/backend/internal/domain/company"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InfoResponse is the public company profile
type InfoResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
	Address     string `json:"address"`
}

// Service serves the company profile
type Service struct {
	repo    company.Repository
	timeout time.Duration
	logger  *zap.Logger
}

// NewService creates a new company Service
func NewService(repo company.Repository, storageTimeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, timeout: storageTimeout, logger: logger}
}

// Info returns the stored profile, or the default one when none is stored
func (s *Service) Info(ctx context.Context) (*InfoResponse, error) {
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	profile, err := s.repo.FindFirst(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, shared.TranslateStorageError(err)
		}
		def := company.DefaultProfile()
		profile = &def
	}

	return &InfoResponse{
		Name:        profile.Name,
		Description: profile.Description,
		Contact:     profile.Contact,
		Address:     profile.Address,
	}, nil
}
