package report

import (
	"context"
	"time"

	"github.com/stitchline/backend/internal/domain/report"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ServiceCounter counts service requests for the admin summary
type ServiceCounter interface {
	Count(ctx context.Context) (int64, error)
}

// AnalyticsService builds the back office reports. Sales figures count delivered orders only.
type AnalyticsService struct {
	repo     report.AnalyticsRepository
	services ServiceCounter
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(repo report.AnalyticsRepository, services ServiceCounter, storageTimeout time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		repo:     repo,
		services: services,
		timeout:  storageTimeout,
		now:      time.Now,
		logger:   logger,
	}
}

// Dashboard returns stock, sales, revenue and status breakdowns
func (s *AnalyticsService) Dashboard(ctx context.Context, p shared.Principal) (*report.Dashboard, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	now := s.now()
	perf, err := s.repo.ProductPerformance(ctx)
	if err != nil {
		return nil, s.fail("product performance", err)
	}
	delivered, err := s.repo.DeliveredOrdersSince(ctx, report.WindowStart(now))
	if err != nil {
		return nil, s.fail("delivered orders", err)
	}
	statuses, err := s.repo.StatusDistribution(ctx)
	if err != nil {
		return nil, s.fail("status distribution", err)
	}
	totals, err := s.repo.DeliveredTotals(ctx)
	if err != nil {
		return nil, s.fail("delivered totals", err)
	}

	d := report.BuildDashboard(perf, delivered, statuses, totals, now)
	return &d, nil
}

// ProfitAnalysis returns per-product and monthly profit estimates
func (s *AnalyticsService) ProfitAnalysis(ctx context.Context, p shared.Principal) (*report.ProfitAnalysis, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	now := s.now()
	perf, err := s.repo.ProductPerformance(ctx)
	if err != nil {
		return nil, s.fail("product performance", err)
	}
	delivered, err := s.repo.DeliveredOrdersSince(ctx, report.WindowStart(now))
	if err != nil {
		return nil, s.fail("delivered orders", err)
	}

	pa := report.BuildProfitAnalysis(perf, delivered, now)
	return &pa, nil
}

// Stats returns the admin landing page summary
func (s *AnalyticsService) Stats(ctx context.Context, p shared.Principal) (*report.Stats, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	orders, err := s.repo.CountOrders(ctx)
	if err != nil {
		return nil, s.fail("order count", err)
	}
	totals, err := s.repo.DeliveredTotals(ctx)
	if err != nil {
		return nil, s.fail("delivered totals", err)
	}
	services, err := s.services.Count(ctx)
	if err != nil {
		return nil, s.fail("service count", err)
	}

	return &report.Stats{
		TotalOrders:   orders,
		TotalRevenue:  totals.TotalRevenue,
		TotalServices: services,
	}, nil
}

func (s *AnalyticsService) fail(query string, err error) error {
	err = shared.TranslateStorageError(err)
	s.logger.Error("Analytics query failed", zap.String("query", query), zap.Error(err))
	return err
}
