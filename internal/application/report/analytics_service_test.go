package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/report"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalyticsRepository is a mock implementation of report.AnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) ProductPerformance(ctx context.Context) ([]report.ProductPerformance, error) {
	args := m.Called(ctx)
	return args.Get(0).([]report.ProductPerformance), args.Error(1)
}

func (m *MockAnalyticsRepository) DeliveredOrdersSince(ctx context.Context, since time.Time) ([]report.DeliveredOrder, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]report.DeliveredOrder), args.Error(1)
}

func (m *MockAnalyticsRepository) StatusDistribution(ctx context.Context) ([]report.StatusCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]report.StatusCount), args.Error(1)
}

func (m *MockAnalyticsRepository) DeliveredTotals(ctx context.Context) (report.TotalMetrics, error) {
	args := m.Called(ctx)
	return args.Get(0).(report.TotalMetrics), args.Error(1)
}

func (m *MockAnalyticsRepository) CountOrders(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type fixedCounter int64

func (c fixedCounter) Count(context.Context) (int64, error) { return int64(c), nil }

var _ report.AnalyticsRepository = (*MockAnalyticsRepository)(nil)

var admin = shared.NewPrincipal(uuid.New(), shared.RoleAdmin)

func TestAnalyticsService_Dashboard(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := NewAnalyticsService(repo, fixedCounter(0), time.Second, nil)
	svc.now = func() time.Time { return now }

	perf := []report.ProductPerformance{
		{ProductID: uuid.New(), Name: "Singer 4423", Category: "Machines", Stock: 3, TotalSold: 4, TotalRevenue: decimal.NewFromInt(800)},
		{ProductID: uuid.New(), Name: "Bobbins", Category: "Accessories", Stock: 40},
	}
	delivered := []report.DeliveredOrder{
		{OrderID: uuid.New(), Total: decimal.NewFromInt(500), OrderDate: now.AddDate(0, -1, 0)},
		{OrderID: uuid.New(), Total: decimal.NewFromInt(300), OrderDate: now},
	}

	repo.On("ProductPerformance", mock.Anything).Return(perf, nil)
	repo.On("DeliveredOrdersSince", mock.Anything, report.WindowStart(now)).Return(delivered, nil)
	repo.On("StatusDistribution", mock.Anything).Return([]report.StatusCount{{Status: "Delivered", Count: 2}}, nil)
	repo.On("DeliveredTotals", mock.Anything).Return(report.TotalMetrics{TotalOrders: 2, TotalRevenue: decimal.NewFromInt(800)}, nil)

	d, err := svc.Dashboard(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, d.MonthlyRevenue, 2)
	assert.Equal(t, "2026-06", d.MonthlyRevenue[0].Month)
	require.Len(t, d.TopProducts, 1)
	assert.Equal(t, "Singer 4423", d.TopProducts[0].Name)
	require.Len(t, d.LowStockProducts, 1)
	assert.Equal(t, int64(2), d.TotalMetrics.TotalOrders)
	repo.AssertExpectations(t)
}

func TestAnalyticsService_ProfitAnalysis(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	svc := NewAnalyticsService(repo, fixedCounter(0), time.Second, nil)

	repo.On("ProductPerformance", mock.Anything).Return([]report.ProductPerformance{
		{ProductID: uuid.New(), Name: "Janome HD3000", TotalSold: 1, TotalRevenue: decimal.NewFromInt(1000)},
	}, nil)
	repo.On("DeliveredOrdersSince", mock.Anything, mock.Anything).Return([]report.DeliveredOrder{}, nil)

	pa, err := svc.ProfitAnalysis(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, pa.ProfitData, 1)
	assert.True(t, pa.ProfitData[0].TotalProfit.Equal(decimal.NewFromInt(300)))
	assert.True(t, pa.ProfitData[0].TotalCost.Equal(decimal.NewFromInt(700)))
	assert.Empty(t, pa.MonthlyProfit)
}

func TestAnalyticsService_Stats(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	svc := NewAnalyticsService(repo, fixedCounter(7), time.Second, nil)

	repo.On("CountOrders", mock.Anything).Return(int64(12), nil)
	repo.On("DeliveredTotals", mock.Anything).Return(report.TotalMetrics{TotalRevenue: decimal.NewFromInt(4200)}, nil)

	stats, err := svc.Stats(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(4200)))
	assert.Equal(t, int64(7), stats.TotalServices)
}

func TestAnalyticsService_AdminOnly(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	svc := NewAnalyticsService(repo, fixedCounter(0), time.Second, nil)
	customer := shared.NewPrincipal(uuid.New(), shared.RoleUser)

	_, err := svc.Dashboard(context.Background(), customer)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.ProfitAnalysis(context.Background(), customer)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Stats(context.Background(), customer)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	repo.AssertNotCalled(t, "ProductPerformance", mock.Anything)
}

func TestAnalyticsService_StorageTimeout(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	svc := NewAnalyticsService(repo, fixedCounter(0), time.Second, nil)
	repo.On("CountOrders", mock.Anything).Return(int64(0), context.DeadlineExceeded)

	_, err := svc.Stats(context.Background(), admin)
	assert.ErrorIs(t, err, shared.ErrStorageTimeout)
}
