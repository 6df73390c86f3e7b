package event

import (
	"context"

	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StatusCounter counts outbox entries per delivery state
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error)
}

// OutboxService reports on the order event outbox
type OutboxService struct {
	counter StatusCounter
	logger  *zap.Logger
}

// NewOutboxService creates a new outbox service
func NewOutboxService(counter StatusCounter, logger *zap.Logger) *OutboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxService{counter: counter, logger: logger}
}

// OutboxStatsResponse is the number of outbox entries in each state
type OutboxStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// GetStats returns outbox statistics. Admin only.
func (s *OutboxService) GetStats(ctx context.Context, p shared.Principal) (*OutboxStatsResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	counts, err := s.counter.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to get outbox stats", zap.Error(err))
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &OutboxStatsResponse{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}
