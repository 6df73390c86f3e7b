package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	counts map[shared.OutboxStatus]int64
	err    error
}

func (s stubCounter) CountByStatus(context.Context) (map[shared.OutboxStatus]int64, error) {
	return s.counts, s.err
}

func TestOutboxService_GetStats(t *testing.T) {
	admin := shared.NewPrincipal(uuid.New(), shared.RoleAdmin)

	t.Run("sums every state", func(t *testing.T) {
		svc := NewOutboxService(stubCounter{counts: map[shared.OutboxStatus]int64{
			shared.OutboxStatusPending: 2,
			shared.OutboxStatusSent:    10,
			shared.OutboxStatusDead:    1,
		}}, nil)

		stats, err := svc.GetStats(context.Background(), admin)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Pending)
		assert.Equal(t, int64(10), stats.Sent)
		assert.Equal(t, int64(1), stats.Dead)
		assert.Equal(t, int64(0), stats.Failed)
		assert.Equal(t, int64(13), stats.Total)
	})

	t.Run("rejects non admins", func(t *testing.T) {
		svc := NewOutboxService(stubCounter{}, nil)
		_, err := svc.GetStats(context.Background(), shared.NewPrincipal(uuid.New(), shared.RoleUser))
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("propagates storage errors", func(t *testing.T) {
		boom := errors.New("db down")
		svc := NewOutboxService(stubCounter{err: boom}, nil)
		_, err := svc.GetStats(context.Background(), admin)
		assert.ErrorIs(t, err, boom)
	})
}
