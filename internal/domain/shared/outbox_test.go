package shared

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	aggID := uuid.New()
	evt := &testEvent{BaseDomainEvent: NewBaseDomainEvent("OrderPlaced", "Order", aggID)}

	entry := NewOutboxEntry(evt, []byte(`{"ok":true}`))

	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "OrderPlaced", entry.EventType)
	assert.Equal(t, aggID, entry.AggregateID)
	assert.Equal(t, "Order", entry.AggregateType)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("schedules retry with backoff", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 3}

		entry.MarkFailed("broker down")

		assert.Equal(t, OutboxStatusFailed, entry.Status)
		assert.Equal(t, 1, entry.RetryCount)
		assert.Equal(t, "broker down", entry.LastError)
		if assert.NotNil(t, entry.NextRetryAt) {
			assert.True(t, entry.NextRetryAt.After(time.Now()))
		}
	})

	t.Run("moves to dead after max retries", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, RetryCount: 2, MaxRetries: 3}

		entry.MarkFailed("still down")

		assert.True(t, entry.IsDead())
		assert.Nil(t, entry.NextRetryAt)
	})
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing}
	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	assert.NotNil(t, entry.ProcessedAt)
}

func TestDomainError_Is(t *testing.T) {
	err := NewInsufficientStockError(uuid.New(), "Singer 4423", 1, 3)

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, err.Details["available"])
	assert.Contains(t, err.Error(), "Singer 4423")
}

func TestPrincipal_RequireAdmin(t *testing.T) {
	assert.NoError(t, NewPrincipal(uuid.New(), RoleAdmin).RequireAdmin())

	err := NewPrincipal(uuid.New(), RoleUser).RequireAdmin()
	assert.ErrorIs(t, err, ErrForbidden)
}
