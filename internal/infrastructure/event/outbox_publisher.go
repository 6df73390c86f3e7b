package event

import (
	"context"

	"github.com/stitchline/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox table
type OutboxPublisher struct {
	serializer *EventSerializer
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// Recorder returns an EventRecorder that writes through tx, so the events
// commit or roll back together with the caller's state change.
func (p *OutboxPublisher) Recorder(tx *gorm.DB) shared.EventRecorder {
	return &outboxRecorder{serializer: p.serializer, writer: NewGormOutboxRepository(tx)}
}

type outboxRecorder struct {
	serializer *EventSerializer
	writer     shared.OutboxWriter
}

func (r *outboxRecorder) Record(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, e := range events {
		payload, err := r.serializer.Serialize(e)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(e, payload))
	}
	return r.writer.Save(ctx, entries...)
}
