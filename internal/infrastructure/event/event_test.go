package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func placedEvent() *order.OrderPlacedEvent {
	o := &order.Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            uuid.New(),
		TrackingNumber:    "TRK1700000000000ABCDE",
		Total:             decimal.RequireFromString("45000.00"),
		PaymentMethod:     "COD",
		Items: []order.Item{
			{ProductID: uuid.New(), ProductName: "Singer 4423", Quantity: 1, UnitPrice: decimal.RequireFromString("45000.00")},
		},
	}
	return order.NewOrderPlacedEvent(o)
}

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	if h.panics {
		panic("handler blew up")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, e)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func TestInMemoryEventBus(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	placed := &recordingHandler{types: []string{order.EventTypeOrderPlaced}}
	all := &recordingHandler{}
	failing := &recordingHandler{err: errors.New("boom")}
	panicking := &recordingHandler{panics: true}

	bus.Subscribe(placed)
	bus.Subscribe(all)
	bus.Subscribe(failing, order.EventTypeOrderPlaced)
	bus.Subscribe(panicking, order.EventTypeOrderPlaced)

	require.NoError(t, bus.Publish(context.Background(), placedEvent()))

	assert.Len(t, placed.handled, 1)
	assert.Len(t, all.handled, 1)
	assert.Len(t, failing.handled, 1)
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewOrderEventSerializer()
	ev := placedEvent()

	data, err := s.Serialize(ev)
	require.NoError(t, err)

	decoded, err := s.Deserialize(order.EventTypeOrderPlaced, data)
	require.NoError(t, err)
	got, ok := decoded.(*order.OrderPlacedEvent)
	require.True(t, ok)
	assert.Equal(t, ev.EventID(), got.EventID())
	assert.Equal(t, ev.TrackingNumber, got.TrackingNumber)
	assert.True(t, ev.Total.Equal(got.Total))

	_, err = s.Deserialize("Unknown", data)
	assert.Error(t, err)
}

type fakeOutboxRepo struct {
	mu      sync.Mutex
	batch   []*shared.OutboxEntry
	updated []*shared.OutboxEntry
	deleted int64
}

func (r *fakeOutboxRepo) Save(context.Context, ...*shared.OutboxEntry) error { return nil }

func (r *fakeOutboxRepo) ClaimBatch(context.Context, time.Time, int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.batch
	r.batch = nil
	return out, nil
}

func (r *fakeOutboxRepo) Update(_ context.Context, e *shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, e)
	return nil
}

func (r *fakeOutboxRepo) DeleteSentBefore(context.Context, time.Time) (int64, error) {
	return r.deleted, nil
}

type sinkFunc func(ctx context.Context, e *shared.OutboxEntry) error

func (f sinkFunc) Deliver(ctx context.Context, e *shared.OutboxEntry) error { return f(ctx, e) }

func TestOutboxProcessor_ProcessOnce(t *testing.T) {
	payload, err := NewOrderEventSerializer().Serialize(placedEvent())
	require.NoError(t, err)

	t.Run("marks delivered entries sent", func(t *testing.T) {
		repo := &fakeOutboxRepo{batch: []*shared.OutboxEntry{shared.NewOutboxEntry(placedEvent(), payload)}}
		p := NewOutboxProcessor(repo, sinkFunc(func(context.Context, *shared.OutboxEntry) error { return nil }),
			OutboxProcessorConfig{}, nil)

		p.ProcessOnce(context.Background())

		require.Len(t, repo.updated, 1)
		assert.Equal(t, shared.OutboxStatusSent, repo.updated[0].Status)
		assert.NotNil(t, repo.updated[0].ProcessedAt)
	})

	t.Run("schedules retry then dead letters", func(t *testing.T) {
		entry := shared.NewOutboxEntry(placedEvent(), payload)
		repo := &fakeOutboxRepo{}
		p := NewOutboxProcessor(repo, sinkFunc(func(context.Context, *shared.OutboxEntry) error {
			return errors.New("broker down")
		}), OutboxProcessorConfig{MaxRetries: 2}, nil)

		repo.batch = []*shared.OutboxEntry{entry}
		p.ProcessOnce(context.Background())
		assert.Equal(t, shared.OutboxStatusFailed, entry.Status)
		assert.NotNil(t, entry.NextRetryAt)

		repo.batch = []*shared.OutboxEntry{entry}
		p.ProcessOnce(context.Background())
		assert.Equal(t, shared.OutboxStatusDead, entry.Status)
		assert.Equal(t, "broker down", entry.LastError)
	})
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	repo := &fakeOutboxRepo{}
	p := NewOutboxProcessor(repo, sinkFunc(func(context.Context, *shared.OutboxEntry) error { return nil }),
		OutboxProcessorConfig{PollInterval: 10 * time.Millisecond, CleanupEnabled: true, CleanupInterval: 10 * time.Millisecond}, nil)

	p.Start(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, p.Stop(ctx))
}

func TestBusSink_Deliver(t *testing.T) {
	serializer := NewOrderEventSerializer()
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{}
	bus.Subscribe(h)

	ev := placedEvent()
	payload, err := serializer.Serialize(ev)
	require.NoError(t, err)

	require.NoError(t, NewBusSink(serializer, bus).Deliver(context.Background(), shared.NewOutboxEntry(ev, payload)))
	require.Len(t, h.handled, 1)
	assert.Equal(t, ev.EventID(), h.handled[0].EventID())

	bad := shared.NewOutboxEntry(ev, []byte("not json"))
	assert.Error(t, NewBusSink(serializer, bus).Deliver(context.Background(), bad))
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaSink_Deliver(t *testing.T) {
	w := &fakeWriter{}
	sink := &KafkaSink{writer: w, topic: "stitchline.orders"}
	ev := placedEvent()
	entry := shared.NewOutboxEntry(ev, []byte(`{"ok":true}`))

	require.NoError(t, sink.Deliver(context.Background(), entry))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte(ev.AggregateID().String()), w.msgs[0].Key)
	assert.Equal(t, entry.Payload, w.msgs[0].Value)
	assert.Contains(t, w.msgs[0].Headers, kafka.Header{Key: HeaderEventType, Value: []byte(order.EventTypeOrderPlaced)})

	w.err = errors.New("leader not available")
	assert.ErrorContains(t, sink.Deliver(context.Background(), entry), "stitchline.orders")
}
