package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/plasto-orders/pkg/logging"
)

type memStore struct {
	pending []Event
	sent    []int64
	failed  map[int64]string
}

func (s *memStore) LockBatch(_ context.Context, _ string, batchSize int, _ time.Duration) ([]Event, error) {
	n := min(batchSize, len(s.pending))
	batch := s.pending[:n]
	s.pending = s.pending[n:]
	return batch, nil
}

func (s *memStore) MarkSent(_ context.Context, ids []int64) error {
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *memStore) MarkFailed(_ context.Context, id int64, errMsg string) error {
	s.failed[id] = errMsg
	return nil
}

type recordingProducer struct {
	msgs   []kafka.Message
	failOn string
}

func (p *recordingProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if string(m.Key) == p.failOn {
			return errors.New("broker unavailable")
		}
		p.msgs = append(p.msgs, m)
	}
	return nil
}

func TestRelayTick(t *testing.T) {
	store := &memStore{
		failed: map[int64]string{},
		pending: []Event{
			{ID: 1, AggregateType: "manual_order", AggregateID: "10", Type: "OrderCreated", Payload: []byte(`{}`), Traceparent: "00-abc-def-01"},
			{ID: 2, AggregateType: "telegram_order", AggregateID: "3", Type: "OrderDeleted", Payload: []byte(`{}`)},
			{ID: 3, AggregateType: "manual_order", AggregateID: "11", Type: "OrderUpdated", Payload: []byte(`{}`), Headers: map[string]string{"event_id": "e-3"}},
		},
	}
	producer := &recordingProducer{failOn: "telegram_order:3"}
	relay := NewRelay(logging.Discard(), store, NewDispatcher(logging.Discard(), producer, "orders.events"), "test-relay")

	sent, err := relay.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sent)
	assert.Equal(t, []int64{1, 3}, store.sent)
	assert.Contains(t, store.failed[2], "broker unavailable")

	require.Len(t, producer.msgs, 2)
	first := producer.msgs[0]
	assert.Equal(t, "orders.events", first.Topic)
	assert.Equal(t, "manual_order:10", string(first.Key))
	assert.Contains(t, first.Headers, kafka.Header{Key: "traceparent", Value: []byte("00-abc-def-01")})
	assert.Contains(t, first.Headers, kafka.Header{Key: "event_type", Value: []byte("OrderCreated")})
	assert.Contains(t, producer.msgs[1].Headers, kafka.Header{Key: "event_id", Value: []byte("e-3")})
}

func TestRelayTickEmpty(t *testing.T) {
	store := &memStore{failed: map[int64]string{}}
	relay := NewRelay(logging.Discard(), store, NewDispatcher(logging.Discard(), &recordingProducer{}, "t"), "r")

	sent, err := relay.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}
