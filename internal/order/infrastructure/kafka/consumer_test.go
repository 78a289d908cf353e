package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/plasto-orders/pkg/idempotency"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
)

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

type memRedis map[string]bool

func (m memRedis) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if m[key] {
		return redis.NewBoolResult(false, nil)
	}
	m[key] = true
	return redis.NewBoolResult(true, nil)
}

func (m memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if m[k] {
			delete(m, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func message(offset int64, eventID, value string) kafka.Message {
	return kafka.Message{
		Offset: offset,
		Key:    []byte("manual_order:1000000"),
		Value:  []byte(value),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("OrderUpdated")},
			{Key: "aggregate_type", Value: []byte("manual_order")},
			{Key: "event_id", Value: []byte(eventID)},
		},
	}
}

func TestConsumerRun(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{
		message(1, "e-1", `{"order_id":1000000}`),
		message(2, "e-1", `{"order_id":1000000}`),
		message(3, "e-2", `not json`),
		message(4, "e-3", `{"order_id":1000000}`),
	}}
	var got []Event
	handle := func(_ context.Context, ev Event) error {
		got = append(got, ev)
		if ev.EventID == "e-3" {
			return errors.New("boom")
		}
		return nil
	}

	c := newConsumer(logging.Discard(), r, idempotency.NewStore(memRedis{}, time.Minute), handle)
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, got, 2)
	assert.Equal(t, "OrderUpdated", got[0].Type)
	assert.Equal(t, "manual_order", got[0].AggregateType)
	assert.Equal(t, "manual_order:1000000", got[0].Key)
	assert.JSONEq(t, `{"order_id":1000000}`, string(got[0].Payload))
	assert.Equal(t, "e-3", got[1].EventID)

	assert.Equal(t, []int64{1, 2, 3, 4}, r.committed)
	assert.True(t, r.closed)
}

func TestConsumerWithoutDedup(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{message(1, "e-1", `{}`), message(2, "e-1", `{}`)}}
	calls := 0
	c := newConsumer(logging.Discard(), r, nil, func(context.Context, Event) error { calls++; return nil })

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 2, calls)
}
