//go:build integration

package integration

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/plasto-orders/internal/order/domain"
	orderkafka "github.com/dmehra2102/plasto-orders/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/plasto-orders/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
	"github.com/dmehra2102/plasto-orders/pkg/outbox"
)

func TestRelayPublishesOrderEvents(t *testing.T) {
	reset(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	kc, brokers, err := StartKafka(ctx, "plasto-relay")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kc.Terminate(context.Background()) })

	log := logging.Discard()
	repo := orderpg.NewRepository(log, env.Pool)
	o := domain.NewManual("Acme", "INV-1", "alice", nil, today)
	id, err := repo.CreateManual(ctx, o, outbox.Message{
		AggregateType: o.Ref.AggregateType(),
		Type:          domain.EventOrderCreated,
		Payload:       []byte(`{"organization":"Acme"}`),
		Headers:       map[string]string{"event_id": "evt-1"},
		Traceparent:   "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	})
	require.NoError(t, err)

	const topic = "orders.events.test"
	writer := orderkafka.NewWriter(brokers)
	defer writer.Close()
	relay := outbox.NewRelay(log, orderpg.NewOutboxStore(log, env.Pool), outbox.NewDispatcher(log, writer, topic), "it-relay")

	require.Eventually(t, func() bool {
		n, err := relay.Tick(ctx)
		return err == nil && n == 1
	}, time.Minute, time.Second)

	n, err := relay.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	var status string
	require.NoError(t, env.Pool.QueryRow(ctx, `SELECT status FROM outbox`).Scan(&status))
	assert.Equal(t, string(outbox.StatusSent), status)

	reader := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, Partition: 0})
	defer reader.Close()
	m, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, "manual_order:"+strconv.FormatInt(id, 10), string(m.Key))
	assert.JSONEq(t, `{"organization":"Acme"}`, string(m.Value))
	headers := map[string]string{}
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, domain.EventOrderCreated, headers["event_type"])
	assert.Equal(t, "evt-1", headers["event_id"])
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", headers["traceparent"])
}
