package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/plasto-orders/pkg/idempotency"
	"github.com/dmehra2102/plasto-orders/pkg/tracing"
)

// Event is one order event as published by the outbox relay.
type Event struct {
	Type          string
	AggregateType string
	EventID       string
	Key           string
	Payload       json.RawMessage
	Partition     int
	Offset        int64
}

type HandlerFunc func(ctx context.Context, ev Event) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	log    *slog.Logger
	reader messageReader
	handle HandlerFunc
	dedup  *idempotency.Store
	tracer trace.Tracer
}

// NewConsumer reads the order event topic in a consumer group. dedup may be
// nil; with it, events are skipped when their event_id was already seen.
func NewConsumer(log *slog.Logger, brokers []string, topic, group string, dedup *idempotency.Store, handle HandlerFunc) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return newConsumer(log, r, dedup, handle)
}

func newConsumer(log *slog.Logger, r messageReader, dedup *idempotency.Store, handle HandlerFunc) *Consumer {
	return &Consumer{
		log:    log,
		reader: r,
		handle: handle,
		dedup:  dedup,
		tracer: otel.Tracer("order-events-consumer"),
	}
}

// Run consumes until ctx is cancelled. Every fetched message is committed,
// including ones the handler failed on.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		c.process(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	ev := Event{
		Type:          headerValue(msg.Headers, "event_type"),
		AggregateType: headerValue(msg.Headers, "aggregate_type"),
		EventID:       headerValue(msg.Headers, "event_id"),
		Key:           string(msg.Key),
		Payload:       json.RawMessage(msg.Value),
		Partition:     msg.Partition,
		Offset:        msg.Offset,
	}

	if c.dedup != nil && ev.EventID != "" {
		key := c.dedup.Key("order-events", ev.AggregateType, ev.EventID)
		seen, err := c.dedup.Seen(ctx, key)
		if err != nil {
			c.log.Error("idempotency check failed", "err", err)
		} else if seen {
			c.log.Info("duplicate event skipped", "event_id", ev.EventID)
			return
		}
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "Consume"+ev.Type)
	defer span.End()
	span.SetAttributes(attribute.String("messaging.message.id", ev.EventID), attribute.String("order.key", ev.Key))

	if !json.Valid(msg.Value) {
		c.log.Error("event payload is not json", "offset", msg.Offset)
		return
	}
	if err := c.handle(msgCtx, ev); err != nil {
		c.log.Error("event handling failed", "event_id", ev.EventID, "type", ev.Type, "err", err)
		return
	}
	c.log.Debug("event handled", "event_id", ev.EventID, "type", ev.Type)
}

func headerValue(h []kafka.Header, key string) string {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value)
		}
	}
	return ""
}
