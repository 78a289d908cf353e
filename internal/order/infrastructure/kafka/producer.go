package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// NewWriter builds the writer the outbox dispatcher publishes order events
// with. Messages are keyed by aggregate, so one order's events stay ordered
// within a partition.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}
