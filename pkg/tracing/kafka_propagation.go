package tracing

import (
	"context"
	"sort"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const TraceparentHeader = "traceparent"

// ExtractKafkaHeaders continues the trace carried by a consumed message.
func ExtractKafkaHeaders(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}

	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}

	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// StoredHeaders rebuilds Kafka headers for a message persisted earlier, when
// the originating span is long gone and only its traceparent survives.
// Keys are sorted so the wire order is stable.
func StoredHeaders(stored map[string]string, traceparent string) []kafka.Header {
	keys := make([]string, 0, len(stored))
	for k := range stored {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafka.Header, 0, len(keys)+1)
	for _, k := range keys {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(stored[k])})
	}
	if traceparent != "" {
		headers = append(headers, kafka.Header{Key: TraceparentHeader, Value: []byte(traceparent)})
	}
	return headers
}
