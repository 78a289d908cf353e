package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmehra2102/plasto-orders/internal/config"
	orderkafka "github.com/dmehra2102/plasto-orders/internal/order/infrastructure/kafka"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
	"github.com/dmehra2102/plasto-orders/pkg/shutdown"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect published order events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print order events from Kafka as JSON lines",
	Long: `Join a consumer group on the order event topic and print every event to
stdout until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		brokers, _ := cmd.Flags().GetString("brokers")
		topic, _ := cmd.Flags().GetString("topic")
		group, _ := cmd.Flags().GetString("group")
		level, _ := cmd.Flags().GetString("log-level")

		ctx, cancel := shutdown.WithSignals(context.Background())
		defer cancel()

		log := logging.New(logging.Options{Level: level, Format: "text", Output: os.Stderr})
		enc := json.NewEncoder(os.Stdout)
		consumer := orderkafka.NewConsumer(log, strings.Split(brokers, ","), topic, group, nil,
			func(_ context.Context, ev orderkafka.Event) error {
				return enc.Encode(map[string]any{
					"type":      ev.Type,
					"aggregate": ev.Key,
					"event_id":  ev.EventID,
					"payload":   ev.Payload,
				})
			})
		return consumer.Run(ctx)
	},
}

func init() {
	def := config.Default()
	brokers, topic := def.KafkaAddr, def.OutboxTopic
	if v := os.Getenv("KAFKA_ADDR"); v != "" {
		brokers = v
	}
	if v := os.Getenv("OUTBOX_TOPIC"); v != "" {
		topic = v
	}
	eventsTailCmd.Flags().String("brokers", brokers, "Comma-separated Kafka brokers (env KAFKA_ADDR)")
	eventsTailCmd.Flags().String("topic", topic, "Order event topic (env OUTBOX_TOPIC)")
	eventsTailCmd.Flags().String("group", "ordersctl-tail", "Consumer group")

	eventsCmd.AddCommand(eventsTailCmd)
}
