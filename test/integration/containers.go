//go:build integration

package integration

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dmehra2102/plasto-orders/migrations"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
)

type Env struct {
	PG    *postgres.PostgresContainer
	Pool  *pgxpool.Pool
	PGURL string
}

// Setup starts Postgres with the schema applied.
func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	env := &Env{}
	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("plasto"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, err
	}
	env.PG = pgC

	if env.PGURL, err = pgC.ConnectionString(ctx, "sslmode=disable"); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	if env.Pool, err = pgxpool.New(ctx, env.PGURL); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	if err := migrations.Apply(ctx, logging.Discard(), env.Pool); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	return env, nil
}

// StartKafka runs a single-node broker and returns its bootstrap addresses.
func StartKafka(ctx context.Context, clusterID string) (*kafka.KafkaContainer, []string, error) {
	kafkaC, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0", kafka.WithClusterID(clusterID))
	if err != nil {
		return nil, nil, err
	}
	brokers, err := kafkaC.Brokers(ctx)
	if err != nil {
		_ = kafkaC.Terminate(context.Background())
		return nil, nil, err
	}
	return kafkaC, brokers, nil
}

func (e *Env) Teardown(ctx context.Context) {
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PG != nil {
		_ = e.PG.Terminate(ctx)
	}
}
