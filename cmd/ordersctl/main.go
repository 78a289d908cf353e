package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmehra2102/plasto-orders/internal/config"
	"github.com/dmehra2102/plasto-orders/migrations"
	"github.com/dmehra2102/plasto-orders/pkg/clock"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ordersctl",
	Short: "Administer the Plasto orders database",
	Long: `ordersctl applies the schema and manages the records that have no
API of their own: manager accounts and the product catalog.`,
	SilenceUsage: true,
}

func init() {
	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		pgURL = config.Default().PGURL
	}
	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = config.Default().Timezone
	}
	rootCmd.PersistentFlags().String("pg-url", pgURL, "Postgres connection URL (env PG_URL)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level")
	rootCmd.PersistentFlags().String("timezone", tz, "IANA zone that decides today's date (env TIMEZONE)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(managerCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(eventsCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd, func(ctx context.Context, env *cliEnv) error {
			if err := migrations.Apply(ctx, env.log, env.pool); err != nil {
				return err
			}
			fmt.Println("✓ Schema is up to date")
			return nil
		})
	},
}

type cliEnv struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func withPool(cmd *cobra.Command, fn func(ctx context.Context, env *cliEnv) error) error {
	pgURL, _ := cmd.Flags().GetString("pg-url")
	level, _ := cmd.Flags().GetString("log-level")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	log := logging.New(logging.Options{Level: level, Format: "text", Output: os.Stderr})
	return fn(ctx, &cliEnv{log: log, pool: pool})
}

// newClock builds the clock the API server would use for the same TIMEZONE,
// so superuser expiry dates line up with its notion of today.
func newClock(tz string, now func() time.Time) (*clock.Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", tz, err)
	}
	return clock.NewWithFunc(now, loc), nil
}
