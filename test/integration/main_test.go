//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

var env *Env

func TestMain(m *testing.M) {
	ctx := context.Background()
	var err error
	env, err = Setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration setup: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	env.Teardown(ctx)
	os.Exit(code)
}

func reset(t *testing.T) {
	t.Helper()
	_, err := env.Pool.Exec(context.Background(), `
		TRUNCATE auth.managers, telegram.order_items, telegram.orders,
		         app.order_items, app.manual_orders, app.products, outbox
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}
