package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	catalogpg "github.com/dmehra2102/plasto-orders/internal/catalog/infrastructure/postgres"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage the product catalog",
}

var productAddCmd = &cobra.Command{
	Use:   "add NAME...",
	Short: "Add products to the catalog",
	Long:  `Add one or more products. Names already in the catalog are left as they are.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd, func(ctx context.Context, env *cliEnv) error {
			repo := catalogpg.NewRepository(env.log, env.pool)
			for _, name := range args {
				p, err := repo.Add(ctx, name)
				if err != nil {
					return fmt.Errorf("add product %q: %w", name, err)
				}
				fmt.Printf("✓ %d\t%s\n", p.ID, p.Name)
			}
			return nil
		})
	},
}

func init() {
	productCmd.AddCommand(productAddCmd)
}
