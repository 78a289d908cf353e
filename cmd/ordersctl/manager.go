package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/plasto-orders/internal/auth/domain"
	authpg "github.com/dmehra2102/plasto-orders/internal/auth/infrastructure/postgres"
)

var managerCmd = &cobra.Command{
	Use:   "manager",
	Short: "Manage manager accounts",
}

var managerCreateCmd = &cobra.Command{
	Use:   "create USERNAME",
	Short: "Create a manager account",
	Long: `Create a manager account with a bcrypt-hashed password.

By default the manager is regular. --superuser-days N grants superuser status
through today+N; --permanent-superuser grants it with no expiry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		days, _ := cmd.Flags().GetInt("superuser-days")
		permanent, _ := cmd.Flags().GetBool("permanent-superuser")

		tz, _ := cmd.Flags().GetString("timezone")
		clk, err := newClock(tz, time.Now)
		if err != nil {
			return err
		}

		m, err := newManager(args[0], password, cmd.Flags().Changed("superuser-days"), days, permanent, clk.Today())
		if err != nil {
			return err
		}
		return withPool(cmd, func(ctx context.Context, env *cliEnv) error {
			if err := authpg.NewRepository(env.log, env.pool).Create(ctx, m); err != nil {
				return err
			}
			fmt.Printf("✓ Manager %s created (%s)\n", m.Username, m.Status)
			return nil
		})
	},
}

func init() {
	managerCreateCmd.Flags().String("password", "", "Initial password (required)")
	managerCreateCmd.Flags().Int("superuser-days", 0, "Grant superuser status for this many days after today")
	managerCreateCmd.Flags().Bool("permanent-superuser", false, "Grant superuser status with no expiry")
	_ = managerCreateCmd.MarkFlagRequired("password")
	managerCreateCmd.MarkFlagsMutuallyExclusive("superuser-days", "permanent-superuser")

	managerCmd.AddCommand(managerCreateCmd)
}

func newManager(username, password string, grant bool, days int, permanent bool, today time.Time) (domain.Manager, error) {
	if username == "" || password == "" {
		return domain.Manager{}, errors.New("username and password must not be empty")
	}
	if grant && days < 0 {
		return domain.Manager{}, errors.New("--superuser-days must not be negative")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Manager{}, fmt.Errorf("hash password: %w", err)
	}

	m := domain.Manager{Username: username, PasswordHash: string(hash), Status: domain.StatusRegular}
	switch {
	case permanent:
		m.Status = domain.StatusSuperuser
	case grant:
		expiry := today.AddDate(0, 0, days)
		m.Grant(&expiry)
	}
	return m, nil
}
