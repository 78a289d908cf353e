package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/plasto-orders/internal/auth/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const selectManagerForUpdate = `
	SELECT username, password_hash, status, superuser_expiry
	FROM auth.managers
	WHERE username = $1
	FOR UPDATE`

func scanManager(row pgx.Row, username string) (domain.Manager, error) {
	var m domain.Manager
	err := row.Scan(&m.Username, &m.PasswordHash, &m.Status, &m.SuperuserExpiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Manager{}, fmt.Errorf("%w: manager %s", apperr.ErrNotFound, username)
	}
	return m, err
}

// Resolve takes the row lock before deciding on a downgrade so it cannot
// interleave with a concurrent SetSuperuser on the same manager.
func (r *Repository) Resolve(ctx context.Context, username string, today time.Time) (domain.Manager, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Manager{}, false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	m, err := scanManager(tx.QueryRow(ctx, selectManagerForUpdate, username), username)
	if err != nil {
		return domain.Manager{}, false, err
	}

	downgraded := m.Downgrade(today)
	if downgraded {
		if _, err := tx.Exec(ctx, `UPDATE auth.managers SET status = $2, superuser_expiry = NULL WHERE username = $1`,
			username, m.Status); err != nil {
			return domain.Manager{}, false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Manager{}, false, err
	}
	return m, downgraded, nil
}

func (r *Repository) SetSuperuser(ctx context.Context, username string, expiry *time.Time) (domain.Manager, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Manager{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	m, err := scanManager(tx.QueryRow(ctx, selectManagerForUpdate, username), username)
	if err != nil {
		return domain.Manager{}, err
	}
	m.Grant(expiry)

	if _, err := tx.Exec(ctx, `UPDATE auth.managers SET status = $2, superuser_expiry = $3 WHERE username = $1`,
		username, m.Status, m.SuperuserExpiry); err != nil {
		return domain.Manager{}, err
	}
	return m, tx.Commit(ctx)
}

// Create inserts a manager. There is no API for this; ordersctl calls it.
func (r *Repository) Create(ctx context.Context, m domain.Manager) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth.managers (username, password_hash, status, superuser_expiry)
		VALUES ($1, $2, $3, $4)`,
		m.Username, m.PasswordHash, m.Status, m.SuperuserExpiry)
	if err != nil {
		return fmt.Errorf("create manager %s: %w", m.Username, err)
	}
	r.log.Info("manager created", "username", m.Username, "status", m.Status)
	return nil
}
