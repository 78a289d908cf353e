package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/plasto-orders/internal/catalog/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `SELECT id, name FROM app.products ORDER BY id`)
}

// Search uses strpos rather than LIKE so '%' and '_' in the query match
// literally.
func (r *Repository) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return r.query(ctx, `SELECT id, name FROM app.products WHERE strpos(lower(name), lower($1)) > 0 ORDER BY id`, query)
}

func (r *Repository) FindByName(ctx context.Context, name string) (domain.Product, bool, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM app.products WHERE lower(name) = lower($1) ORDER BY id LIMIT 1`, name).
		Scan(&p.ID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, err
	}
	return p, true, nil
}

// Add inserts a product, ignoring duplicates. Products have no API; ordersctl
// calls this.
func (r *Repository) Add(ctx context.Context, name string) (domain.Product, error) {
	p := domain.Product{Name: name}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO app.products (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, name).Scan(&p.ID)
	if err != nil {
		return domain.Product{}, err
	}
	r.log.Info("product added", "id", p.ID, "name", name)
	return p, nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
