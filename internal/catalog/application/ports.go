package application

import (
	"context"

	"github.com/dmehra2102/plasto-orders/internal/catalog/domain"
)

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	// Search matches query as a case-insensitive substring of the name.
	Search(ctx context.Context, query string) ([]domain.Product, error)
	// FindByName matches the whole name case-insensitively.
	FindByName(ctx context.Context, name string) (domain.Product, bool, error)
}
