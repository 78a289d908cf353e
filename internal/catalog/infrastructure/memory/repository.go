package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/dmehra2102/plasto-orders/internal/catalog/domain"
)

type Repository struct {
	mu       sync.RWMutex
	products []domain.Product
}

// NewRepository seeds products with ids 1..n in the given order.
func NewRepository(names ...string) *Repository {
	r := &Repository{}
	for i, n := range names {
		r.products = append(r.products, domain.Product{ID: int64(i + 1), Name: n})
	}
	return r
}

func (r *Repository) List(context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Product{}, r.products...), nil
}

func (r *Repository) Search(_ context.Context, query string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := strings.ToLower(query)
	var out []domain.Product
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repository) FindByName(_ context.Context, name string) (domain.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if strings.EqualFold(p.Name, name) {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}
