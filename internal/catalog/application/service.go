package application

import (
	"context"
	"fmt"

	"github.com/dmehra2102/plasto-orders/internal/catalog/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
)

type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// Search reports NotFound rather than an empty list when nothing matches,
// including for an empty query. Existing clients rely on the 404.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: no products found", apperr.ErrNotFound)
	}
	products, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products found", apperr.ErrNotFound)
	}
	return products, nil
}

func (s *Service) FindByName(ctx context.Context, name string) (domain.Product, error) {
	p, ok, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: product %q not found", apperr.ErrNotFound, name)
	}
	return p, nil
}
