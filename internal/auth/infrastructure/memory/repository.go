package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmehra2102/plasto-orders/internal/auth/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
)

// Repository is a map-backed ManagerRepository with the same downgrade
// semantics as the postgres one. Tests across packages share it.
type Repository struct {
	mu       sync.Mutex
	managers map[string]domain.Manager
}

func NewRepository(managers ...domain.Manager) *Repository {
	r := &Repository{managers: make(map[string]domain.Manager, len(managers))}
	for _, m := range managers {
		r.managers[m.Username] = m
	}
	return r
}

func (r *Repository) Resolve(_ context.Context, username string, today time.Time) (domain.Manager, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.managers[username]
	if !ok {
		return domain.Manager{}, false, fmt.Errorf("%w: manager %s", apperr.ErrNotFound, username)
	}
	downgraded := m.Downgrade(today)
	r.managers[username] = m
	return m, downgraded, nil
}

func (r *Repository) SetSuperuser(_ context.Context, username string, expiry *time.Time) (domain.Manager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.managers[username]
	if !ok {
		return domain.Manager{}, fmt.Errorf("%w: manager %s", apperr.ErrNotFound, username)
	}
	m.Grant(expiry)
	r.managers[username] = m
	return m, nil
}

// Get returns the stored record without applying any downgrade.
func (r *Repository) Get(username string) (domain.Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.managers[username]
	return m, ok
}
