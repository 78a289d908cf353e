package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/dmehra2102/plasto-orders/internal/order/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
	"github.com/dmehra2102/plasto-orders/pkg/outbox"
)

const firstManualID = 1_000_000

// Repository keeps both order shapes in maps and records every outbox
// message it is handed.
type Repository struct {
	mu       sync.Mutex
	orders   map[domain.Ref]domain.Order
	nextID   int64
	messages []outbox.Message
}

// NewRepository seeds orders as stored rows, items included.
func NewRepository(seed ...domain.Order) *Repository {
	r := &Repository{orders: make(map[domain.Ref]domain.Order), nextID: firstManualID}
	for _, o := range seed {
		r.orders[o.Ref] = clone(o)
		if o.Source == domain.SourceManual && o.ID >= r.nextID {
			r.nextID = o.ID + 1
		}
	}
	return r
}

func (r *Repository) ListTelegram(context.Context) ([]domain.Order, error) {
	return r.list(domain.SourceTelegram), nil
}

func (r *Repository) ListManual(context.Context) ([]domain.Order, error) {
	return r.list(domain.SourceManual), nil
}

func (r *Repository) list(source domain.Source) []domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for ref, o := range r.orders {
		if ref.Source == source {
			o.Items = nil
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (r *Repository) Items(_ context.Context, ref domain.Ref) ([]domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.orders[ref].Items), nil
}

func (r *Repository) Find(_ context.Context, id int64) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range []domain.Source{domain.SourceTelegram, domain.SourceManual} {
		if o, ok := r.orders[domain.Ref{Source: s, ID: id}]; ok {
			o.Items = nil
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: order %d not found", apperr.ErrNotFound, id)
}

func (r *Repository) Update(_ context.Context, ref domain.Ref, u domain.Update, msg outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[ref]
	if !ok {
		return fmt.Errorf("%w: order %d not found", apperr.ErrNotFound, ref.ID)
	}
	if u.Status != nil {
		o.Status = *u.Status
		if o.ClosedAt == nil {
			o.ClosedAt = u.ClosedAt
		}
	}
	if u.ReplaceItems {
		o.Items = slices.Clone(u.Items)
	}
	r.orders[ref] = o
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Repository) CreateManual(_ context.Context, o domain.Order, msg outbox.Message) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o = clone(o)
	o.Source = domain.SourceManual
	o.ID = r.nextID
	r.nextID++
	r.orders[o.Ref] = o
	msg.AggregateID = strconv.FormatInt(o.ID, 10)
	r.messages = append(r.messages, msg)
	return o.ID, nil
}

func (r *Repository) Delete(_ context.Context, ref domain.Ref, msg outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[ref]; !ok {
		return fmt.Errorf("%w: order %d not found", apperr.ErrNotFound, ref.ID)
	}
	delete(r.orders, ref)
	r.messages = append(r.messages, msg)
	return nil
}

// Get returns the stored row with its items.
func (r *Repository) Get(ref domain.Ref) (domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[ref]
	return clone(o), ok
}

func (r *Repository) Messages() []outbox.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

func clone(o domain.Order) domain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
