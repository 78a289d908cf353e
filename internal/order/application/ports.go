package application

import (
	"context"

	catalog "github.com/dmehra2102/plasto-orders/internal/catalog/domain"
	"github.com/dmehra2102/plasto-orders/internal/order/domain"
	"github.com/dmehra2102/plasto-orders/pkg/outbox"
)

type OrderRepository interface {
	ListTelegram(ctx context.Context) ([]domain.Order, error)
	ListManual(ctx context.Context) ([]domain.Order, error)
	Items(ctx context.Context, ref domain.Ref) ([]domain.Item, error)
	// Find probes telegram storage, then manual storage. Items are not loaded.
	Find(ctx context.Context, id int64) (domain.Order, error)

	// The write methods record msg in the outbox within the same transaction.
	Update(ctx context.Context, ref domain.Ref, u domain.Update, msg outbox.Message) error
	CreateManual(ctx context.Context, o domain.Order, msg outbox.Message) (int64, error)
	Delete(ctx context.Context, ref domain.Ref, msg outbox.Message) error
}

type ProductCatalog interface {
	FindByName(ctx context.Context, name string) (catalog.Product, error)
}

type AccessControl interface {
	CanMutate(ctx context.Context, actor, resource string, owner *string) (bool, error)
}
