package application

import (
	"context"
	"time"

	"github.com/dmehra2102/plasto-orders/internal/auth/domain"
)

type ManagerRepository interface {
	// Resolve loads the manager and, in the same transaction, persists the
	// downgrade of a superuser grant that ended before today. The bool
	// reports whether a downgrade was written.
	Resolve(ctx context.Context, username string, today time.Time) (domain.Manager, bool, error)
	SetSuperuser(ctx context.Context, username string, expiry *time.Time) (domain.Manager, error)
}

type TokenIssuer interface {
	Issue(p domain.Principal, now time.Time) (string, error)
	Parse(token string, now time.Time) (domain.Principal, error)
}
