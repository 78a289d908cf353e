package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/plasto-orders/internal/auth/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
	"github.com/dmehra2102/plasto-orders/pkg/clock"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
	"github.com/dmehra2102/plasto-orders/pkg/metrics"
)

var errBadCredentials = fmt.Errorf("%w: incorrect username or password", apperr.ErrUnauthenticated)

type Service struct {
	audit  *slog.Logger
	repo   ManagerRepository
	tokens TokenIssuer
	clock  *clock.Clock
}

func NewService(log *slog.Logger, repo ManagerRepository, tokens TokenIssuer, clk *clock.Clock) *Service {
	return &Service{audit: logging.Audit(log), repo: repo, tokens: tokens, clock: clk}
}

// current is the only path by which manager records are read, so an expired
// superuser is never observed as one.
func (s *Service) current(ctx context.Context, username string) (domain.Manager, error) {
	m, downgraded, err := s.repo.Resolve(ctx, username, s.clock.Today())
	if err != nil {
		return domain.Manager{}, err
	}
	if downgraded {
		metrics.PrivilegeDowngrades.Inc()
		s.audit.Info("superuser status expired", "actor", "system", "target", username, "action", "privilege.downgrade")
	}
	return m, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	token, err := s.login(ctx, username, password)
	outcome := "ok"
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}
	metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	s.audit.Info("login", "actor", username, "target", username, "action", "auth.login", "outcome", outcome)
	return token, err
}

func (s *Service) login(ctx context.Context, username, password string) (string, error) {
	m, err := s.current(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", errBadCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) != nil {
		return "", errBadCredentials
	}
	return s.tokens.Issue(domain.Principal{Username: m.Username, Status: m.Status}, s.clock.Now())
}

// Authenticate validates a bearer token and resolves the caller against the
// store. The status in the token is informational only.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing bearer token", apperr.ErrUnauthenticated)
	}
	claims, err := s.tokens.Parse(token, s.clock.Now())
	if err != nil {
		return domain.Principal{}, err
	}
	m, err := s.current(ctx, claims.Username)
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.Principal{}, fmt.Errorf("%w: could not validate credentials", apperr.ErrUnauthenticated)
	}
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{Username: m.Username, Status: m.Status}, nil
}

// CanMutate decides whether actor may change an order owned by owner. A nil
// owner only admits superusers. resource names the order in the audit line.
func (s *Service) CanMutate(ctx context.Context, actor, resource string, owner *string) (bool, error) {
	m, err := s.actor(ctx, actor)
	if err != nil {
		return false, err
	}
	isOwner := owner != nil && *owner == m.Username
	superuser := m.IsSuperuser(s.clock.Today())
	allowed := isOwner || superuser

	s.audit.Info("access decision", "actor", actor, "target", resource, "action", "order.mutate",
		"allowed", allowed, "owner", isOwner, "superuser", superuser)
	return allowed, nil
}

func (s *Service) CanGrantSuperuser(ctx context.Context, grantor string) (bool, error) {
	m, err := s.actor(ctx, grantor)
	if err != nil {
		return false, err
	}
	allowed := m.IsSuperuser(s.clock.Today())
	s.audit.Info("access decision", "actor", grantor, "action", "privilege.grant", "allowed", allowed)
	return allowed, nil
}

// SetSuperuser grants superuser status through today+days, or revokes it
// when days is nil. A missing target is reported before a bad day count.
// Callers check CanGrantSuperuser first.
func (s *Service) SetSuperuser(ctx context.Context, actor, target string, days *int) (domain.Manager, error) {
	if _, err := s.current(ctx, target); err != nil {
		s.audit.Info("privilege change failed", "actor", actor, "target", target, "action", "privilege.grant", "err", err)
		return domain.Manager{}, err
	}

	var expiry *time.Time
	if days != nil {
		if *days < 0 {
			s.audit.Info("privilege change rejected", "actor", actor, "target", target, "action", "privilege.grant", "days", *days)
			return domain.Manager{}, fmt.Errorf("%w: days must be greater than or equal to 0", apperr.ErrInvalidArgument)
		}
		e := s.clock.Today().AddDate(0, 0, *days)
		expiry = &e
	}

	m, err := s.repo.SetSuperuser(ctx, target, expiry)
	if err != nil {
		s.audit.Info("privilege change failed", "actor", actor, "target", target, "action", "privilege.grant", "err", err)
		return domain.Manager{}, err
	}
	if expiry == nil {
		s.audit.Info("superuser status revoked", "actor", actor, "target", target, "action", "privilege.revoke")
	} else {
		s.audit.Info("superuser status granted", "actor", actor, "target", target, "action", "privilege.grant",
			"expiry", expiry.Format(time.DateOnly))
	}
	return m, nil
}

// GrantSuperuser is the permission-checked form of SetSuperuser.
func (s *Service) GrantSuperuser(ctx context.Context, actor, target string, days *int) (domain.Manager, error) {
	ok, err := s.CanGrantSuperuser(ctx, actor)
	if err != nil {
		return domain.Manager{}, err
	}
	if !ok {
		return domain.Manager{}, fmt.Errorf("%w: only superusers can grant superuser status", apperr.ErrForbidden)
	}
	return s.SetSuperuser(ctx, actor, target, days)
}

// actor resolves an already authenticated caller. A caller deleted since
// authenticating is treated as unauthenticated.
func (s *Service) actor(ctx context.Context, username string) (domain.Manager, error) {
	m, err := s.current(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.Manager{}, fmt.Errorf("%w: manager %s no longer exists", apperr.ErrUnauthenticated, username)
	}
	return m, err
}
