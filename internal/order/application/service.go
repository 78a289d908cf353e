package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmehra2102/plasto-orders/internal/order/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
	"github.com/dmehra2102/plasto-orders/pkg/clock"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
	"github.com/dmehra2102/plasto-orders/pkg/metrics"
	"github.com/dmehra2102/plasto-orders/pkg/outbox"
	"github.com/dmehra2102/plasto-orders/pkg/tracing"
)

type Service struct {
	audit   *slog.Logger
	repo    OrderRepository
	catalog ProductCatalog
	access  AccessControl
	clock   *clock.Clock
}

func NewService(log *slog.Logger, repo OrderRepository, catalog ProductCatalog, access AccessControl, clk *clock.Clock) *Service {
	return &Service{
		audit:   logging.Audit(log),
		repo:    repo,
		catalog: catalog,
		access:  access,
		clock:   clk,
	}
}

// UpdateRequest carries optional changes. Content replaces the items only
// when it has at least one entry; nil or empty leaves them alone.
type UpdateRequest struct {
	Status  *string
	Content []domain.Item
}

type CreateRequest struct {
	Organization  string
	InvoiceNumber string
	Manager       string
	Content       []domain.Item
}

// List returns every bot-sourced order followed by every manual order, each
// group in ascending id order.
func (s *Service) List(ctx context.Context) ([]domain.View, error) {
	telegram, err := s.repo.ListTelegram(ctx)
	if err != nil {
		return nil, err
	}
	manual, err := s.repo.ListManual(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.View, 0, len(telegram)+len(manual))
	for _, o := range append(telegram, manual...) {
		if o.Items, err = s.repo.Items(ctx, o.Ref); err != nil {
			return nil, err
		}
		views = append(views, o.View())
	}
	return views, nil
}

func (s *Service) Update(ctx context.Context, actor string, id int64, req UpdateRequest) (v domain.View, err error) {
	o, err := s.repo.Find(ctx, id)
	if err != nil {
		s.record("update", actor, strconv.FormatInt(id, 10), "", err)
		return domain.View{}, err
	}
	defer func() { s.record("update", actor, o.Ref.String(), o.Source, err) }()

	if err := s.authorize(ctx, actor, o); err != nil {
		return domain.View{}, err
	}

	var u domain.Update
	oldStatus := o.Status
	if req.Status != nil {
		st, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return domain.View{}, fmt.Errorf("%w: invalid order status %q", apperr.ErrInvalidArgument, *req.Status)
		}
		o.SetStatus(st, s.clock.Today())
		u.Status = &st
		u.ClosedAt = o.ClosedAt
	}
	if len(req.Content) > 0 {
		if err := s.validateItems(ctx, req.Content); err != nil {
			return domain.View{}, err
		}
		u.ReplaceItems = true
		u.Items = req.Content
	}

	if !u.Empty() {
		msg, err := s.message(ctx, o.Ref, domain.EventOrderUpdated, updatedEvent(o, actor, oldStatus, u))
		if err != nil {
			return domain.View{}, err
		}
		if err := s.repo.Update(ctx, o.Ref, u, msg); err != nil {
			return domain.View{}, err
		}
		if u.Status != nil {
			s.audit.Info("order status changed", "actor", actor, "target", o.Ref.String(), "action", "order.status",
				"from", oldStatus, "to", *u.Status)
		}
		if u.ReplaceItems {
			s.audit.Info("order content replaced", "actor", actor, "target", o.Ref.String(), "action", "order.content",
				"items", len(u.Items))
		}
	}
	return s.view(ctx, o.ID)
}

// Create always stores a manual order. Any authenticated manager may create
// one under any manager name.
func (s *Service) Create(ctx context.Context, actor string, req CreateRequest) (v domain.View, err error) {
	target := "manual:new"
	defer func() { s.record("create", actor, target, domain.SourceManual, err) }()

	if err := validateHeader(req); err != nil {
		return domain.View{}, err
	}
	if err := s.validateItems(ctx, req.Content); err != nil {
		return domain.View{}, err
	}

	o := domain.NewManual(req.Organization, req.InvoiceNumber, req.Manager, req.Content, s.clock.Today())
	msg, err := s.message(ctx, o.Ref, domain.EventOrderCreated, domain.OrderCreated{
		Actor:         actor,
		Organization:  o.Organization,
		InvoiceNumber: o.InvoiceNumber,
		Manager:       req.Manager,
		Status:        o.Status,
		Items:         o.Items,
	})
	if err != nil {
		return domain.View{}, err
	}
	id, err := s.repo.CreateManual(ctx, o, msg)
	if err != nil {
		return domain.View{}, err
	}
	target = domain.Ref{Source: domain.SourceManual, ID: id}.String()
	return s.view(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor string, id int64) (err error) {
	o, err := s.repo.Find(ctx, id)
	if err != nil {
		s.record("delete", actor, strconv.FormatInt(id, 10), "", err)
		return err
	}
	defer func() { s.record("delete", actor, o.Ref.String(), o.Source, err) }()

	if err := s.authorize(ctx, actor, o); err != nil {
		return err
	}
	msg, err := s.message(ctx, o.Ref, domain.EventOrderDeleted, domain.OrderDeleted{OrderID: o.ID, Source: o.Source, Actor: actor})
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, o.Ref, msg)
}

func (s *Service) authorize(ctx context.Context, actor string, o domain.Order) error {
	ok, err := s.access.CanMutate(ctx, actor, o.Ref.String(), o.Manager)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no rights to modify order %d", apperr.ErrForbidden, o.ID)
	}
	return nil
}

// validateItems checks every item before anything is written. The stored
// product name is the caller's spelling, not the catalog's.
func (s *Service) validateItems(ctx context.Context, items []domain.Item) error {
	for _, it := range items {
		if _, err := s.catalog.FindByName(ctx, it.ProductName); err != nil {
			return err
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: quantity of %q must be positive", apperr.ErrInvalidArgument, it.ProductName)
		}
	}
	return nil
}

func validateHeader(req CreateRequest) error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"organization", req.Organization, 255},
		{"invoice_number", req.InvoiceNumber, 20},
		{"manager", req.Manager, 70},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", apperr.ErrInvalidArgument, f.name)
		}
		if utf8.RuneCountInString(f.value) > f.max {
			return fmt.Errorf("%w: %s exceeds %d characters", apperr.ErrInvalidArgument, f.name, f.max)
		}
	}
	return nil
}

func (s *Service) view(ctx context.Context, id int64) (domain.View, error) {
	o, err := s.repo.Find(ctx, id)
	if err != nil {
		return domain.View{}, err
	}
	if o.Items, err = s.repo.Items(ctx, o.Ref); err != nil {
		return domain.View{}, err
	}
	return o.View(), nil
}

func (s *Service) message(ctx context.Context, ref domain.Ref, eventType string, payload any) (outbox.Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return outbox.Message{}, err
	}
	msg := outbox.Message{
		AggregateType: ref.AggregateType(),
		Type:          eventType,
		Payload:       raw,
		Headers:       map[string]string{"event_id": uuid.NewString(), "source": "orders-api"},
		Traceparent:   tracing.Traceparent(ctx),
	}
	if ref.ID != 0 {
		msg.AggregateID = strconv.FormatInt(ref.ID, 10)
	}
	return msg, nil
}

func (s *Service) record(op, actor, target string, source domain.Source, err error) {
	outcome := metrics.Outcome(err)
	metrics.OrderMutations.WithLabelValues(op, string(source), outcome).Inc()
	s.audit.Info("order mutation", "actor", actor, "target", target, "action", "order."+op, "outcome", outcome, "err", err)
}

func updatedEvent(o domain.Order, actor string, oldStatus domain.Status, u domain.Update) domain.OrderUpdated {
	ev := domain.OrderUpdated{
		OrderID:       o.ID,
		Source:        o.Source,
		Actor:         actor,
		OldStatus:     oldStatus,
		Status:        o.Status,
		ItemsReplaced: u.ReplaceItems,
		Items:         u.Items,
	}
	if o.ClosedAt != nil {
		c := o.ClosedAt.Format(time.DateOnly)
		ev.ClosedAt = &c
	}
	if o.Telegram != nil {
		amount := o.Telegram.PaymentAmount
		ev.PaymentNumber = o.Telegram.PaymentNumber
		ev.PaymentAmount = &amount
		ev.HighlightColor = o.Telegram.HighlightColor
	}
	return ev
}
