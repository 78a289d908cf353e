package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/plasto-orders/internal/order/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
	"github.com/dmehra2102/plasto-orders/pkg/outbox"
)

// table names the order and item tables of one source.
type table struct {
	orders string
	items  string
	status string
}

var tables = map[domain.Source]table{
	domain.SourceTelegram: {orders: "telegram.orders", items: "telegram.order_items", status: "order_status"},
	domain.SourceManual:   {orders: "app.manual_orders", items: "app.order_items", status: "status"},
}

const (
	selectTelegram = `
		SELECT id, payment_date, contractor_name, account_number, manager_name, order_status::text, closed_at,
		       payment_number, payment_amount::text, highlight_color
		FROM telegram.orders`
	selectManual = `
		SELECT id, created_at::text, organization, invoice_number, manager, status::text, closed_at, source
		FROM app.manual_orders`
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) ListTelegram(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectTelegram+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTelegram)
}

func (r *Repository) ListManual(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectManual+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanManual)
}

func (r *Repository) Items(ctx context.Context, ref domain.Ref) ([]domain.Item, error) {
	t, err := tableFor(ref.Source)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT product_name, quantity FROM `+t.items+` WHERE order_id = $1 ORDER BY id`, ref.ID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Item, error) {
		var it domain.Item
		err := row.Scan(&it.ProductName, &it.Quantity)
		return it, err
	})
}

func (r *Repository) Find(ctx context.Context, id int64) (domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectTelegram+` WHERE id = $1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanTelegram)
	if err == nil || !errors.Is(err, pgx.ErrNoRows) {
		return o, err
	}

	rows, err = r.pool.Query(ctx, selectManual+` WHERE id = $1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	o, err = pgx.CollectExactlyOneRow(rows, scanManual)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: order %d not found", apperr.ErrNotFound, id)
	}
	return o, err
}

func (r *Repository) Update(ctx context.Context, ref domain.Ref, u domain.Update, msg outbox.Message) error {
	t, err := tableFor(ref.Source)
	if err != nil {
		return err
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if u.Status != nil {
		ct, err := tx.Exec(ctx, `UPDATE `+t.orders+` SET `+t.status+` = $2::text::orderstatus, closed_at = COALESCE(closed_at, $3) WHERE id = $1`,
			ref.ID, string(*u.Status), u.ClosedAt)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: order %d not found", apperr.ErrNotFound, ref.ID)
		}
	}
	if u.ReplaceItems {
		if _, err := tx.Exec(ctx, `DELETE FROM `+t.items+` WHERE order_id = $1`, ref.ID); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, t, ref.ID, u.Items); err != nil {
			return err
		}
	}
	if err := insertOutbox(ctx, tx, msg); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) CreateManual(ctx context.Context, o domain.Order, msg outbox.Message) (int64, error) {
	t := tables[domain.SourceManual]
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO app.manual_orders (created_at, organization, invoice_number, manager, status, source)
		VALUES ($1::text::date, $2, $3, $4, $5::text::orderstatus, $6)
		RETURNING id`,
		o.CreatedAt, o.Organization, o.InvoiceNumber, o.Manager, string(o.Status), string(label(o))).Scan(&id)
	if err != nil {
		return 0, err
	}
	if err := insertItems(ctx, tx, t, id, o.Items); err != nil {
		return 0, err
	}
	msg.AggregateID = strconv.FormatInt(id, 10)
	if err := insertOutbox(ctx, tx, msg); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	r.log.Info("manual order stored", "order_id", id, "items", len(o.Items))
	return id, nil
}

func (r *Repository) Delete(ctx context.Context, ref domain.Ref, msg outbox.Message) error {
	t, err := tableFor(ref.Source)
	if err != nil {
		return err
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM `+t.items+` WHERE order_id = $1`, ref.ID); err != nil {
		return err
	}
	ct, err := tx.Exec(ctx, `DELETE FROM `+t.orders+` WHERE id = $1`, ref.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %d not found", apperr.ErrNotFound, ref.ID)
	}
	if err := insertOutbox(ctx, tx, msg); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertItems(ctx context.Context, tx pgx.Tx, t table, orderID int64, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`INSERT INTO `+t.items+` (order_id, product_name, quantity) VALUES ($1, $2, $3)`,
			orderID, it.ProductName, it.Quantity)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, msg outbox.Message) error {
	headers := msg.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.AggregateType, msg.AggregateID, msg.Type, msg.Payload, headers, msg.Traceparent, string(outbox.StatusPending))
	return err
}

func tableFor(s domain.Source) (table, error) {
	t, ok := tables[s]
	if !ok {
		return table{}, fmt.Errorf("unknown order source %q", s)
	}
	return t, nil
}

func scanTelegram(row pgx.CollectableRow) (domain.Order, error) {
	o := domain.Order{Ref: domain.Ref{Source: domain.SourceTelegram}, Telegram: &domain.TelegramDetails{}}
	var (
		status   string
		closedAt *time.Time
		amount   string
	)
	err := row.Scan(&o.ID, &o.CreatedAt, &o.Organization, &o.InvoiceNumber, &o.Manager, &status, &closedAt,
		&o.Telegram.PaymentNumber, &amount, &o.Telegram.HighlightColor)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Telegram.PaymentAmount, err = decimal.NewFromString(amount); err != nil {
		return domain.Order{}, fmt.Errorf("order %d payment amount: %w", o.ID, err)
	}
	o.Status = domain.Status(status)
	o.ClosedAt = closedAt
	return o, nil
}

func scanManual(row pgx.CollectableRow) (domain.Order, error) {
	o := domain.Order{Ref: domain.Ref{Source: domain.SourceManual}}
	var (
		status   string
		closedAt *time.Time
		source   string
	)
	if err := row.Scan(&o.ID, &o.CreatedAt, &o.Organization, &o.InvoiceNumber, &o.Manager, &status, &closedAt, &source); err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.Status(status)
	o.ClosedAt = closedAt
	o.Label = domain.Source(source)
	return o, nil
}

func label(o domain.Order) domain.Source {
	if o.Label == "" {
		return domain.SourceManual
	}
	return o.Label
}
