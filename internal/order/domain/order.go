package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Source discriminates the two physical order shapes.
type Source string

const (
	SourceTelegram Source = "telegram"
	SourceManual   Source = "manual"
)

// Status labels are the wire contract and the values of the orderstatus
// database enum; they are kept verbatim.
type Status string

const (
	StatusPaid      Status = "Заказ оплачен"
	StatusWorking   Status = "Заказ в работе"
	StatusInTransit Status = "Заказ в пути"
	StatusClosed    Status = "Заказ закрыт"
)

var statuses = []Status{StatusPaid, StatusWorking, StatusInTransit, StatusClosed}

func Statuses() []Status { return append([]Status(nil), statuses...) }

func ParseStatus(s string) (Status, bool) {
	for _, st := range statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Ref identifies an order together with the table that stores it.
type Ref struct {
	Source Source
	ID     int64
}

func (r Ref) String() string { return string(r.Source) + ":" + strconv.FormatInt(r.ID, 10) }

// AggregateType names the outbox aggregate for this shape.
func (r Ref) AggregateType() string { return string(r.Source) + "_order" }

type Item struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// Order is the common read shape of both order tables. Bot-sourced orders
// also carry Telegram; manual ones leave it nil.
type Order struct {
	Ref
	// CreatedAt is the bot's payment date string for telegram orders and an
	// ISO date for manual ones.
	CreatedAt     string
	Organization  string
	InvoiceNumber string
	Manager       *string
	Status        Status
	ClosedAt      *time.Time
	Items         []Item
	// Label is the source value stored on the row. Only the manual table has
	// the column; when empty the view falls back to Ref.Source.
	Label Source

	Telegram *TelegramDetails
}

type TelegramDetails struct {
	PaymentNumber  string
	PaymentAmount  decimal.Decimal
	HighlightColor string
}

// SetStatus applies a transition and returns the previous status. Entering
// the closed state stamps ClosedAt with today unless it is already set.
func (o *Order) SetStatus(s Status, today time.Time) Status {
	old := o.Status
	o.Status = s
	if s == StatusClosed && o.ClosedAt == nil {
		t := today
		o.ClosedAt = &t
	}
	return old
}

// NewManual builds a manual order as create stores it.
func NewManual(organization, invoiceNumber, manager string, items []Item, today time.Time) Order {
	return Order{
		Ref:           Ref{Source: SourceManual},
		CreatedAt:     today.Format(time.DateOnly),
		Organization:  organization,
		InvoiceNumber: invoiceNumber,
		Manager:       &manager,
		Status:        StatusPaid,
		Items:         items,
		Label:         SourceManual,
	}
}

// Update is a validated change set for one order, written in one transaction.
type Update struct {
	Status *Status
	// ClosedAt is stored only if the row has no closing date yet.
	ClosedAt     *time.Time
	ReplaceItems bool
	Items        []Item
}

func (u Update) Empty() bool { return u.Status == nil && !u.ReplaceItems }
