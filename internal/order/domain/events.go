package domain

import "github.com/shopspring/decimal"

const (
	EventOrderCreated = "OrderCreated"
	EventOrderUpdated = "OrderUpdated"
	EventOrderDeleted = "OrderDeleted"
)

type OrderCreated struct {
	Actor         string `json:"actor"`
	Organization  string `json:"organization"`
	InvoiceNumber string `json:"invoice_number"`
	Manager       string `json:"manager"`
	Status        Status `json:"status"`
	Items         []Item `json:"items"`
}

type OrderUpdated struct {
	OrderID        int64            `json:"order_id"`
	Source         Source           `json:"source"`
	Actor          string           `json:"actor"`
	OldStatus      Status           `json:"old_status"`
	Status         Status           `json:"status"`
	ClosedAt       *string          `json:"closed_at"`
	ItemsReplaced  bool             `json:"items_replaced"`
	Items          []Item           `json:"items,omitempty"`
	PaymentNumber  string           `json:"payment_number,omitempty"`
	PaymentAmount  *decimal.Decimal `json:"payment_amount,omitempty"`
	HighlightColor string           `json:"highlight_color,omitempty"`
}

type OrderDeleted struct {
	OrderID int64  `json:"order_id"`
	Source  Source `json:"source"`
	Actor   string `json:"actor"`
}
