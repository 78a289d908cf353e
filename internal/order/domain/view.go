package domain

import "time"

// View is the unified wire projection of either order shape.
type View struct {
	ID            int64   `json:"id"`
	CreatedAt     string  `json:"created_at"`
	Organization  string  `json:"organization"`
	InvoiceNumber string  `json:"invoice_number"`
	Manager       *string `json:"manager"`
	Status        Status  `json:"status"`
	ClosedAt      *string `json:"closed_at"`
	Source        Source  `json:"source"`
	Content       []Item  `json:"content"`
}

// View projects the order. Empty content renders as [] for telegram orders
// and null for manual ones; clients depend on the difference.
func (o Order) View() View {
	v := View{
		ID:            o.ID,
		CreatedAt:     o.CreatedAt,
		Organization:  o.Organization,
		InvoiceNumber: o.InvoiceNumber,
		Manager:       o.Manager,
		Status:        o.Status,
		Source:        o.Source,
	}
	if o.Label != "" {
		v.Source = o.Label
	}
	if o.ClosedAt != nil {
		s := o.ClosedAt.Format(time.DateOnly)
		v.ClosedAt = &s
	}

	switch {
	case len(o.Items) > 0:
		v.Content = append([]Item(nil), o.Items...)
	case o.Source == SourceTelegram:
		v.Content = []Item{}
	}
	return v
}
