package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderTotals is derived from a cart and never persisted.
type OrderTotals struct {
	ItemTotal  decimal.Decimal
	TaxRate    decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	OrderTotal decimal.Decimal
}

// FormattedTotals is OrderTotals rendered to two decimal places for transport.
type FormattedTotals struct {
	ItemTotal  string `json:"itemTotal"`
	Tax        string `json:"tax"`
	Shipping   string `json:"shipping"`
	OrderTotal string `json:"orderTotal"`
}

func (t OrderTotals) Formatted() FormattedTotals {
	return FormattedTotals{
		ItemTotal:  t.ItemTotal.StringFixed(2),
		Tax:        t.Tax.StringFixed(2),
		Shipping:   t.Shipping.StringFixed(2),
		OrderTotal: t.OrderTotal.StringFixed(2),
	}
}

// PackagedItem is the transport form of a line item.
type PackagedItem struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

// Order is the checkout payload. Customer fields are flattened into the
// top-level JSON object alongside the derived fields.
type Order struct {
	Customer   map[string]string
	OrderDate  time.Time
	Items      []PackagedItem
	OrderTotal string
	Shipping   string
	Tax        string
}

func (o Order) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(o.Customer)+5)
	for k, v := range o.Customer {
		out[k] = v
	}
	items := o.Items
	if items == nil {
		items = []PackagedItem{}
	}
	out["orderDate"] = o.OrderDate.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	out["items"] = items
	out["orderTotal"] = o.OrderTotal
	out["shipping"] = o.Shipping
	out["tax"] = o.Tax
	return json.Marshal(out)
}

// Confirmation is the checkout service's success response.
type Confirmation struct {
	OrderID string          `json:"orderId,omitempty"`
	Message string          `json:"message,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}
