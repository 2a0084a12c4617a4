package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LineItem is one product entry in a cart after normalization.
type LineItem struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is UnitPrice × Quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type lineItemJSON struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

// MarshalJSON writes the persisted shape with price as a bare JSON number.
func (l LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(lineItemJSON{
		ID:       l.ID,
		Name:     l.Name,
		Price:    json.Number(l.UnitPrice.String()),
		Quantity: l.Quantity,
	})
}

// Cart is the ordered list of line items for one session.
type Cart []LineItem

// Count is the total quantity across all lines, shown on the header badge.
func (c Cart) Count() int {
	n := 0
	for _, item := range c {
		n += item.Quantity
	}
	return n
}

// Find returns the index of the line with the given id, or -1.
func (c Cart) Find(id string) int {
	for i, item := range c {
		if item.ID == id {
			return i
		}
	}
	return -1
}
