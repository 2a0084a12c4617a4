package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

var (
	// TaxRate is applied to the item total.
	TaxRate = decimal.RequireFromString("0.06")

	baseShipping    = decimal.NewFromInt(10)
	perItemShipping = decimal.NewFromInt(2)
)

// Submitter sends an order to the remote checkout service.
type Submitter interface {
	Submit(ctx context.Context, order domain.Order) (*domain.Confirmation, error)
}

// Calculator derives totals and orders from carts. It reads cart data only and
// never writes the cart store.
type Calculator struct {
	submitter Submitter
	now       func() time.Time
}

func NewCalculator(submitter Submitter) *Calculator {
	return &Calculator{submitter: submitter, now: time.Now}
}

// ComputeTotals recomputes every figure from scratch. Shipping is 10 for the
// first distinct line plus 2 for each additional line; quantity does not matter.
func ComputeTotals(c domain.Cart) domain.OrderTotals {
	itemTotal := decimal.Zero
	for _, item := range c {
		itemTotal = itemTotal.Add(item.LineTotal())
	}
	tax := itemTotal.Mul(TaxRate)
	shipping := decimal.Zero
	if n := len(c); n > 0 {
		shipping = baseShipping.Add(perItemShipping.Mul(decimal.NewFromInt(int64(n - 1))))
	}
	return domain.OrderTotals{
		ItemTotal:  itemTotal,
		TaxRate:    TaxRate,
		Tax:        tax,
		Shipping:   shipping,
		OrderTotal: itemTotal.Add(tax).Add(shipping),
	}
}

// PackageItems strips each line down to the fields sent to the checkout service.
func PackageItems(c domain.Cart) []domain.PackagedItem {
	out := make([]domain.PackagedItem, 0, len(c))
	for _, item := range c {
		out = append(out, domain.PackagedItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    json.Number(item.UnitPrice.String()),
			Quantity: item.Quantity,
		})
	}
	return out
}

// BuildOrder checks the cart is non-empty, validates the customer fields, and
// assembles the payload. All field violations are reported together.
func (c *Calculator) BuildOrder(cart domain.Cart, fields map[string]string) (domain.Order, error) {
	if len(cart) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	customer, err := ValidateCustomer(fields)
	if err != nil {
		return domain.Order{}, err
	}
	totals := ComputeTotals(cart).Formatted()
	return domain.Order{
		Customer:   customer,
		OrderDate:  c.now().UTC(),
		Items:      PackageItems(cart),
		OrderTotal: totals.OrderTotal,
		Shipping:   totals.Shipping,
		Tax:        totals.Tax,
	}, nil
}

// SubmitOrder hands the order to the Submitter. Every failure comes back as a
// *domain.SubmissionError.
func (c *Calculator) SubmitOrder(ctx context.Context, order domain.Order) (*domain.Confirmation, error) {
	if c.submitter == nil {
		return nil, &domain.SubmissionError{Err: errors.New("no checkout submitter configured")}
	}
	conf, err := c.submitter.Submit(ctx, order)
	if err != nil {
		var subErr *domain.SubmissionError
		if errors.As(err, &subErr) {
			return nil, subErr
		}
		return nil, &domain.SubmissionError{Err: err}
	}
	return conf, nil
}
