package checkout

import (
	"context"
	"io"
	"log"

	"storefront/internal/domain"
)

// State is a step in one checkout attempt.
type State int

const (
	Idle State = iota
	Validating
	ValidationFailed
	Submitting
	SubmitFailed
	Submitted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case ValidationFailed:
		return "validation_failed"
	case Submitting:
		return "submitting"
	case SubmitFailed:
		return "submit_failed"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the attempt has finished.
func (s State) Terminal() bool {
	return s == ValidationFailed || s == SubmitFailed || s == Submitted
}

// Attempt is the outcome of one checkout. Err is set for ValidationFailed and
// SubmitFailed, and for Idle when the cart could not be read at all.
type Attempt struct {
	State        State
	Totals       domain.OrderTotals
	Order        *domain.Order
	Confirmation *domain.Confirmation
	Err          error
	// ClearErr is set when the order went through but the ordered lines could
	// not be taken out of the cart.
	ClearErr error
}

type cartStore interface {
	Open(ctx context.Context, key string) (domain.Cart, error)
	Mutate(ctx context.Context, key string, fn func(domain.Cart) domain.Cart) (domain.Cart, error)
}

// Process runs checkout attempts against a persisted cart. It is the only
// place a successful submission takes lines out of the cart.
type Process struct {
	store  cartStore
	calc   *Calculator
	logger *log.Logger
}

func NewProcess(store cartStore, calc *Calculator, logger *log.Logger) *Process {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Process{store: store, calc: calc, logger: logger}
}

// Checkout validates and submits the cart at key. Nothing is retried; a
// failed attempt leaves the cart as it was.
func (p *Process) Checkout(ctx context.Context, key string, fields map[string]string) Attempt {
	cart, err := p.store.Open(ctx, key)
	if err != nil {
		p.logger.Printf("checkout: key=%s load cart error=%v", key, err)
		return Attempt{State: Idle, Err: err}
	}
	attempt := Attempt{State: Validating, Totals: ComputeTotals(cart)}

	order, err := p.calc.BuildOrder(cart, fields)
	if err != nil {
		p.logger.Printf("checkout: key=%s state=%s error=%v", key, ValidationFailed, err)
		attempt.State = ValidationFailed
		attempt.Err = err
		return attempt
	}
	attempt.Order = &order
	attempt.State = Submitting

	conf, err := p.calc.SubmitOrder(ctx, order)
	if err != nil {
		p.logger.Printf("checkout: key=%s state=%s error=%v", key, SubmitFailed, err)
		attempt.State = SubmitFailed
		attempt.Err = err
		return attempt
	}
	attempt.Confirmation = conf
	attempt.State = Submitted

	if _, err := p.store.Mutate(ctx, key, func(current domain.Cart) domain.Cart {
		return withoutOrdered(current, order.Items)
	}); err != nil {
		p.logger.Printf("checkout: key=%s submitted but clear failed: %v", key, err)
		attempt.ClearErr = err
	}
	p.logger.Printf("checkout: key=%s state=%s lines=%d total=%s", key, Submitted, len(order.Items), order.OrderTotal)
	return attempt
}

// withoutOrdered subtracts the ordered quantities from the current cart.
// Lines added or raised while the order was in flight stay behind.
func withoutOrdered(current domain.Cart, ordered []domain.PackagedItem) domain.Cart {
	remaining := make(map[string]int, len(ordered))
	for _, item := range ordered {
		remaining[item.ID] += item.Quantity
	}
	out := make(domain.Cart, 0, len(current))
	for _, line := range current {
		take := min(remaining[line.ID], line.Quantity)
		remaining[line.ID] -= take
		line.Quantity -= take
		if line.Quantity > 0 {
			out = append(out, line)
		}
	}
	return out
}
