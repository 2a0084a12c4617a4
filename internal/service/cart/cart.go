package cart

import "storefront/internal/domain"

// MergeDuplicates folds lines sharing an id. Quantities are summed, the first
// occurrence keeps its name and price, and output follows first-seen order.
func MergeDuplicates(c domain.Cart) domain.Cart {
	out := make(domain.Cart, 0, len(c))
	index := make(map[string]int, len(c))
	for _, item := range c {
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// AddItem increments an existing line by item.Quantity or appends a new line.
// A non-positive quantity counts as one.
func AddItem(c domain.Cart, item domain.LineItem) domain.Cart {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	out := clone(c)
	if i := out.Find(item.ID); i >= 0 {
		out[i].Quantity += item.Quantity
		return out
	}
	return append(out, item)
}

// UpdateQuantity sets the quantity of the line with id, never below one.
func UpdateQuantity(c domain.Cart, id string, quantity int) domain.Cart {
	out := clone(c)
	i := out.Find(id)
	if i < 0 {
		return out
	}
	out[i].Quantity = max(quantity, 1)
	return out
}

// RemoveItem drops the line with id.
func RemoveItem(c domain.Cart, id string) domain.Cart {
	out := make(domain.Cart, 0, len(c))
	for _, item := range c {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// ItemFromProduct builds a line from a catalog record.
func ItemFromProduct(p domain.Product, quantity int) domain.LineItem {
	return domain.LineItem{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: centsToDecimal(p.PriceCents),
		Quantity:  max(quantity, 1),
	}
}

func clone(c domain.Cart) domain.Cart {
	out := make(domain.Cart, len(c), len(c)+1)
	copy(out, c)
	return out
}
