package cart

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

// Two record shapes feed the cart: the checkout shape (id/name/price) and the
// catalog shape (Id/NameWithoutBrand/FinalPrice). Fields are tried in order and
// empty values fall through to the next name.
var (
	idFields    = []string{"id", "Id"}
	nameFields  = []string{"name", "NameWithoutBrand"}
	priceFields = []string{"price", "FinalPrice"}
)

var (
	leadingDecimal = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)
	leadingInt     = regexp.MustCompile(`^[+-]?\d+`)
)

// Normalize converts one raw persisted or posted record into a LineItem.
// It returns false for records that are not objects or have no usable id.
func Normalize(raw any) (domain.LineItem, bool) {
	rec, ok := raw.(map[string]any)
	if !ok {
		return domain.LineItem{}, false
	}
	id := firstString(rec, idFields)
	if id == "" {
		return domain.LineItem{}, false
	}
	return domain.LineItem{
		ID:        id,
		Name:      firstString(rec, nameFields),
		UnitPrice: firstPrice(rec, priceFields),
		Quantity:  quantityOf(rec["quantity"]),
	}, true
}

// NormalizeAll applies Normalize to every element, dropping unusable records.
func NormalizeAll(raw []any) domain.Cart {
	out := make(domain.Cart, 0, len(raw))
	for _, r := range raw {
		if item, ok := Normalize(r); ok {
			out = append(out, item)
		}
	}
	return out
}

// NormalizeJSON decodes a single JSON object and normalizes it.
func NormalizeJSON(data []byte) (domain.LineItem, bool) {
	raw, err := decodeJSON(data)
	if err != nil {
		return domain.LineItem{}, false
	}
	return Normalize(raw)
}

func firstString(rec map[string]any, fields []string) string {
	for _, f := range fields {
		if s := scalarString(rec[f]); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		// Numeric zero in any spelling (0, 0.0, -0, 0e3) counts as empty.
		if d, err := decimal.NewFromString(t.String()); err == nil && d.IsZero() {
			return ""
		}
		return t.String()
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func firstPrice(rec map[string]any, fields []string) decimal.Decimal {
	for _, f := range fields {
		s := strings.TrimSpace(scalarString(rec[f]))
		if s == "" {
			continue
		}
		d, err := decimal.NewFromString(leadingDecimal.FindString(s))
		if err != nil {
			return decimal.Zero
		}
		if d.IsNegative() {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

func quantityOf(v any) int {
	s := strings.TrimSpace(scalarString(v))
	n, err := strconv.Atoi(leadingInt.FindString(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
