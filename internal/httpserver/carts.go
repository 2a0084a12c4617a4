package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/service/checkout"
)

const maxBodyBytes = 64 << 10

type cartHandler struct {
	carts      cartService
	checkout   checkoutService
	defaultKey string
	logger     *log.Logger
}

type lineView struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	LineTotal string      `json:"lineTotal"`
}

type cartView struct {
	Key    string                 `json:"key"`
	Items  []lineView             `json:"items"`
	Count  int                    `json:"count"`
	Totals domain.FormattedTotals `json:"totals"`
}

func toCartView(key string, cart domain.Cart) cartView {
	items := make([]lineView, 0, len(cart))
	for _, item := range cart {
		items = append(items, lineView{
			ID:        item.ID,
			Name:      item.Name,
			Price:     json.Number(item.UnitPrice.String()),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}
	return cartView{
		Key:    key,
		Items:  items,
		Count:  cart.Count(),
		Totals: checkout.ComputeTotals(cart).Formatted(),
	}
}

func (h *cartHandler) key(c *gin.Context) string {
	if key := c.Param("key"); key != "" {
		return key
	}
	return h.defaultKey
}

func (h *cartHandler) get(c *gin.Context) {
	key := h.key(c)
	cart, err := h.carts.Open(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(key, cart))
}

func (h *cartHandler) totals(c *gin.Context) {
	cart, err := h.carts.Open(c.Request.Context(), h.key(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkout.ComputeTotals(cart).Formatted())
}

// addItem accepts a raw record in any of the product shapes the storefront
// has ever stored.
func (h *cartHandler) addItem(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		writeError(c, fmt.Errorf("%w: read body: %v", domain.ErrInvalidInput, err))
		return
	}
	h.mutated(c, "add", func(key string) (domain.Cart, error) {
		return h.carts.Add(c.Request.Context(), key, raw)
	})
}

type addProductRequest struct {
	Quantity int `json:"quantity"`
}

func (h *cartHandler) addProduct(c *gin.Context) {
	req := addProductRequest{Quantity: 1}
	if err := bindOptionalJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	h.mutated(c, "add_product", func(key string) (domain.Cart, error) {
		return h.carts.AddProduct(c.Request.Context(), key, c.Param("id"), req.Quantity)
	})
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *cartHandler) setQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	h.mutated(c, "set_quantity", func(key string) (domain.Cart, error) {
		return h.carts.SetQuantity(c.Request.Context(), key, c.Param("id"), *req.Quantity)
	})
}

func (h *cartHandler) removeItem(c *gin.Context) {
	h.mutated(c, "remove", func(key string) (domain.Cart, error) {
		return h.carts.Remove(c.Request.Context(), key, c.Param("id"))
	})
}

func (h *cartHandler) clear(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), h.key(c)); err != nil {
		writeError(c, err)
		return
	}
	metrics.CartMutation("clear")
	c.Status(http.StatusNoContent)
}

// mutated runs one persisted change and renders the resulting cart. The
// change is saved before totals are computed from it.
func (h *cartHandler) mutated(c *gin.Context, op string, fn func(key string) (domain.Cart, error)) {
	key := h.key(c)
	cart, err := fn(key)
	if err != nil {
		h.logger.Printf("cart api: key=%s op=%s error=%v", key, op, err)
		writeError(c, err)
		return
	}
	metrics.CartMutation(op)
	c.JSON(http.StatusOK, toCartView(key, cart))
}

func bindOptionalJSON(c *gin.Context, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

type checkoutResponse struct {
	State        string                 `json:"state"`
	Totals       domain.FormattedTotals `json:"totals"`
	Order        *domain.Order          `json:"order,omitempty"`
	Confirmation *domain.Confirmation   `json:"confirmation,omitempty"`
	Warning      string                 `json:"warning,omitempty"`
}

func (h *cartHandler) submitCheckout(c *gin.Context) {
	fields, err := decodeFields(c.Request.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	key := h.key(c)
	attempt := h.checkout.Checkout(c.Request.Context(), key, fields)
	metrics.CheckoutOutcome(attempt.State.String())

	if attempt.Err != nil {
		body := errorBody(attempt.Err)
		body["state"] = attempt.State.String()
		body["totals"] = attempt.Totals.Formatted()
		c.JSON(statusFor(attempt.Err), body)
		return
	}

	resp := checkoutResponse{
		State:        attempt.State.String(),
		Totals:       attempt.Totals.Formatted(),
		Order:        attempt.Order,
		Confirmation: attempt.Confirmation,
	}
	if attempt.ClearErr != nil {
		resp.Warning = "order placed but the ordered lines could not be removed from the cart"
	}
	c.JSON(http.StatusCreated, resp)
}

// decodeFields accepts string and number values; numbers keep their literal
// text so long card numbers survive.
func decodeFields(r io.Reader) (map[string]string, error) {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: checkout form: %v", domain.ErrInvalidInput, err)
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case nil:
		default:
			return nil, fmt.Errorf("%w: checkout form field %q must be a string", domain.ErrInvalidInput, k)
		}
	}
	return fields, nil
}
