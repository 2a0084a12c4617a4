package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	"storefront/internal/repository/blob"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/checkout"
)

type stubProducts struct {
	products map[string]domain.Product
}

func (s *stubProducts) List(_ context.Context, category string) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range s.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProducts) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.Get(ctx, id)
}

type stubSubmitter struct {
	conf  *domain.Confirmation
	err   error
	calls int
}

func (s *stubSubmitter) Submit(_ context.Context, _ domain.Order) (*domain.Confirmation, error) {
	s.calls++
	return s.conf, s.err
}

type testEnv struct {
	router    *gin.Engine
	store     *cartsvc.Store
	submitter *stubSubmitter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	products := &stubProducts{products: map[string]domain.Product{
		"880RR": {ID: "880RR", Category: "tents", Name: "Ajax Tent", Brand: "Marmot", PriceCents: 19999},
		"BP-1":  {ID: "BP-1", Category: "backpacks", Name: "Daypack", PriceCents: 2500},
	}}
	store := cartsvc.New(blob.NewMemory(), products, nil)
	sub := &stubSubmitter{conf: &domain.Confirmation{OrderID: "o-1", Message: "Order Placed"}}
	router := buildRouter(nil, Deps{
		Products: products,
		Carts:    store,
		Checkout: checkout.NewProcess(store, checkout.NewCalculator(sub), nil),
		CartKey:  "so-cart",
	})
	return &testEnv{router: router, store: store, submitter: sub}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

const validForm = `{"fname":"Ada","lname":"Lovelace","street":"12 Analytical Way","city":"Rexburg","state":"ID","zip":83440,"cardNumber":"1234123412341234","expiration":"08/29","code":"123"}`

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz_ReportsFailingBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := buildRouter(nil, Deps{ReadyChecks: map[string]func(context.Context) error{
		"redis": func(context.Context) error { return errors.New("down") },
	}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "redis") {
		t.Fatalf("unexpected readiness %d %s", rec.Code, rec.Body.String())
	}
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/products?category=tents", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decode(t, rec); body["count"] != 1.0 {
		t.Fatalf("unexpected listing %v", body)
	}

	if rec := env.do(t, http.MethodGet, "/products/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCart_EmptyView(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/cart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["key"] != "so-cart" || body["count"] != 0.0 || len(body["items"].([]any)) != 0 {
		t.Fatalf("unexpected empty cart %v", body)
	}
	if body["totals"].(map[string]any)["orderTotal"] != "0.00" {
		t.Fatalf("unexpected totals %v", body["totals"])
	}
}

func TestCart_AddLegacyRecordAndTotals(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/carts/k/items", `{"Id":"880RR","NameWithoutBrand":"Ajax Tent","FinalPrice":199.99}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/carts/k/items", `{"id":"880RR","name":"Ajax Tent","price":"199.99","quantity":"2"}`)
	body := decode(t, rec)
	if body["count"] != 3.0 {
		t.Fatalf("expected merged quantity 3, got %v", body)
	}
	line := body["items"].([]any)[0].(map[string]any)
	if line["lineTotal"] != "599.97" {
		t.Fatalf("unexpected line total %v", line)
	}

	rec = env.do(t, http.MethodGet, "/carts/k/totals", "")
	totals := decode(t, rec)
	if totals["itemTotal"] != "599.97" || totals["shipping"] != "10.00" || totals["tax"] != "36.00" || totals["orderTotal"] != "645.97" {
		t.Fatalf("unexpected totals %v", totals)
	}
}

func TestCart_AddRecordWithoutID(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/carts/k/items", `{"name":"nameless"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCart_AddProduct(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodPost, "/carts/k/products/880RR", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/carts/k/products/880RR", `{"quantity":2}`)
	body := decode(t, rec)
	line := body["items"].([]any)[0].(map[string]any)
	if line["quantity"] != 3.0 || line["price"] != 199.99 {
		t.Fatalf("unexpected line %v", line)
	}

	if rec := env.do(t, http.MethodPost, "/carts/k/products/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCart_UpdateRemoveClear(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/cart/products/880RR", `{"quantity":4}`)
	env.do(t, http.MethodPost, "/cart/products/BP-1", "")

	rec := env.do(t, http.MethodPatch, "/cart/items/880RR", `{"quantity":0}`)
	body := decode(t, rec)
	if body["items"].([]any)[0].(map[string]any)["quantity"] != 1.0 {
		t.Fatalf("expected quantity clamped to 1, got %v", body)
	}

	if rec := env.do(t, http.MethodPatch, "/cart/items/880RR", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without quantity, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/cart/items/880RR", "")
	body = decode(t, rec)
	if len(body["items"].([]any)) != 1 {
		t.Fatalf("expected one line left, got %v", body)
	}

	if rec := env.do(t, http.MethodDelete, "/cart", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	left, _ := env.store.Load(context.Background(), "so-cart")
	if len(left) != 0 {
		t.Fatalf("expected cleared cart, got %+v", left)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/cart/checkout", validForm)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if body := decode(t, rec); body["state"] != "validation_failed" {
		t.Fatalf("unexpected state %v", body["state"])
	}
	if env.submitter.calls != 0 {
		t.Fatalf("submitter must not be called")
	}
}

func TestCheckout_InvalidZip(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/cart/products/880RR", "")
	rec := env.do(t, http.MethodPost, "/cart/checkout", strings.Replace(validForm, "83440", `"1234"`, 1))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	fields := decode(t, rec)["fields"].([]any)
	if fields[0].(map[string]any)["field"] != "zip" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestCheckout_RejectedKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	env.submitter.err = &domain.SubmissionError{Status: 422, Body: map[string]any{"field": "cardNumber", "message": "declined"}}
	env.do(t, http.MethodPost, "/cart/products/880RR", `{"quantity":2}`)

	rec := env.do(t, http.MethodPost, "/cart/checkout", validForm)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["state"] != "submit_failed" || body["upstreamStatus"] != 422.0 {
		t.Fatalf("unexpected body %v", body)
	}
	if body["upstreamBody"].(map[string]any)["message"] != "declined" {
		t.Fatalf("upstream body lost: %v", body["upstreamBody"])
	}
	left, _ := env.store.Load(context.Background(), "so-cart")
	if len(left) != 1 || left[0].Quantity != 2 {
		t.Fatalf("cart changed after rejection: %+v", left)
	}
}

func TestCheckout_TransportFailure(t *testing.T) {
	env := newTestEnv(t)
	env.submitter.err = errors.New("dial tcp: connection refused")
	env.do(t, http.MethodPost, "/cart/products/880RR", "")
	if rec := env.do(t, http.MethodPost, "/cart/checkout", validForm); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCheckout_Submitted(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/cart/products/880RR", "")
	rec := env.do(t, http.MethodPost, "/cart/checkout", validForm)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["state"] != "submitted" || body["confirmation"].(map[string]any)["orderId"] != "o-1" {
		t.Fatalf("unexpected body %v", body)
	}
	order := body["order"].(map[string]any)
	if order["zip"] != "83440" || order["orderTotal"] != "221.99" {
		t.Fatalf("unexpected order %v", order)
	}
	left, _ := env.store.Load(context.Background(), "so-cart")
	if len(left) != 0 {
		t.Fatalf("expected cart cleared, got %+v", left)
	}
}

func TestCheckout_MalformedForm(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodPost, "/cart/checkout", `{"zip":{"nested":true}}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := buildRouter(nil, Deps{CORSOrigins: []string{"http://localhost:5173"}})
	req := httptest.NewRequest(http.MethodOptions, "/cart", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("missing CORS header, got %v", rec.Header())
	}
}
