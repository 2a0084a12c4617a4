package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/carts/:key", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := httpRequests.WithLabelValues(http.MethodGet, "/carts/:key", "OK")
	before := testutil.ToFloat64(counter)

	for _, key := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/carts/"+key, nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Fatalf("expected 2 requests counted, got %v", got)
	}
}

func TestCheckoutOutcome(t *testing.T) {
	counter := checkoutOutcomes.WithLabelValues("submit_failed")
	before := testutil.ToFloat64(counter)
	CheckoutOutcome("submit_failed")
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected one outcome, got %v", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	CartMutation("add")
	router := gin.New()
	router.GET("/metrics", Handler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "storefront_cart_mutations_total") {
		t.Fatalf("cart mutation counter not exposed")
	}
}
