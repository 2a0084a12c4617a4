package httpserver

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/service/checkout"
)

type productService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type cartService interface {
	Open(ctx context.Context, key string) (domain.Cart, error)
	Add(ctx context.Context, key string, raw []byte) (domain.Cart, error)
	AddProduct(ctx context.Context, key, productID string, quantity int) (domain.Cart, error)
	SetQuantity(ctx context.Context, key, id string, quantity int) (domain.Cart, error)
	Remove(ctx context.Context, key, id string) (domain.Cart, error)
	Clear(ctx context.Context, key string) error
}

type checkoutService interface {
	Checkout(ctx context.Context, key string, fields map[string]string) checkout.Attempt
}

// Deps carries the services behind the routes. A nil Products disables the
// catalog routes.
type Deps struct {
	Products    productService
	Carts       cartService
	Checkout    checkoutService
	CartKey     string
	CORSOrigins []string
	ReadyChecks map[string]func(context.Context) error
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) *gin.Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.ReadyChecks))
	router.GET("/metrics", metrics.Handler())

	if deps.Products != nil {
		h := &productHandler{products: deps.Products}
		router.GET("/products", h.list)
		router.GET("/products/:id", h.get)
	}

	h := &cartHandler{carts: deps.Carts, checkout: deps.Checkout, defaultKey: deps.CartKey, logger: logger}
	if h.defaultKey == "" {
		h.defaultKey = "cart"
	}
	for _, prefix := range []string{"/cart", "/carts/:key"} {
		g := router.Group(prefix)
		g.GET("", h.get)
		g.DELETE("", h.clear)
		g.GET("/totals", h.totals)
		g.POST("/items", h.addItem)
		g.PATCH("/items/:id", h.setQuantity)
		g.DELETE("/items/:id", h.removeItem)
		g.POST("/products/:id", h.addProduct)
		g.POST("/checkout", h.submitCheckout)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
