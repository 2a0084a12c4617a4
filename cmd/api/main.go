package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	checkoutclient "storefront/internal/client/checkout"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/repository/blob"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
)

func main() {
	cfg := config.FromEnv()
	logger, closer, err := logging.New("[api] ", logging.Options{File: cfg.LogFile})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer closer.Close()

	ctx := context.Background()
	readyChecks := map[string]func(context.Context) error{}

	// The catalog lives in Postgres. Only the postgres store backend requires
	// it; the others run without catalog routes when it is unreachable.
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		if cfg.StoreBackend == config.BackendPostgres {
			logger.Fatalf("connect to db: %v", err)
		}
		logger.Printf("db unavailable, catalog disabled: %v", err)
	}
	if dbpool != nil {
		defer dbpool.Close()
		readyChecks["db"] = dbpool.Ping
	}

	blobRepo, err := openBlobStore(ctx, cfg, dbpool, logger, readyChecks)
	if err != nil {
		logger.Fatalf("open cart store: %v", err)
	}

	deps := httpserver.Deps{
		CartKey:     cfg.CartKey,
		CORSOrigins: cfg.CORSOrigins,
		ReadyChecks: readyChecks,
	}

	var store *cartsvc.Store
	if dbpool != nil {
		productService := productsvc.New(productrepo.NewPostgres(dbpool, logger))
		deps.Products = productService
		store = cartsvc.New(blobRepo, productService, logger)
	} else {
		store = cartsvc.New(blobRepo, nil, logger)
	}
	deps.Carts = store

	client, err := checkoutclient.New(cfg.CheckoutURL, cfg.CheckoutTimeout, logger)
	if err != nil {
		logger.Fatalf("init checkout client: %v", err)
	}
	deps.Checkout = checkout.NewProcess(store, checkout.NewCalculator(client), logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, deps)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s store=%s", cfg.HTTPAddr, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func openBlobStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *log.Logger, checks map[string]func(context.Context) error) (blob.Repository, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return blob.NewMemory(), nil
	case config.BackendPostgres:
		return blob.NewPostgres(pool, logger), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		return blob.NewRedis(rdb), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
