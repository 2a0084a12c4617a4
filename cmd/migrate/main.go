package main

import (
	"context"
	"flag"
	"log"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/migrate"
)

func main() {
	var down int
	flag.IntVar(&down, "down", 0, "Roll back this many versions instead of migrating up")
	flag.Parse()

	cfg := config.FromEnv()
	logger, closer, err := logging.New("[migrate] ", logging.Options{File: cfg.LogFile})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer closer.Close()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if down > 0 {
		if err := migrate.Rollback(ctx, pool, down); err != nil {
			logger.Fatalf("rollback migrations: %v", err)
		}
		logger.Printf("rolled back %d version(s)", down)
	} else {
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Println("migrations applied")
	}

	version, dirty, ok, err := migrate.Version(ctx, pool)
	switch {
	case err != nil:
		logger.Printf("read schema version: %v", err)
	case !ok:
		logger.Println("schema version: none")
	default:
		logger.Printf("schema version: %d dirty=%t", version, dirty)
	}
}
