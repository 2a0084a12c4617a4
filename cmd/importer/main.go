package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/repository/product"
)

func main() {
	var (
		filePath string
		category string
	)
	flag.StringVar(&filePath, "file", "", "Path to a product CSV export or JSON feed")
	flag.StringVar(&category, "category", "", "Category for rows that do not name one (required for JSON feeds)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	kind, err := importer.DetectKind(br)
	if err != nil {
		log.Fatalf("detect file kind: %v", err)
	}

	repo := product.NewPostgres(pool, nil)
	var imp *importer.Importer
	switch kind {
	case importer.KindJSON:
		if category == "" {
			log.Fatalf("-category is required for JSON feeds")
		}
		imp = importer.NewJSONImporter(br, repo, category)
	default:
		imp = importer.NewCSVImporter(br, repo, category)
	}

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d products: %v", count, err)
	}

	fmt.Printf("Imported %d products (%s) in %s\n", count, kind, time.Since(start).Truncate(time.Millisecond))
}
