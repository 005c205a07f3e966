package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"chaeen-storefront/internal/config"
	"chaeen-storefront/internal/db"
	"chaeen-storefront/internal/repository/product"
	"chaeen-storefront/internal/site"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "dist/public", "Directory to write sitemap.xml, robots.txt and manifest.webmanifest into")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[sitemap] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	products, err := product.NewPostgres(pool, logger).List(ctx, true)
	if err != nil {
		logger.Fatalf("list products: %v", err)
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	written, err := site.WriteStatic(outDir, cfg.SiteURL, ids, time.Now())
	if err != nil {
		logger.Fatalf("write artifacts: %v", err)
	}
	for _, path := range written {
		logger.Printf("wrote %s", path)
	}
}
