package main

import (
	"context"
	"flag"
	"log"
	"os"

	"chaeen-storefront/internal/config"
	"chaeen-storefront/internal/db"
	accountrepo "chaeen-storefront/internal/repository/account"
	productrepo "chaeen-storefront/internal/repository/product"
	profilerepo "chaeen-storefront/internal/repository/profile"
	"chaeen-storefront/internal/seed"
)

func main() {
	var skipProducts bool
	flag.BoolVar(&skipProducts, "admin-only", false, "Provision the admin account without touching products")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	seeder := seed.New(
		productrepo.NewPostgres(pool, logger),
		accountrepo.NewPostgres(pool, logger),
		profilerepo.NewPostgres(pool, logger),
		logger,
	)

	if !skipProducts {
		if err := seeder.Products(ctx); err != nil {
			logger.Fatalf("seed products: %v", err)
		}
	}
	id, err := seeder.Admin(ctx, seed.Admin{
		Email:       os.Getenv("ADMIN_EMAIL"),
		Phone:       os.Getenv("ADMIN_PHONE"),
		Password:    os.Getenv("ADMIN_PASSWORD"),
		CountryCode: cfg.PhoneCountryCode,
	})
	if err != nil {
		logger.Fatalf("seed admin: %v", err)
	}
	if id != "" {
		logger.Printf("admin account ready id=%s", id)
	}

	logger.Println("seed applied")
}
