package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chaeen-storefront/internal/config"
	"chaeen-storefront/internal/db"
	"chaeen-storefront/internal/httpserver"
	"chaeen-storefront/internal/querycache"
	"chaeen-storefront/internal/remote"
	accountrepo "chaeen-storefront/internal/repository/account"
	productrepo "chaeen-storefront/internal/repository/product"
	profilerepo "chaeen-storefront/internal/repository/profile"
	sessionrepo "chaeen-storefront/internal/repository/session"
	catalogsvc "chaeen-storefront/internal/service/catalog"
	shopsvc "chaeen-storefront/internal/service/shop"
	"chaeen-storefront/internal/site"
	"chaeen-storefront/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if cfg.SessionSecret == config.DefaultSessionSecret {
		logger.Printf("WARNING: SESSION_SECRET is not set; admin cookies are signed with the public default key")
	}
	site.MustLoadPages()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	objects, err := objectStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("init object storage: %v", err)
	}

	sessionRepo := sessionrepo.NewPostgres(dbpool)
	client := remote.New(remote.Backends{
		Accounts: accountrepo.NewPostgres(dbpool, logger),
		Sessions: sessionRepo,
		Products: productrepo.NewPostgres(dbpool, logger),
		Profiles: profilerepo.NewPostgres(dbpool, logger),
		Objects:  objects,
	}, remote.Options{SessionTTL: cfg.SessionTTL, Logger: logger})

	shopService := shopsvc.New(client, shopsvc.Options{
		CountryCode: cfg.PhoneCountryCode,
		Bucket:      cfg.S3Bucket,
		Logger:      logger,
	})
	cache := querycache.New(cfg.QueryCacheTTL)
	catalogService := catalogsvc.New(shopService, cache, cfg.WhatsAppNumber, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Shop:        shopService,
		Catalog:     catalogService,
		Cache:       cache,
		Sessions:    httpserver.NewSessionStore(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureSite()),
		Objects:     objects,
		SiteURL:     cfg.SiteURL,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, sessionRepo, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
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

func objectStore(ctx context.Context, cfg config.Config, logger *log.Logger) (storage.ObjectStore, error) {
	if cfg.StorageDriver == "memory" {
		logger.Printf("using in-memory object storage; uploads are lost on restart")
		return storage.NewMemory(cfg.PublicStorageURL), nil
	}
	store, err := storage.NewS3(ctx, storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.PublicStorageURL,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx, cfg.S3Bucket); err != nil {
		return nil, err
	}
	return store, nil
}

// sweepSessions drops expired access tokens once an hour.
func sweepSessions(ctx context.Context, repo sessionrepo.Repository, logger *log.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				logger.Printf("sweep sessions: %v", err)
				continue
			}
			if removed > 0 {
				logger.Printf("swept %d expired sessions", removed)
			}
		}
	}
}
