package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/resellhub/storefront/internal/accounts"
	"github.com/resellhub/storefront/internal/cart"
	"github.com/resellhub/storefront/internal/catalog"
	"github.com/resellhub/storefront/internal/config"
	"github.com/resellhub/storefront/internal/events"
	"github.com/resellhub/storefront/internal/httpserver"
	"github.com/resellhub/storefront/internal/identity"
	"github.com/resellhub/storefront/internal/logging"
	"github.com/resellhub/storefront/internal/metrics"
	"github.com/resellhub/storefront/internal/models"
	"github.com/resellhub/storefront/internal/orders"
	"github.com/resellhub/storefront/internal/payment"
	"github.com/resellhub/storefront/internal/policy"
	"github.com/resellhub/storefront/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("postgres open: %v", err)
	}
	if err := db.AutoMigrate(&models.CartSnapshot{}, &models.RefreshToken{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, err := accounts.Connect(ctx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	mongoDB := mongoClient.Database(cfg.MongoDatabase)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	accountRepo := accounts.NewRepo(mongoDB)
	orderRepo := orders.NewRepo(mongoDB)
	cartSvc := &cart.Service{Store: &cart.Store{DB: db}}
	verifier := payment.NewVerifier(cfg.PaymentAPIURL, cfg.PaymentAPIKey)

	ids := &identity.Service{
		Accounts:      accountRepo,
		DB:            db,
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		Events:        publisherOrNil(producer),
	}
	orderSvc := &orders.Service{
		Store:   orderRepo,
		Carts:   cartSvc,
		Events:  publisherOrNil(producer),
		Metrics: collector,
	}
	engine := &policy.Engine{
		Accounts: accountRepo,
		Verifier: verifier,
		Marker:   policy.NewMarkerCache(rdb),
		Metrics:  collector,
	}

	e := echo.New()
	e.Pre(ecM.RemoveTrailingSlash())
	e.HideBanner = true

	httpserver.Register(e, &httpserver.Deps{
		IDs:          ids,
		Accounts:     accountRepo,
		AccountAdmin: accountRepo,
		Policy:       engine,
		Carts:        cartSvc,
		Orders:       orderSvc,
		Reports:      &report.Service{Accounts: accountRepo, Orders: orderRepo},
		Catalog:      catalog.NewClient(cfg.CatalogURL, cfg.CatalogConsumerKey, cfg.CatalogConsumerSecret),
		Verifier:     verifier,
		Metrics:      collector,
		Gatherer:     registry,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close", "error", err)
		}
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Error("mongo disconnect", "error", err)
	}
	if err := rdb.Close(); err != nil {
		logger.Error("redis close", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// publisherOrNil keeps the services' nil checks meaningful when Kafka is not
// configured: a nil *Producer inside a non-nil interface would defeat them.
func publisherOrNil(p *events.Producer) interface {
	Publish(ctx context.Context, key string, event map[string]any) error
} {
	if p == nil {
		return nil
	}
	return p
}
