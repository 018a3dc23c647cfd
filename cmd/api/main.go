package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/tunedhq/tuned-core/internal/client"
	"github.com/tunedhq/tuned-core/internal/config"
	"github.com/tunedhq/tuned-core/internal/notify"
	"github.com/tunedhq/tuned-core/internal/repository"
	"github.com/tunedhq/tuned-core/internal/scheduler"
	"github.com/tunedhq/tuned-core/internal/server"
	"github.com/tunedhq/tuned-core/internal/service"
	"github.com/tunedhq/tuned-core/internal/storage"
	"github.com/tunedhq/tuned-core/internal/telemetry"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	telemetry.InitLogger(cfg.Log.Level)

	db, err := client.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("database init: ", err)
	}

	fileStore, err := storage.NewLocalStore(cfg.Storage.Dir)
	if err != nil {
		log.Fatal("file store init: ", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	userRepo := repository.NewUserRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	pushClient := client.NewPushClient(&cfg.Push)
	emailSender := notify.NewSMTPSender(cfg.SMTP)

	notifier := notify.NewNotifier(notificationRepo, userRepo, emailSender, pushClient)
	notifier.Start()

	engine := scheduler.NewEngine(db, orderRepo, notifier, cfg.Scheduler)
	engine.Start()

	pricingService := service.NewPricingService(catalogRepo, discountRepo)
	orderService := service.NewOrderService(
		db,
		orderRepo, invoiceRepo, userRepo, discountRepo, activityRepo,
		pricingService, notifier, engine, fileStore,
		cfg.Billing.PointsPerUnit, cfg.Billing.TaxRatePct,
	)

	srv := server.NewServer(orderService, pricingService, notificationRepo, cfg.Auth.JWTSecret)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		log.Println("HTTP server shutdown error:", err)
	}
	engine.Stop()
	notifier.Stop()
}
