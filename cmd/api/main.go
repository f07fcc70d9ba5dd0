package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/venue-pos-api/internal/application/service"
	"github.com/sangkips/venue-pos-api/internal/config"
	"github.com/sangkips/venue-pos-api/internal/infrastructure/database"
	"github.com/sangkips/venue-pos-api/internal/infrastructure/metrics"
	"github.com/sangkips/venue-pos-api/internal/infrastructure/repository"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/handler"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/routes"
	"github.com/sangkips/venue-pos-api/pkg/logger"
	"github.com/sangkips/venue-pos-api/pkg/printer"
	"github.com/sangkips/venue-pos-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("Failed to get database handle")
	}
	defer sqlDB.Close()

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize repositories
	billRepo := repository.NewBillRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(cfg.Printer.Type, cfg.Printer.PrinterTarget())
	if err != nil {
		log.WithError(err).Warn("Failed to initialize printer, receipts will not be printed")
		thermalPrinter = &printer.Recorder{}
	}

	// Initialize services
	billService := service.NewBillService(billRepo, m, log, cfg.Billing)
	orderService := service.NewOrderService(orderRepo, billRepo, billService, log)
	printerService := service.NewPrinterService(thermalPrinter, billService, cfg.Printer, log)
	janitor := service.NewJanitor(billService, idempotencyRepo, log)

	handlers := &routes.Handlers{
		Health:  handler.NewHealthHandler(cfg.App.Name, sqlDB.PingContext),
		Bill:    handler.NewBillHandler(billService),
		Order:   handler.NewOrderHandler(orderService),
		Printer: handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewRateLimiter(routes.RateLimiterConfig(cfg.RateLimit))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Log:             log,
		Gatherer:        prometheus.DefaultGatherer,
		RateLimiter:     rateLimiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go janitor.Run(ctx, cfg.Billing.OverdueSweepEvery)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port": cfg.App.Port,
			"env":  cfg.App.Env,
			"db":   cfg.Database.Driver,
		}).Infof("Starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
