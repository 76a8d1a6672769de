package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/app"
	"github.com/teagang/dealership/internal/config"
	"github.com/teagang/dealership/internal/repository/filestore"
	"github.com/teagang/dealership/internal/scheduler"
	"github.com/teagang/dealership/internal/server/handlers"
	"github.com/teagang/dealership/internal/server/router"
	reportingsvc "github.com/teagang/dealership/internal/service/reporting"
	"github.com/teagang/dealership/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Mode))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := app.OpenStore(startupCtx, cfg, baseLogger)
	if err != nil {
		cancelStartup()
		baseLogger.Fatal("failed to open inventory store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close inventory store", zap.Error(err))
		}
	}()

	notifier := app.NewNotifier(cfg, baseLogger)
	dealerSvc := app.NewDealer(startupCtx, store, notifier, baseLogger)
	cancelStartup()

	reportingSvc := reportingsvc.NewService(dealerSvc, baseLogger.Named("svc.reporting"))
	inventoryHandler := handlers.NewInventoryHandler(dealerSvc, reportingSvc, baseLogger.Named("handlers.inventory"))
	engine := router.New(inventoryHandler, baseLogger.Named("router"))

	if cfg.Backup.CronSchedule != "" {
		backup := filestore.NewInventoryRepository(cfg.Backup.File, baseLogger.Named("repo.backup"))
		sched := scheduler.NewScheduler(cfg.Backup.CronSchedule, dealerSvc, backup, notifier, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
