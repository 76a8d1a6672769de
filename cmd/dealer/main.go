package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/app"
	"github.com/teagang/dealership/internal/config"
	"github.com/teagang/dealership/internal/shell"
	"github.com/teagang/dealership/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Mode))
	defer func() { _ = baseLogger.Sync() }()
	// The menu owns the terminal; only warnings and errors are logged.
	baseLogger = baseLogger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startupCtx, cancelStartup := context.WithTimeout(ctx, 30*time.Second)
	store, err := app.OpenStore(startupCtx, cfg, baseLogger)
	if err != nil {
		cancelStartup()
		baseLogger.Fatal("failed to open inventory store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer func() { _ = store.Close(context.Background()) }()

	dealerSvc := app.NewDealer(startupCtx, store, app.NewNotifier(cfg, baseLogger), baseLogger)
	cancelStartup()

	if err := shell.New(dealerSvc, os.Stdin, os.Stdout, baseLogger.Named("shell")).Run(ctx); err != nil {
		baseLogger.Error("shell stopped", zap.Error(err))
	}
}
