package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	mem "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

func main() {
	envErr := cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	if envErr != nil {
		logger.Warn("Failed to load .env file", log.FieldError, envErr)
	}

	logger.Info("Starting fintrack-worker")

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Exit(logger, "Configuration validation failed", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		cli.Exit(logger, "Invalid worker configuration", err)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Exit(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewConsumerFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize backend", err)
	}
	if res.AMQP == nil {
		_ = res.Cleanup()
		cli.Exit(logger, "Failed to initialize AMQP client", errors.New("broker unreachable"))
	}

	mirror, err := newMirror(ctx, cfg, logger)
	if err != nil {
		_ = res.Cleanup()
		cli.Exit(logger, "Failed to initialize spreadsheet mirror", err)
	}

	w := worker.NewMirrorWorker(res.Gateway, mirror, cfg.SyncInterval, logger)

	// A failed startup sync is retried by the next message or resync.
	if err := w.StartupSync(ctx); err != nil {
		logger.Error("Startup sync failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := res.AMQP.ConsumeSnapshots(gctx, w.HandleSnapshot)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return w.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker", log.FieldOperation, log.OpShutdown)
		return cli.GracefulShutdown(logger, cli.ShutdownTimeout,
			w.Stop,
			func(context.Context) error { return res.Cleanup() },
		)
	})

	if err := g.Wait(); err != nil {
		cli.Exit(logger, "Worker error", err)
	}
	logger.Info("Worker stopped gracefully")
}

// newMirror selects the Google Sheets mirror when a spreadsheet is configured
// and an in-process mirror otherwise.
func newMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.TransactionMirror, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
		return mem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:     cfg.GoogleSpreadsheetID,
		TransactionsSheet: cfg.GoogleTransactionsSheet,
		BudgetsSheet:      cfg.GoogleBudgetsSheet,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
