package main

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
)

func main() {
	envErr := cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	if envErr != nil {
		logger.Warn("Failed to load .env file", log.FieldError, envErr)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Exit(logger, "Configuration validation failed", err)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Exit(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize backend", err)
	}

	transactions := services.NewTransactionService(res.Gateway, logger)
	budgets := services.NewBudgetService(res.Gateway, res.Gateway, logger)

	rl := ratelimit.DefaultConfig()
	rl.RequestsPerMinute = cfg.RateLimitPerMinute

	var readiness apphttp.ReadinessCheck
	if res.Ready != nil {
		readiness = apphttp.ReadinessCheck(res.Ready)
	}
	srv := apphttp.NewServer(cfg.Addr(), transactions, budgets, logger, apphttp.Options{
		RateLimit:      rl,
		TrustedProxies: cfg.TrustedProxies,
		Readiness:      readiness,
		CacheStats:     res.CacheStats,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", res.AMQP != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		return cli.GracefulShutdown(logger, cli.ShutdownTimeout,
			srv.Shutdown,
			func(context.Context) error { return res.Cleanup() },
		)
	})

	if err := g.Wait(); err != nil {
		cli.Exit(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}
