package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Currypiekers/bestattungssoftware-portfolio/config"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/bootstrap"
	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger := bootstrap.InitLogger(cfg.Observability)

	if err := run(ctx, &cfg, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	displayAppName(cfg.AppName)
	logStartupInfo(ctx, logger, cfg)

	opened, err := bootstrap.OpenStore(ctx, bootstrap.StoreDeps{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := opened.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close credential store failed", "error", cerr)
		}
	}()

	reg := prometheus.NewRegistry()
	sc, err := bootstrap.NewSession(ctx, &bootstrap.SessionDeps{
		Config:     cfg,
		Store:      opened.Store,
		Logger:     logger,
		Registerer: reg,
		OnNavigate: func(v domainsession.View) { writeNavigation(os.Stdout, v) },
	})
	if err != nil {
		return err
	}

	metricsServer := bootstrap.StartMetricsServer(bootstrap.MetricsServerConfig{
		Addr:     cfg.Observability.MetricsAddr,
		Gatherer: reg,
		Logger:   logger,
	})
	defer func() {
		if serr := bootstrap.ShutdownMetricsServer(ctx, metricsServer, logger); serr != nil {
			logger.ErrorContext(ctx, "shutdown metrics server failed", "error", serr)
		}
	}()

	if err = sc.Monitor.Start(ctx); err != nil {
		return fmt.Errorf("start expiration monitor: %w", err)
	}
	defer func() {
		if merr := sc.Monitor.Stop(); merr != nil {
			logger.ErrorContext(ctx, "stop expiration monitor failed", "error", merr)
		}
	}()

	r := newREPL(sc, os.Stdin, os.Stdout)
	if err = r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func displayAppName(name string) {
	f := figure.NewFigure(name, "cybermedium", true)
	f.Print()
	_ = writef(os.Stdout, "\n")
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting portal session client",
		"store_backend", cfg.Store.Backend,
		"tenant_template", cfg.Tenant.BaseURLTemplate,
		"idle_timeout", cfg.Session.IdleTimeout,
		"metrics_enabled", cfg.Observability.MetricsEnabled())
}
