package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/outreachly/leadgen-crawler/internal/api"
	"github.com/outreachly/leadgen-crawler/internal/config"
	"github.com/outreachly/leadgen-crawler/internal/crawlsite"
	"github.com/outreachly/leadgen-crawler/internal/fetch"
	"github.com/outreachly/leadgen-crawler/internal/job"
	"github.com/outreachly/leadgen-crawler/internal/ledger"
	"github.com/outreachly/leadgen-crawler/internal/logging"
	"github.com/outreachly/leadgen-crawler/internal/mailer"
	"github.com/outreachly/leadgen-crawler/internal/places"
	"github.com/outreachly/leadgen-crawler/internal/runner"
	"github.com/outreachly/leadgen-crawler/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the leadgen HTTP service.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	telemetry.Init()

	led, err := ledger.Open(
		cfg.Ledger.Path,
		time.Duration(cfg.Ledger.DebounceMs)*time.Millisecond,
		logger,
	)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	logger.Info("ledger loaded", zap.Int("contacted", led.Len()))

	fetcher := fetch.New(fetch.Config{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.FetchTimeout(),
		Watchdog:     cfg.FetchWatchdog(),
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		MaxInFlight:  int64(cfg.Fetch.MaxInFlight),
		MaxRetries:   cfg.Fetch.MaxRetries,
		BackoffBase:  time.Duration(cfg.Fetch.BackoffBaseMs) * time.Millisecond,
	})

	crawler := crawlsite.New(fetcher, crawlsite.Config{
		Throttle:        time.Duration(cfg.Crawl.ThrottleMs) * time.Millisecond,
		MaxSubpages:     cfg.Crawl.MaxSubpages,
		MaxDocuments:    cfg.Crawl.MaxDocuments,
		MaxSitemapPages: cfg.Crawl.MaxSitemapURLs,
	}, logger)

	source := places.NewClient(cfg.Places.APIKey, cfg.Places.BaseURL)

	sender, err := mailer.NewSMTP(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	registry := job.NewRegistry()
	run := runner.New(runner.Config{
		MaxSendCap:        cfg.Run.MaxSendCap,
		Concurrency:       cfg.Run.Concurrency,
		PageSize:          cfg.Run.PageSize,
		BusinessDelay:     time.Duration(cfg.Run.BusinessDelayMs) * time.Millisecond,
		Heartbeat:         time.Duration(cfg.Run.HeartbeatSeconds) * time.Second,
		ResendOnShortfall: cfg.Run.ResendOnShortfall,
		ResultsDir:        cfg.Server.ResultsDir,
	}, source, crawler, sender, led, registry, logger)

	apiKey := ""
	if cfg.Auth.Enabled {
		apiKey = cfg.Auth.APIKey
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(run, registry, cfg.Run.MaxSendCap, apiKey, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "context done"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	if err := led.Flush(); err != nil {
		logger.Warn("final ledger flush failed", zap.Error(err))
	}
	return nil
}
