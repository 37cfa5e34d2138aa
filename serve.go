package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geo-optimizer/backend/analyzer"
	"github.com/geo-optimizer/backend/api"
	"github.com/geo-optimizer/backend/logging"
	"github.com/geo-optimizer/backend/mailer"
	"github.com/geo-optimizer/backend/middleware"
	"github.com/geo-optimizer/backend/monitoring"
	"github.com/geo-optimizer/backend/stats"
)

const (
	shutdownTimeout = 15 * time.Second
	statsRetention  = 2 // months
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	gin.SetMode(cfg.GinMode)

	statistics, err := logging.NewStatistics(cfg.DataDir, cfg.DevMode)
	if err != nil {
		return err
	}
	storage, err := stats.NewStorage(cfg.DataDir, logger.Named("stats"))
	if err != nil {
		return err
	}
	storage.Cleanup(statsRetention)

	metrics := monitoring.NewMetrics()
	a := newAnalyzer(cfg, logger, metrics, analyzer.Observers(metrics, storage))
	sender := mailer.NewResend(cfg.ResendAPIKey, cfg.ReportFromEmail, logger.Named("mailer"))
	if !sender.Configured() {
		logger.Warn("RESEND_API_KEY not set; report delivery is disabled")
	}

	srv := api.NewServer(api.Deps{
		Analyzer:    a,
		Sender:      sender,
		Statistics:  statistics,
		Storage:     storage,
		Metrics:     metrics,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:      logger.Named("api"),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(":" + cfg.Port) }()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := statistics.Save(); err != nil {
		errs = append(errs, err)
	}
	if err := storage.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("shutdown finished with errors", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
