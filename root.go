package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geo-optimizer/backend/analyzer"
	"github.com/geo-optimizer/backend/config"
	"github.com/geo-optimizer/backend/logging"
	"github.com/geo-optimizer/backend/monitoring"
	"github.com/geo-optimizer/backend/provider"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geo-optimizer",
		Short: "Score web pages for Generative Engine Optimization readiness",
		Long: `geo-optimizer fetches a web page, runs a fixed battery of checks that
estimate how likely AI answer engines are to cite it, and reports a graded
score with recommendations. Optional third-party SEO metrics enrich the
analysis when provider credentials are configured.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads dotenv files and the environment, then builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	if _, err := config.LoadEnv(""); err != nil {
		return nil, nil, fmt.Errorf("load env files: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(level, cfg.DevMode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newAnalyzer wires the page fetcher and metrics provider from cfg. m and
// obs may be nil.
func newAnalyzer(cfg *config.Config, logger *zap.Logger, m *monitoring.Metrics, obs analyzer.Observer) *analyzer.Analyzer {
	opts := []provider.ClientOption{
		provider.WithBaseURL(cfg.DataForSEOBaseURL),
		provider.WithTimeout(cfg.MetricsTimeout),
		provider.WithLogger(logger.Named("provider")),
	}
	if m != nil {
		opts = append(opts, provider.WithObserver(m.ProviderFacet))
	}
	metrics := provider.NewClient(cfg.DataForSEOLogin, cfg.DataForSEOPass, opts...)
	if !metrics.Configured() {
		logger.Info("SEO metrics provider not configured; analyses will use HTML checks only")
	}

	fetcher := analyzer.NewFetcher(cfg.FetchTimeout, cfg.FetchMaxRedirects, cfg.UserAgent)
	return analyzer.New(fetcher, metrics,
		analyzer.WithLogger(logger.Named("analyzer")),
		analyzer.WithObserver(obs),
	)
}
