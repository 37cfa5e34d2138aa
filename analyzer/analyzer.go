package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/geo-optimizer/backend/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PageFetcher downloads the HTML of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// MetricsSource supplies third-party SEO metrics. It must not fail; absence
// is reported through provider.Result.
type MetricsSource interface {
	Fetch(ctx context.Context, pageURL string) provider.Result
}

// Observer receives analysis outcomes, typically for metrics and statistics.
type Observer interface {
	AnalysisCompleted(a *Analysis, metricsAvailable bool, elapsed time.Duration)
	FetchFailed(err error)
}

type observers []Observer

// Observers fans outcomes out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	out := make(observers, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (o observers) AnalysisCompleted(a *Analysis, metricsAvailable bool, elapsed time.Duration) {
	for _, ob := range o {
		ob.AnalysisCompleted(a, metricsAvailable, elapsed)
	}
}

func (o observers) FetchFailed(err error) {
	for _, ob := range o {
		ob.FetchFailed(err)
	}
}

// Analyzer performs GEO analysis on a given URL
type Analyzer struct {
	fetcher  PageFetcher
	metrics  MetricsSource
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithObserver registers an outcome observer.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) { a.observer = o }
}

// WithClock overrides the time source used for AnalyzedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New creates a new Analyzer. metrics may be nil, in which case no
// metrics-dependent checks are produced.
func New(fetcher PageFetcher, metrics MetricsSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher: fetcher,
		metrics: metrics,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze fetches rawURL, runs the HTML checks while the metrics provider is
// queried, appends the metrics checks after both finish, and aggregates.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*Analysis, error) {
	start := a.now()

	pageURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	body, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		a.logger.Info("page fetch failed", zap.String("url", pageURL), zap.Error(err))
		if a.observer != nil {
			a.observer.FetchFailed(err)
		}
		return nil, err
	}

	page, err := NewPage(pageURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var (
		checks []Check
		result provider.Result
	)
	// Neither branch returns an error, so the provider cannot cancel the
	// HTML checks.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		checks = EvaluateHTML(page)
		return nil
	})
	g.Go(func() error {
		if a.metrics == nil {
			return nil
		}
		result = a.metrics.Fetch(gctx, pageURL)
		return nil
	})
	_ = g.Wait()

	var m *provider.Metrics
	if result.Available {
		m = result.Metrics
		checks = append(checks, EvaluateMetrics(m)...)
	} else if result.Error != "" {
		a.logger.Debug("seo metrics unavailable", zap.String("url", pageURL), zap.String("reason", result.Error))
	}

	analysis := Aggregate(pageURL, page.Title, checks, m).Stamp(a.now())

	elapsed := a.now().Sub(start)
	a.logger.Info("analysis completed",
		zap.String("url", pageURL),
		zap.Int("score", analysis.OverallScore),
		zap.Int("maxScore", analysis.MaxScore),
		zap.String("grade", analysis.Grade),
		zap.Bool("metrics", result.Available),
		zap.Duration("elapsed", elapsed),
	)
	if a.observer != nil {
		a.observer.AnalysisCompleted(analysis, result.Available, elapsed)
	}
	return analysis, nil
}

// analyzeHTML evaluates already-fetched HTML without touching the network.
func analyzeHTML(pageURL, html string, m *provider.Metrics) (*Analysis, error) {
	page, err := NewPageFromString(pageURL, html)
	if err != nil {
		return nil, err
	}
	return Aggregate(pageURL, page.Title, Evaluate(page, m), m), nil
}
