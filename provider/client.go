package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://api.dataforseo.com/v3"
	DefaultTimeout = 30 * time.Second

	rankOverviewPath   = "/dataforseo_labs/google/domain_rank_overview/live"
	instantPagesPath   = "/on_page/instant_pages"
	rankedKeywordsPath = "/dataforseo_labs/google/ranked_keywords/live"

	locationCode    = 2840 // United States
	languageCode    = "en"
	keywordLimit    = 100
	maxKeywordRank  = 10
	topKeywordCount = 5

	statusOK = 20000
)

// ErrNotConfigured is reported when login or password is missing.
var ErrNotConfigured = errors.New("metrics provider credentials not configured")

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the rank/keyword/on-page metrics API.
type Client struct {
	login      string
	password   string
	baseURL    string
	timeout    time.Duration
	httpClient HTTPClient
	logger     *zap.Logger
	observer   func(facet string, ok bool)
}

// ClientOption allows configuring the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithTimeout bounds each sub-request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for absorbed facet failures.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a callback invoked once per facet with its outcome.
func WithObserver(fn func(facet string, ok bool)) ClientOption {
	return func(c *Client) {
		c.observer = fn
	}
}

// NewClient creates a metrics provider client. Missing credentials are not an
// error here; Fetch reports them as unavailable.
func NewClient(login, password string, opts ...ClientOption) *Client {
	c := &Client{
		login:      login,
		password:   password,
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c != nil && c.login != "" && c.password != ""
}

// Fetch requests the three facets concurrently. Each facet fails on its own
// and leaves its fields nil; the others are unaffected.
func (c *Client) Fetch(ctx context.Context, pageURL string) (result Result) {
	if !c.Configured() {
		return Result{Available: false, Error: ErrNotConfigured.Error()}
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("metrics provider panicked", zap.Any("panic", r))
			result = Result{Available: false, Error: fmt.Sprintf("metrics provider failed: %v", r)}
		}
	}()

	domain, err := BareDomain(pageURL)
	if err != nil {
		return Result{Available: false, Error: err.Error()}
	}

	var (
		overview *rankOverviewResult
		page     *instantPagesResult
		keywords *rankedKeywordsResult
	)

	// Facet goroutines never return an error so one failure cannot cancel the rest.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overview = fetchFacet[rankOverviewResult](gctx, c, "rank_overview", rankOverviewPath, map[string]any{
			"target":        domain,
			"location_code": locationCode,
			"language_code": languageCode,
		})
		return nil
	})
	g.Go(func() error {
		page = fetchFacet[instantPagesResult](gctx, c, "on_page", instantPagesPath, map[string]any{
			"url":               pageURL,
			"enable_javascript": false,
		})
		return nil
	})
	g.Go(func() error {
		keywords = fetchFacet[rankedKeywordsResult](gctx, c, "ranked_keywords", rankedKeywordsPath, map[string]any{
			"target":        domain,
			"location_code": locationCode,
			"language_code": languageCode,
			"limit":         keywordLimit,
		})
		return nil
	})
	_ = g.Wait()

	m := &Metrics{}
	applyOverview(m, overview)
	applyInstantPage(m, page)
	m.TopKeywords = topKeywords(keywords)

	return Result{Available: true, Metrics: m}
}

// fetchFacet returns the first task result or nil on any failure.
func fetchFacet[T any](ctx context.Context, c *Client, facet, path string, task map[string]any) *T {
	res, err := post[T](ctx, c, path, task)
	if c.observer != nil {
		c.observer(facet, err == nil)
	}
	if err != nil {
		c.logger.Warn("metrics facet unavailable", zap.String("facet", facet), zap.Error(err))
		return nil
	}
	return res
}

func post[T any](ctx context.Context, c *Client, path string, task map[string]any) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal([]map[string]any{task})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}

	var decoded apiResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(decoded.Tasks) == 0 {
		return nil, fmt.Errorf("%s: no tasks in response", path)
	}
	t := decoded.Tasks[0]
	if t.StatusCode != statusOK {
		return nil, fmt.Errorf("%s: task status %d %s", path, t.StatusCode, t.StatusMessage)
	}
	if len(t.Result) == 0 {
		return nil, fmt.Errorf("%s: empty result", path)
	}
	return &t.Result[0], nil
}

func applyOverview(m *Metrics, r *rankOverviewResult) {
	if r == nil || len(r.Items) == 0 {
		return
	}
	item := r.Items[0]
	m.DomainRank = item.Rank
	if item.Metrics.Organic != nil {
		m.OrganicTraffic = item.Metrics.Organic.ETV
		m.OrganicKeywords = item.Metrics.Organic.Count
	}
}

func applyInstantPage(m *Metrics, r *instantPagesResult) {
	if r == nil || len(r.Items) == 0 {
		return
	}
	item := r.Items[0]
	m.OnPageScore = item.OnPageScore
	if item.PageTiming != nil {
		m.LoadTimeMs = item.PageTiming.DurationTime
	}
}

func topKeywords(r *rankedKeywordsResult) []Keyword {
	if r == nil {
		return nil
	}
	var out []Keyword
	for _, item := range r.Items {
		pos := item.RankedSERPElement.SERPItem.RankGroup
		if pos <= 0 || pos > maxKeywordRank || item.KeywordData.Keyword == "" {
			continue
		}
		volume := 0
		if v := item.KeywordData.KeywordInfo.SearchVolume; v != nil {
			volume = *v
		}
		out = append(out, Keyword{
			Keyword:      item.KeywordData.Keyword,
			Position:     pos,
			SearchVolume: volume,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SearchVolume > out[j].SearchVolume
	})
	if len(out) > topKeywordCount {
		out = out[:topKeywordCount]
	}
	return out
}

// BareDomain returns the lowercased host of rawURL without a leading "www.".
func BareDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return strings.TrimPrefix(host, "www."), nil
}
