package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultMaxRedirects = 5
	DefaultUserAgent    = "Mozilla/5.0 (compatible; GEOAnalyzer/1.0; +https://geo-optimizer.dev)"

	maxBodyBytes = 5 << 20
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Fetch failure kinds that callers surface as client errors.
var (
	ErrDomainNotFound = errors.New("domain not found")
	ErrAccessDenied   = errors.New("access denied")
	ErrPageNotFound   = errors.New("page not found")
	ErrTimeout        = errors.New("request timed out")
	ErrInvalidURL     = errors.New("invalid url")
)

// FetchError wraps a failed page fetch. Kind is one of the sentinel errors
// above, or nil for failures that are not classified.
type FetchError struct {
	URL        string
	StatusCode int
	Kind       error
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind != nil && e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: %v (HTTP %d)", e.URL, e.Kind, e.StatusCode)
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("fetch %s: %v: %v", e.URL, e.Kind, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

// Is matches the classified kind so errors.Is(err, ErrAccessDenied) works.
func (e *FetchError) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads pages with a bounded timeout and redirect count.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a Fetcher. Zero values select the defaults.
func NewFetcher(timeout time.Duration, maxRedirects int, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Fetch returns the body of pageURL. The body is capped at 5 MiB.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Kind: ErrInvalidURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Kind: classifyTransportError(err), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode, Kind: ErrAccessDenied}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode, Kind: ErrPageNotFound}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Kind: classifyTransportError(err), Err: err}
	}
	return body, nil
}

func classifyTransportError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return ErrDomainNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return nil
}

// NormalizeURL trims rawURL and defaults the scheme to https.
func NormalizeURL(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	if !schemePattern.MatchString(s) {
		s = "https://" + strings.TrimPrefix(s, "//")
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return s, nil
}
