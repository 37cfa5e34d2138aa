package analyzer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geo-optimizer/backend/provider"
)

type staticFetcher struct {
	body string
	err  error
	got  string
}

func (f *staticFetcher) Fetch(_ context.Context, pageURL string) ([]byte, error) {
	f.got = pageURL
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

type staticMetrics struct {
	result provider.Result
	delay  time.Duration
	calls  int
	mu     sync.Mutex
}

func (m *staticMetrics) Fetch(ctx context.Context, _ string) provider.Result {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
		}
	}
	return m.result
}

type recordingObserver struct {
	completed []*Analysis
	failed    []error
}

func (o *recordingObserver) AnalysisCompleted(a *Analysis, _ bool, _ time.Duration) {
	o.completed = append(o.completed, a)
}

func (o *recordingObserver) FetchFailed(err error) { o.failed = append(o.failed, err) }

func TestAnalyzeNormalizesURL(t *testing.T) {
	f := &staticFetcher{body: richHTML}
	a := New(f, nil)
	res, err := a.Analyze(context.Background(), "  www.example.com/geo-guide ")
	if err != nil {
		t.Fatal(err)
	}
	if f.got != "https://www.example.com/geo-guide" || res.URL != f.got {
		t.Errorf("url not normalized: fetched %q, analysis %q", f.got, res.URL)
	}
	if res.SEOMetrics != nil {
		t.Error("no metrics source should mean no metrics")
	}
	if len(res.Checks) != len(htmlChecks) {
		t.Errorf("got %d checks, want %d", len(res.Checks), len(htmlChecks))
	}
}

func TestAnalyzeWithMetrics(t *testing.T) {
	m := &staticMetrics{result: provider.Result{Available: true, Metrics: fullMetrics()}, delay: 20 * time.Millisecond}
	obs := &recordingObserver{}
	fixed := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	a := New(&staticFetcher{body: richHTML}, m, WithObserver(obs), WithClock(func() time.Time { return fixed }))

	res, err := a.Analyze(context.Background(), richURL)
	if err != nil {
		t.Fatal(err)
	}
	if m.calls != 1 {
		t.Errorf("metrics called %d times", m.calls)
	}
	if res.SEOMetrics == nil || res.OverallScore != 117 || res.MaxScore != 119 {
		t.Errorf("unexpected analysis: %d/%d metrics=%v", res.OverallScore, res.MaxScore, res.SEOMetrics)
	}
	if !res.AnalyzedAt.Equal(fixed) {
		t.Errorf("analyzed at = %v", res.AnalyzedAt)
	}
	if len(obs.completed) != 1 {
		t.Errorf("observer saw %d completions", len(obs.completed))
	}
}

func TestAnalyzeMetricsUnavailable(t *testing.T) {
	m := &staticMetrics{result: provider.Result{Available: false, Error: provider.ErrNotConfigured.Error()}}
	res, err := New(&staticFetcher{body: richHTML}, m).Analyze(context.Background(), richURL)
	if err != nil {
		t.Fatal(err)
	}
	if res.SEOMetrics != nil {
		t.Error("unavailable metrics must be omitted")
	}
	if res.MaxScore != 100 {
		t.Errorf("max score = %d, want 100 without metrics checks", res.MaxScore)
	}
}

func TestAnalyzeFetchErrorPropagates(t *testing.T) {
	fetchErr := &FetchError{URL: richURL, StatusCode: 403, Kind: ErrAccessDenied}
	obs := &recordingObserver{}
	m := &staticMetrics{}
	_, err := New(&staticFetcher{err: fetchErr}, m, WithObserver(obs)).Analyze(context.Background(), richURL)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v, want access denied", err)
	}
	if m.calls != 0 {
		t.Error("metrics must not be requested when the page fetch fails")
	}
	if len(obs.failed) != 1 {
		t.Error("observer should see the fetch failure")
	}
}

func TestAnalyzeRejectsEmptyURL(t *testing.T) {
	_, err := New(&staticFetcher{}, nil).Analyze(context.Background(), "   ")
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("err = %v, want ErrInvalidURL", err)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"example.com", "https://example.com", false},
		{"http://example.com/a", "http://example.com/a", false},
		{"HTTPS://Example.com", "HTTPS://Example.com", false},
		{"//cdn.example.com/x", "https://cdn.example.com/x", false},
		{"example.com/?next=https://other.com", "https://example.com/?next=https://other.com", false},
		{"example.com/redirect?to=http://x.org", "https://example.com/redirect?to=http://x.org", false},
		{"", "", true},
		{"https://", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeURL(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetcherClassifiesStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.UserAgent(), "GEOAnalyzer") {
			t.Errorf("unexpected user agent %q", r.UserAgent())
		}
		w.Write([]byte("<html><title>ok</title></html>"))
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) })
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetcher(200*time.Millisecond, 3, "")
	ctx := context.Background()

	body, err := f.Fetch(ctx, srv.URL+"/ok")
	if err != nil || !strings.Contains(string(body), "<title>ok</title>") {
		t.Fatalf("ok fetch: %v %q", err, body)
	}

	tests := []struct {
		path string
		want error
	}{
		{"/forbidden", ErrAccessDenied},
		{"/missing", ErrPageNotFound},
		{"/slow", ErrTimeout},
	}
	for _, tt := range tests {
		_, err := f.Fetch(ctx, srv.URL+tt.path)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.path, err, tt.want)
		}
	}

	for _, path := range []string{"/broken", "/loop"} {
		_, err := f.Fetch(ctx, srv.URL+path)
		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("%s: expected FetchError, got %v", path, err)
		}
		for _, kind := range []error{ErrAccessDenied, ErrPageNotFound, ErrTimeout, ErrDomainNotFound} {
			if errors.Is(err, kind) {
				t.Errorf("%s: should be unclassified, matched %v", path, kind)
			}
		}
	}
}

func TestClassifyTransportError(t *testing.T) {
	dns := &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}
	if got := classifyTransportError(dns); got != ErrDomainNotFound {
		t.Errorf("dns error classified as %v", got)
	}
	if got := classifyTransportError(context.DeadlineExceeded); got != ErrTimeout {
		t.Errorf("deadline classified as %v", got)
	}
	if got := classifyTransportError(errors.New("connection reset")); got != nil {
		t.Errorf("generic error classified as %v", got)
	}
}

func TestObserversFanOut(t *testing.T) {
	first, second := &recordingObserver{}, &recordingObserver{}
	obs := Observers(first, nil, second)

	obs.FetchFailed(ErrTimeout)
	obs.AnalysisCompleted(&Analysis{}, false, time.Second)

	for i, o := range []*recordingObserver{first, second} {
		if len(o.failed) != 1 || len(o.completed) != 1 {
			t.Errorf("observer %d: %d failures, %d completions", i, len(o.failed), len(o.completed))
		}
	}
}
