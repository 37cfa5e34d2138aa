package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const rankOverviewBody = `{"status_code":20000,"tasks":[{"status_code":20000,"result":[{"items":[
 {"rank":1000,"metrics":{"organic":{"etv":12345.5,"count":640}}}]}]}]}`

const instantPagesBody = `{"status_code":20000,"tasks":[{"status_code":20000,"result":[{"items":[
 {"onpage_score":87.4,"page_timing":{"duration_time":1830}}]}]}]}`

const rankedKeywordsBody = `{"status_code":20000,"tasks":[{"status_code":20000,"result":[{"items":[
 {"keyword_data":{"keyword":"low","keyword_info":{"search_volume":10}},"ranked_serp_element":{"serp_item":{"rank_group":3}}},
 {"keyword_data":{"keyword":"too deep","keyword_info":{"search_volume":99999}},"ranked_serp_element":{"serp_item":{"rank_group":11}}},
 {"keyword_data":{"keyword":"top","keyword_info":{"search_volume":5000}},"ranked_serp_element":{"serp_item":{"rank_group":1}}},
 {"keyword_data":{"keyword":"mid","keyword_info":{"search_volume":700}},"ranked_serp_element":{"serp_item":{"rank_group":7}}},
 {"keyword_data":{"keyword":"a","keyword_info":{"search_volume":600}},"ranked_serp_element":{"serp_item":{"rank_group":2}}},
 {"keyword_data":{"keyword":"b","keyword_info":{"search_volume":500}},"ranked_serp_element":{"serp_item":{"rank_group":4}}},
 {"keyword_data":{"keyword":"c","keyword_info":{"search_volume":400}},"ranked_serp_element":{"serp_item":{"rank_group":5}}}
]}]}]}`

func newProviderServer(t *testing.T, handlers map[string]http.HandlerFunc) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "login" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if h, found := handlers[r.URL.Path]; found {
			h(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func body(s string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(s))
	}
}

func TestFetchNotConfigured(t *testing.T) {
	c := NewClient("", "")
	res := c.Fetch(context.Background(), "https://example.com")
	if res.Available {
		t.Fatal("expected unavailable result without credentials")
	}
	if res.Error != ErrNotConfigured.Error() {
		t.Errorf("unexpected error %q", res.Error)
	}
	if res.Metrics != nil {
		t.Error("expected no metrics")
	}
}

func TestFetchAllFacets(t *testing.T) {
	srv, paths := newProviderServer(t, map[string]http.HandlerFunc{
		rankOverviewPath:   body(rankOverviewBody),
		instantPagesPath:   body(instantPagesBody),
		rankedKeywordsPath: body(rankedKeywordsBody),
	})

	var (
		mu       sync.Mutex
		outcomes = map[string]bool{}
	)
	c := NewClient("login", "secret", WithBaseURL(srv.URL), WithObserver(func(facet string, ok bool) {
		mu.Lock()
		outcomes[facet] = ok
		mu.Unlock()
	}))
	res := c.Fetch(context.Background(), "https://www.example.com/post")
	if !res.Available {
		t.Fatalf("expected available, got error %q", res.Error)
	}
	m := res.Metrics

	if m.DomainRank == nil || *m.DomainRank != 1000 {
		t.Errorf("domain rank = %v, want 1000", m.DomainRank)
	}
	if m.OrganicKeywords == nil || *m.OrganicKeywords != 640 {
		t.Errorf("organic keywords = %v, want 640", m.OrganicKeywords)
	}
	if m.OrganicTraffic == nil || *m.OrganicTraffic != 12345.5 {
		t.Errorf("organic traffic = %v", m.OrganicTraffic)
	}
	if m.OnPageScore == nil || *m.OnPageScore != 87.4 {
		t.Errorf("on-page score = %v", m.OnPageScore)
	}
	if m.LoadTimeMs == nil || *m.LoadTimeMs != 1830 {
		t.Errorf("load time = %v", m.LoadTimeMs)
	}

	want := []string{"top", "mid", "a", "b", "c"}
	if len(m.TopKeywords) != len(want) {
		t.Fatalf("got %d keywords, want %d", len(m.TopKeywords), len(want))
	}
	for i, kw := range m.TopKeywords {
		if kw.Keyword != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, kw.Keyword, want[i])
		}
		if kw.Position > maxKeywordRank {
			t.Errorf("keyword %q has position %d", kw.Keyword, kw.Position)
		}
	}

	if len(*paths) != 3 {
		t.Errorf("expected 3 provider calls, got %d", len(*paths))
	}
	for _, facet := range []string{"rank_overview", "on_page", "ranked_keywords"} {
		if !outcomes[facet] {
			t.Errorf("facet %s not reported as ok", facet)
		}
	}
}

func TestFetchFacetsFailIndependently(t *testing.T) {
	srv, _ := newProviderServer(t, map[string]http.HandlerFunc{
		rankOverviewPath: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		instantPagesPath:   body(`{"tasks":[{"status_code":40501,"status_message":"Invalid Field"}]}`),
		rankedKeywordsPath: body(rankedKeywordsBody),
	})

	c := NewClient("login", "secret", WithBaseURL(srv.URL))
	res := c.Fetch(context.Background(), "https://example.com")
	if !res.Available {
		t.Fatal("partial failure must still be available")
	}
	m := res.Metrics
	if m.DomainRank != nil || m.OrganicKeywords != nil {
		t.Error("rank overview should be absent")
	}
	if m.OnPageScore != nil || m.LoadTimeMs != nil {
		t.Error("on-page facet should be absent")
	}
	if len(m.TopKeywords) != topKeywordCount {
		t.Errorf("expected keywords to survive, got %d", len(m.TopKeywords))
	}
}

func TestFetchNoDataIsAvailable(t *testing.T) {
	srv, _ := newProviderServer(t, nil)
	c := NewClient("login", "secret", WithBaseURL(srv.URL))
	res := c.Fetch(context.Background(), "https://example.com")
	if !res.Available {
		t.Fatal("configured provider with no data should be available")
	}
	if !res.Metrics.Empty() {
		t.Errorf("expected empty metrics, got %+v", res.Metrics)
	}
}

func TestFetchSendsBareDomain(t *testing.T) {
	var got string
	srv, _ := newProviderServer(t, map[string]http.HandlerFunc{
		rankOverviewPath: func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			got = string(raw)
			body(rankOverviewBody)(w, r)
		},
	})
	c := NewClient("login", "secret", WithBaseURL(srv.URL))
	c.Fetch(context.Background(), "https://WWW.Example.com/a?b=c")
	if !strings.Contains(got, `"target":"example.com"`) {
		t.Errorf("request body %s does not target bare domain", got)
	}
	if !strings.Contains(got, `"location_code":2840`) {
		t.Errorf("request body %s missing location code", got)
	}
}

func TestBareDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://www.example.com/path", "example.com", false},
		{"http://blog.example.com", "blog.example.com", false},
		{"https://EXAMPLE.com:8443", "example.com", false},
		{"not a url", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := BareDomain(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
