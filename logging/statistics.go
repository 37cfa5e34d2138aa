package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

const (
	statisticsFile  = "statistics.json"
	visitorWindow   = 24 * time.Hour
	popularDomainsN = 5
)

// Statistics collects request-level usage of the service. Only hostnames of
// analyzed pages are kept; analyses themselves are never stored.
type Statistics struct {
	UniqueVisitors   map[string]time.Time `json:"uniqueVisitors"`
	TotalRequests    int                  `json:"totalRequests"`
	AnalysisRequests int                  `json:"analysisRequests"`
	ErrorCount       int                  `json:"errorCount"`
	ReportsSent      int                  `json:"reportsSent"`
	PopularDomains   map[string]int       `json:"popularDomains"`
	TotalLoadTime    float64              `json:"totalLoadTime"`
	LastPersisted    time.Time            `json:"lastPersisted"`

	path    string
	devMode bool
	now     func() time.Time
	mu      sync.RWMutex
	saveMu  sync.Mutex
}

// Snapshot is the public view served by the statistics endpoint.
type Snapshot struct {
	UniqueVisitors24h int           `json:"uniqueVisitors24h"`
	TotalRequests     int           `json:"totalRequests"`
	AnalysisRequests  int           `json:"analysisRequests"`
	ReportsSent       int           `json:"reportsSent"`
	ErrorRate         float64       `json:"errorRate"`
	AverageLoadTime   float64       `json:"averageLoadTime"`
	PopularDomains    []DomainCount `json:"popularDomains,omitempty"`
}

// DomainCount is one entry of the popular domains list.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// NewStatistics creates statistics persisted under dataDir, loading any
// previous snapshot. An empty dataDir keeps them in memory only. In dev mode
// the snapshot includes popular domains.
func NewStatistics(dataDir string, devMode bool) (*Statistics, error) {
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularDomains: make(map[string]int),
		devMode:        devMode,
		now:            time.Now,
	}
	if dataDir == "" {
		return s, nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s.path = filepath.Join(dataDir, statisticsFile)
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// TrackVisitor records a visit from ip and counts the request.
func (s *Statistics) TrackVisitor(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.UniqueVisitors[ip] = s.now()
	s.TotalRequests++
}

// Requests returns the number of requests counted so far.
func (s *Statistics) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TotalRequests
}

// TrackAnalysis records an analysis request for pageURL.
func (s *Statistics) TrackAnalysis(pageURL string, loadTime time.Duration, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.AnalysisRequests++
	if domain := domainOf(pageURL); domain != "" {
		s.PopularDomains[domain]++
	}
	if failed {
		s.ErrorCount++
	}
	s.TotalLoadTime += float64(loadTime.Milliseconds())
}

// TrackReport records a delivered report.
func (s *Statistics) TrackReport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReportsSent++
}

// domainOf reduces a page URL to its hostname. Local and API addresses are
// not tracked.
func domainOf(raw string) string {
	if raw == "" {
		return ""
	}
	if !schemePattern.MatchString(raw) {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" || host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return ""
	}
	return host
}

// Snapshot returns the current statistics.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		UniqueVisitors24h: s.uniqueVisitors(),
		TotalRequests:     s.TotalRequests,
		AnalysisRequests:  s.AnalysisRequests,
		ReportsSent:       s.ReportsSent,
	}
	if s.AnalysisRequests > 0 {
		snap.ErrorRate = float64(s.ErrorCount) / float64(s.AnalysisRequests) * 100
		snap.AverageLoadTime = s.TotalLoadTime / float64(s.AnalysisRequests)
	}
	if s.devMode {
		snap.PopularDomains = s.popularDomains(popularDomainsN)
	}
	return snap
}

func (s *Statistics) uniqueVisitors() int {
	cutoff := s.now().Add(-visitorWindow)
	count := 0
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

func (s *Statistics) popularDomains(n int) []DomainCount {
	out := make([]DomainCount, 0, len(s.PopularDomains))
	for domain, count := range s.PopularDomains {
		out = append(out, DomainCount{Domain: domain, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Prune forgets visitors not seen within the last 24 hours.
func (s *Statistics) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-visitorWindow)
	for ip, lastVisit := range s.UniqueVisitors {
		if !lastVisit.After(cutoff) {
			delete(s.UniqueVisitors, ip)
		}
	}
}

// Save persists the statistics to the data directory.
func (s *Statistics) Save() error {
	if s.path == "" {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.LastPersisted = s.now()
	data, err := json.Marshal(s)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode statistics: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace statistics: %w", err)
	}
	return nil
}

func (s *Statistics) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read statistics: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularDomains == nil {
		s.PopularDomains = make(map[string]int)
	}
	return nil
}
