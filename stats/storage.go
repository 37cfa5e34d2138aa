package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/geo-optimizer/backend/analyzer"
	"go.uber.org/zap"
)

const (
	monthLayout   = "2006-01"
	statsFile     = "stats.json"
	flushInterval = 5 * time.Minute
	minWriteGap   = time.Minute
)

// MonthlyStats holds usage counters for one calendar month.
type MonthlyStats struct {
	Analyses           int            `json:"analyses"`
	Grades             map[string]int `json:"grades,omitempty"`
	MetricsAvailable   int            `json:"metrics_available"`
	MetricsUnavailable int            `json:"metrics_unavailable"`
	FetchFailures      int            `json:"fetch_failures"`
	ReportsSent        int            `json:"reports_sent"`
	LastUpdated        time.Time      `json:"last_updated"`
}

func (m MonthlyStats) clone() MonthlyStats {
	if m.Grades != nil {
		grades := make(map[string]int, len(m.Grades))
		for k, v := range m.Grades {
			grades[k] = v
		}
		m.Grades = grades
	}
	return m
}

// Storage keeps monthly counters and persists them to a JSON file in the
// background.
type Storage struct {
	mu        sync.RWMutex
	stats     map[string]*MonthlyStats // key: "YYYY-MM"
	filePath  string
	lastWrite time.Time
	writes    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    *zap.Logger
	now       func() time.Time
}

// NewStorage creates a storage under dataDir and starts its writer.
func NewStorage(dataDir string, logger *zap.Logger) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Storage{
		stats:    make(map[string]*MonthlyStats),
		filePath: filepath.Join(dataDir, statsFile),
		writes:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		logger:   logger,
		now:      time.Now,
	}
	if err := s.load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	s.wg.Add(1)
	go s.backgroundWriter()
	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Unmarshal(data, &s.stats)
}

// Flush writes the counters to disk now.
func (s *Storage) Flush() error {
	s.mu.RLock()
	data, err := json.Marshal(s.stats)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temporary file: %w", err)
	}
	return nil
}

func (s *Storage) backgroundWriter() {
	defer s.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.writes:
		case <-ticker.C:
		case <-s.done:
			return
		}
		if err := s.Flush(); err != nil {
			s.logger.Warn("stats flush failed", zap.Error(err))
		}
	}
}

// Close stops the writer and flushes the counters one last time.
func (s *Storage) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	return s.Flush()
}

func (s *Storage) requestWrite() {
	select {
	case s.writes <- struct{}{}:
	default:
	}
}

// update applies fn to the current month's counters. Callers must not hold mu.
func (s *Storage) update(fn func(*MonthlyStats)) {
	now := s.now()
	month := now.Format(monthLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.stats[month]
	if !ok {
		m = &MonthlyStats{}
		s.stats[month] = m
	}
	fn(m)
	m.LastUpdated = now

	if now.Sub(s.lastWrite) > minWriteGap {
		s.requestWrite()
		s.lastWrite = now
	}
}

// RecordAnalysis counts a completed analysis with its letter grade.
func (s *Storage) RecordAnalysis(grade string, metricsAvailable bool) {
	s.update(func(m *MonthlyStats) {
		m.Analyses++
		if m.Grades == nil {
			m.Grades = make(map[string]int)
		}
		m.Grades[grade]++
		if metricsAvailable {
			m.MetricsAvailable++
		} else {
			m.MetricsUnavailable++
		}
	})
}

// RecordFetchFailure counts an analysis that failed to fetch its page.
func (s *Storage) RecordFetchFailure() {
	s.update(func(m *MonthlyStats) { m.FetchFailures++ })
}

// RecordReport counts a delivered report.
func (s *Storage) RecordReport() {
	s.update(func(m *MonthlyStats) { m.ReportsSent++ })
}

// GetCurrentStats returns the counters for the current month.
func (s *Storage) GetCurrentStats() MonthlyStats {
	m, _ := s.GetMonthlyStats(s.now().Format(monthLayout))
	return m
}

// GetMonthlyStats returns the counters for yearMonth ("YYYY-MM").
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.stats[yearMonth]; ok {
		return m.clone(), true
	}
	return MonthlyStats{}, false
}

// Cleanup drops every month older than the last retainMonths months,
// counting the current one.
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	keep := make(map[string]bool, retainMonths)
	for i := 0; i < retainMonths; i++ {
		keep[first.AddDate(0, -i, 0).Format(monthLayout)] = true
	}

	s.mu.Lock()
	var dropped []string
	for month := range s.stats {
		if !keep[month] {
			delete(s.stats, month)
			dropped = append(dropped, month)
		}
	}
	s.mu.Unlock()

	if len(dropped) > 0 {
		sort.Strings(dropped)
		s.logger.Info("dropped old statistics", zap.Strings("months", dropped))
		s.requestWrite()
	}
}

// GetAllMonths returns every month with statistics, newest first.
func (s *Storage) GetAllMonths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// AnalysisCompleted records a finished analysis.
func (s *Storage) AnalysisCompleted(a *analyzer.Analysis, metricsAvailable bool, _ time.Duration) {
	s.RecordAnalysis(a.Grade, metricsAvailable)
}

// FetchFailed records an analysis whose page could not be fetched.
func (s *Storage) FetchFailed(error) {
	s.RecordFetchFailure()
}
