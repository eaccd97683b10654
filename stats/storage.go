package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Kind names an analysis rubric.
type Kind string

const (
	KindSEO Kind = "seo"
	KindAIO Kind = "aio"
)

// MonthlyStats represents statistics for a specific month
type MonthlyStats struct {
	SEOAnalyses      int       `json:"seo_analyses"`
	SEOScoreSum      int       `json:"seo_score_sum"`
	AIOAnalyses      int       `json:"aio_analyses"`
	AIOScoreSum      int       `json:"aio_score_sum"`
	FetchCacheHits   int       `json:"fetch_hits"`
	FetchCacheMisses int       `json:"fetch_misses"`
	FetchErrors      int       `json:"fetch_errors"`
	LastUpdated      time.Time `json:"last_updated"`
}

// AverageSEOScore returns the mean SEO score of the month, 0 when empty.
func (m MonthlyStats) AverageSEOScore() float64 {
	if m.SEOAnalyses == 0 {
		return 0
	}
	return float64(m.SEOScoreSum) / float64(m.SEOAnalyses)
}

// AverageAIOScore returns the mean AIO score of the month, 0 when empty.
func (m MonthlyStats) AverageAIOScore() float64 {
	if m.AIOAnalyses == 0 {
		return 0
	}
	return float64(m.AIOScoreSum) / float64(m.AIOAnalyses)
}

// Storage handles persistent storage of statistics
type Storage struct {
	mutex       sync.RWMutex
	saveMu      sync.Mutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	closeOnce   sync.Once
	now         func() time.Time
}

// NewStorage creates a new statistics storage instance
func NewStorage(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		now:         time.Now,
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

// save writes statistics to file via a temp file and rename
func (s *Storage) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (s *Storage) backgroundWriter() {
	defer close(s.stopped)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
		case <-ticker.C:
		case <-s.done:
			return
		}
		if err := s.save(); err != nil {
			slog.Error("failed to persist statistics", "error", err, "path", s.filePath)
		}
	}
}

func (s *Storage) currentMonth() string {
	return s.now().Format("2006-01")
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// write already pending
	}
}

// update applies fn to the current month under the lock and schedules a
// write at most once a minute.
func (s *Storage) update(fn func(*MonthlyStats)) {
	month := s.currentMonth()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{}
		s.stats[month] = stats
	}
	fn(stats)
	stats.LastUpdated = s.now()

	if s.now().Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = s.now()
	}
}

// RecordAnalysis counts one analysis of the given kind and its score.
func (s *Storage) RecordAnalysis(kind Kind, score int) {
	s.update(func(m *MonthlyStats) {
		switch kind {
		case KindSEO:
			m.SEOAnalyses++
			m.SEOScoreSum += score
		case KindAIO:
			m.AIOAnalyses++
			m.AIOScoreSum += score
		}
	})
}

// IncrementFetch adds page cache hits, misses and failed fetches.
func (s *Storage) IncrementFetch(hits, misses, errors int) {
	s.update(func(m *MonthlyStats) {
		m.FetchCacheHits += hits
		m.FetchCacheMisses += misses
		m.FetchErrors += errors
	})
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	month := s.currentMonth()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[month]; exists {
		return *stats
	}
	return MonthlyStats{}
}

// Cleanup removes statistics older than retainMonths months before the
// current one. The current month is always kept.
func (s *Storage) Cleanup(retainMonths int) {
	now := s.now()
	keep := make(map[string]bool, retainMonths+1)
	for i := 0; i <= max(retainMonths, 0); i++ {
		keep[now.AddDate(0, -i, 0).Format("2006-01")] = true
	}

	s.mutex.Lock()
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
		}
	}
	s.mutex.Unlock()

	s.requestWrite()
	slog.Debug("statistics cleanup done", "retain_months", retainMonths)
}

// GetMonthlyStats returns statistics for a specific month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return *stats, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths returns all months that have statistics, newest first
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}

// Shutdown stops the background writer and flushes to disk. It is safe to
// call more than once.
func (s *Storage) Shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
		err = s.save()
	})
	return err
}
