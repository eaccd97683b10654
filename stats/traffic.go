package stats

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Traffic tracks request-level figures for the statistics endpoint: unique
// visitors, analysis requests, error rate, average latency and the most
// analyzed pages.
type Traffic struct {
	mutex            sync.RWMutex
	uniqueVisitors   map[string]time.Time // IP -> last visit
	analysisRequests int
	errorCount       int
	popularURLs      map[string]int
	totalLoadTime    float64
	now              func() time.Time
}

// NewTraffic creates an empty tracker.
func NewTraffic() *Traffic {
	return &Traffic{
		uniqueVisitors: make(map[string]time.Time),
		popularURLs:    make(map[string]int),
		now:            time.Now,
	}
}

// TrackVisitor records a visit from ip.
func (t *Traffic) TrackVisitor(ip string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.uniqueVisitors[ip] = t.now()
}

// cleanURL reduces a page URL to scheme, host and path. Local hosts and API
// paths yield "".
func cleanURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	clean := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		clean += u.Path
	}
	return strings.TrimSuffix(clean, "/")
}

// TrackAnalysis records one analysis request. pageURL is the analyzed page,
// if any; loadTime is in milliseconds.
func (t *Traffic) TrackAnalysis(pageURL string, loadTime float64, hasError bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.analysisRequests++
	if cleaned := cleanURL(pageURL); cleaned != "" {
		t.popularURLs[cleaned]++
	}
	if hasError {
		t.errorCount++
	}
	t.totalLoadTime += loadTime
}

// Summary is the public view of Traffic.
type Summary struct {
	UniqueVisitors24h int            `json:"uniqueVisitors24h"`
	TotalRequests     int            `json:"totalRequests"`
	ErrorRate         float64        `json:"errorRate"`
	AverageLoadTime   float64        `json:"averageLoadTime"`
	PopularURLs       []URLCount     `json:"popularUrls,omitempty"`
	Month             *MonthlyReport `json:"month,omitempty"`
}

// URLCount is one entry of the popular pages list.
type URLCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// MonthlyReport summarizes the current month of persisted counters.
type MonthlyReport struct {
	Month            string  `json:"month"`
	SEOAnalyses      int     `json:"seoAnalyses"`
	AIOAnalyses      int     `json:"aioAnalyses"`
	AverageSEOScore  float64 `json:"averageSeoScore"`
	AverageAIOScore  float64 `json:"averageAioScore"`
	FetchCacheHits   int     `json:"fetchCacheHits"`
	FetchCacheMisses int     `json:"fetchCacheMisses"`
	FetchErrors      int     `json:"fetchErrors"`
}

// Summary returns the current figures. Popular pages are only listed when
// includeURLs is set, since they reveal what users analyze.
func (t *Traffic) Summary(includeURLs bool) Summary {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	s := Summary{TotalRequests: t.analysisRequests}

	cutoff := t.now().Add(-24 * time.Hour)
	for _, lastVisit := range t.uniqueVisitors {
		if lastVisit.After(cutoff) {
			s.UniqueVisitors24h++
		}
	}

	if t.analysisRequests > 0 {
		s.ErrorRate = float64(t.errorCount) / float64(t.analysisRequests) * 100
		s.AverageLoadTime = t.totalLoadTime / float64(t.analysisRequests)
	}

	if includeURLs {
		s.PopularURLs = t.topURLs(5)
	}
	return s
}

// topURLs returns the n most analyzed pages, ties broken by URL. Callers hold
// the read lock.
func (t *Traffic) topURLs(n int) []URLCount {
	all := make([]URLCount, 0, len(t.popularURLs))
	for u, count := range t.popularURLs {
		all = append(all, URLCount{URL: u, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].URL < all[j].URL
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Report builds the monthly report for the current month.
func (s *Storage) Report() MonthlyReport {
	m := s.GetCurrentStats()
	return MonthlyReport{
		Month:            s.currentMonth(),
		SEOAnalyses:      m.SEOAnalyses,
		AIOAnalyses:      m.AIOAnalyses,
		AverageSEOScore:  m.AverageSEOScore(),
		AverageAIOScore:  m.AverageAIOScore(),
		FetchCacheHits:   m.FetchCacheHits,
		FetchCacheMisses: m.FetchCacheMisses,
		FetchErrors:      m.FetchErrors,
	}
}

// PruneVisitors forgets visitors not seen for longer than maxAge.
func (t *Traffic) PruneVisitors(maxAge time.Duration) int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	cutoff := t.now().Add(-maxAge)
	removed := 0
	for ip, lastVisit := range t.uniqueVisitors {
		if lastVisit.Before(cutoff) {
			delete(t.uniqueVisitors, ip)
			removed++
		}
	}
	return removed
}
