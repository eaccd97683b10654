package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanURL(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"https://example.com/blog/post/?utm=1", "https://example.com/blog/post"},
		{"https://example.com/", "https://example.com"},
		{"http://localhost:8082/page", ""},
		{"https://example.com/api/analyze", ""},
		{"not a url", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, cleanURL(tt.in), tt.in)
	}
}

func TestTrafficSummary(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tr := NewTraffic()
	tr.now = func() time.Time { return now }

	tr.TrackVisitor("10.0.0.1")
	tr.TrackVisitor("10.0.0.2")
	tr.uniqueVisitors["10.0.0.3"] = now.Add(-48 * time.Hour)

	tr.TrackAnalysis("https://example.com/a", 100, false)
	tr.TrackAnalysis("https://example.com/a", 200, true)
	tr.TrackAnalysis("https://example.com/b", 300, false)
	tr.TrackAnalysis("", 400, false)

	s := tr.Summary(false)
	assert.Equal(t, 2, s.UniqueVisitors24h)
	assert.Equal(t, 4, s.TotalRequests)
	assert.Equal(t, 25.0, s.ErrorRate)
	assert.Equal(t, 250.0, s.AverageLoadTime)
	assert.Nil(t, s.PopularURLs)

	s = tr.Summary(true)
	assert.Equal(t, []URLCount{
		{URL: "https://example.com/a", Count: 2},
		{URL: "https://example.com/b", Count: 1},
	}, s.PopularURLs)

	assert.Equal(t, 1, tr.PruneVisitors(24*time.Hour))
	assert.Len(t, tr.uniqueVisitors, 2)
}

func TestTrafficSummaryEmpty(t *testing.T) {
	s := NewTraffic().Summary(true)

	assert.Zero(t, s.ErrorRate)
	assert.Zero(t, s.AverageLoadTime)
	assert.Empty(t, s.PopularURLs)
}
