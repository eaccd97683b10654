package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/metrics"
	"github.com/seo-optimizer/contentscore/middleware"
	"github.com/seo-optimizer/contentscore/page"
	"github.com/seo-optimizer/contentscore/stats"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var sampleSnapshot = analyzer.ContentSnapshot{
	Title:       "Family Law Basics: Custody, Support and Divorce",
	Description: "Learn how family law handles custody and support.",
	Content:     `<h1>Family Law Basics</h1><h2>Custody</h2><p>Family law covers custody. <a href="/contact">Contact us</a>.</p>`,
	Keywords:    []string{"family law"},
	Slug:        "family-law-basics",
}

type fakeFetcher struct {
	snap analyzer.ContentSnapshot
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (analyzer.ContentSnapshot, error) {
	f.urls = append(f.urls, pageURL)
	return f.snap, f.err
}

type testEnv struct {
	handler  http.Handler
	analyzer *analyzer.Analyzer
	stats    *stats.Storage
	traffic  *stats.Traffic
	fetcher  *fakeFetcher
}

func newTestEnv(t *testing.T, devMode bool) *testEnv {
	t.Helper()

	storage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { storage.Shutdown() })

	env := &testEnv{
		analyzer: analyzer.New(analyzer.Config{SiteURL: "https://example.com"}),
		stats:    storage,
		traffic:  stats.NewTraffic(),
		fetcher:  &fakeFetcher{snap: sampleSnapshot},
	}
	env.handler = NewHandler(Deps{
		Analyzer: env.analyzer,
		Fetcher:  env.fetcher,
		Stats:    storage,
		Traffic:  env.traffic,
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		DevMode:  devMode,
	})
	return env
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// roundTrip normalizes v through JSON so it compares equal to a decoded
// response.
func roundTrip(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestAnalyzeSEOEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodPost, "/api/analyze/seo", sampleSnapshot)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, roundTrip(t, env.analyzer.AnalyzeSEO(sampleSnapshot)), decode(t, w))
	assert.Equal(t, 1, env.stats.GetCurrentStats().SEOAnalyses)
}

func TestAnalyzeAIOEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodPost, "/api/analyze/aio", sampleSnapshot)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, roundTrip(t, env.analyzer.AnalyzeAIO(sampleSnapshot)), decode(t, w))
	assert.Equal(t, 1, env.stats.GetCurrentStats().AIOAnalyses)
}

func TestAnalyzeCombinedEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodPost, "/api/analyze", sampleSnapshot)

	require.Equal(t, http.StatusOK, w.Code)
	expected := roundTrip(t, CombinedAnalysis{
		SEO: env.analyzer.AnalyzeSEO(sampleSnapshot),
		AIO: env.analyzer.AnalyzeAIO(sampleSnapshot),
	})
	assert.Equal(t, expected, decode(t, w))
}

func TestAnalyzeEmptySnapshot(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodPost, "/api/analyze/seo", "{}")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(35), decode(t, w)["score"])
}

func TestAnalyzeRejectsBadBodies(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodPost, "/api/analyze/seo", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Invalid content snapshot")

	huge := fmt.Sprintf(`{"content":%q}`, strings.Repeat("a", maxBodyBytes+1))
	w = env.do(http.MethodPost, "/api/analyze/aio", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAnalyzeURLEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(http.MethodPost, "/api/analyze/url", map[string]any{
		"url":      "https://example.com/blog/family-law-basics",
		"keywords": []string{" custody ", ""},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"https://example.com/blog/family-law-basics"}, env.fetcher.urls)

	snap := sampleSnapshot
	snap.Keywords = []string{"custody"}
	expected := roundTrip(t, CombinedAnalysis{
		URL:      "https://example.com/blog/family-law-basics",
		Snapshot: &snap,
		SEO:      env.analyzer.AnalyzeSEO(snap),
		AIO:      env.analyzer.AnalyzeAIO(snap),
	})
	assert.Equal(t, expected, decode(t, w))

	summary := env.traffic.Summary(true)
	assert.Equal(t, []stats.URLCount{{URL: "https://example.com/blog/family-law-basics", Count: 1}}, summary.PopularURLs)
}

func TestAnalyzeURLErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		err      error
		expected int
	}{
		{"missing url", map[string]any{}, nil, http.StatusBadRequest},
		{"malformed url", map[string]any{"url": "not a url"}, nil, http.StatusBadRequest},
		{"invalid scheme", map[string]any{"url": "ftp://example.com/x"}, page.ErrInvalidURL, http.StatusBadRequest},
		{"upstream status", map[string]any{"url": "https://example.com/x"}, &page.StatusError{StatusCode: 404}, http.StatusBadGateway},
		{"too large", map[string]any{"url": "https://example.com/x"}, page.ErrTooLarge, http.StatusUnprocessableEntity},
		{"timeout", map[string]any{"url": "https://example.com/x"}, fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)
			env.fetcher.err = tt.err

			w := env.do(http.MethodPost, "/api/analyze/url", tt.body)

			assert.Equal(t, tt.expected, w.Code)
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestAnalyzeURLDisabledWithoutFetcher(t *testing.T) {
	handler := NewHandler(Deps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/url", strings.NewReader(`{"url":"https://example.com"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestKeywordDensityConfig(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodGet, "/api/config/keyword-density", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"min": 0.5, "max": 3.0, "label": "0.5-3%"}, decode(t, w))
}

func TestStatisticsHidesURLsOutsideDevMode(t *testing.T) {
	for _, devMode := range []bool{false, true} {
		env := newTestEnv(t, devMode)
		env.do(http.MethodPost, "/api/analyze/url", map[string]any{"url": "https://example.com/post"})

		w := env.do(http.MethodGet, "/api/statistics", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(1), body["totalRequests"])
		assert.Equal(t, float64(1), body["uniqueVisitors24h"])
		_, hasURLs := body["popularUrls"]
		assert.Equal(t, devMode, hasURLs, "dev mode %v", devMode)

		month := body["month"].(map[string]any)
		assert.Equal(t, float64(1), month["seoAnalyses"])
		assert.Equal(t, float64(1), month["aioAnalyses"])
	}
}

func TestRateLimitAppliesToAnalysis(t *testing.T) {
	handler := NewHandler(Deps{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:     metrics.New(prometheus.NewRegistry()),
		RateLimiter: middleware.NewRateLimiter(0.001, 1),
	})

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze/seo", strings.NewReader("{}"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}
	get := func() int {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
	assert.Equal(t, http.StatusOK, get())
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze/seo", nil)
	req.Header.Set("Origin", "https://editor.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(http.MethodPost, "/api/analyze/seo", sampleSnapshot)

	w := env.do(http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `contentscore_analyses_total{kind="seo",source="inline"} 1`)
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(http.MethodGet, "/api/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalysisSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	env := newTestEnv(t, false)
	w := env.do(http.MethodPost, "/api/analyze", sampleSnapshot)
	require.Equal(t, http.StatusOK, w.Code)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range recorder.Ended() {
		byName[span.Name()] = span
	}
	require.Contains(t, byName, "analyze.seo")
	require.Contains(t, byName, "analyze.aio")
	require.Contains(t, byName, "POST /api/analyze")

	seo := byName["analyze.seo"]
	server := byName["POST /api/analyze"]
	assert.Equal(t, server.SpanContext().TraceID(), seo.SpanContext().TraceID())
	assert.Equal(t, server.SpanContext().SpanID(), seo.Parent().SpanID())

	score := env.analyzer.AnalyzeSEO(sampleSnapshot).Score
	assert.Contains(t, seo.Attributes(), attribute.Int("analysis.score", score))
}
