package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/logging"
	"github.com/seo-optimizer/contentscore/metrics"
	"github.com/seo-optimizer/contentscore/middleware"
	"github.com/seo-optimizer/contentscore/page"
	"github.com/seo-optimizer/contentscore/stats"
)

// Source labels for metrics.
const (
	sourceInline = "inline"
	sourceURL    = "url"
)

// CombinedAnalysis is the response of the combined and URL endpoints.
type CombinedAnalysis struct {
	URL      string                    `json:"url,omitempty"`
	Snapshot *analyzer.ContentSnapshot `json:"snapshot,omitempty"`
	SEO      analyzer.SEOAnalysis      `json:"seo"`
	AIO      analyzer.AIOAnalysis      `json:"aio"`
}

type urlRequest struct {
	URL      string   `json:"url" binding:"required,url"`
	Keywords []string `json:"keywords"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) keywordDensity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"min":   analyzer.KeywordDensityMin,
		"max":   analyzer.KeywordDensityMax,
		"label": analyzer.DensityRangeLabel(),
	})
}

func (h *Handler) statistics(c *gin.Context) {
	summary := h.traffic.Summary(h.devMode)
	if h.stats != nil {
		report := h.stats.Report()
		summary.Month = &report
	}
	c.JSON(http.StatusOK, summary)
}

// bindSnapshot decodes the request body into a snapshot, answering 400 or
// 413 itself on failure.
func bindSnapshot(c *gin.Context) (analyzer.ContentSnapshot, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var snap analyzer.ContentSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content snapshot: " + err.Error()})
		}
		return snap, false
	}
	return snap, true
}

func (h *Handler) analyzeSEO(c *gin.Context) {
	snap, ok := bindSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.runSEO(c.Request.Context(), snap, sourceInline))
}

func (h *Handler) analyzeAIO(c *gin.Context) {
	snap, ok := bindSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.runAIO(c.Request.Context(), snap, sourceInline))
}

func (h *Handler) analyzeBoth(c *gin.Context) {
	snap, ok := bindSnapshot(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, CombinedAnalysis{
		SEO: h.runSEO(ctx, snap, sourceInline),
		AIO: h.runAIO(ctx, snap, sourceInline),
	})
}

func (h *Handler) analyzeURL(c *gin.Context) {
	if h.fetcher == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "URL analysis is disabled"})
		return
	}

	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}
	c.Set(middleware.PageURLKey, req.URL)

	ctx := c.Request.Context()
	snap, err := h.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, page.ErrInvalidURL):
			status = http.StatusBadRequest
		case errors.Is(err, page.ErrTooLarge):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		}
		logging.LogRequest(h.logger, c, "page fetch failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()),
		)
		c.JSON(status, gin.H{"error": "Failed to fetch URL: " + err.Error()})
		return
	}

	if kw := cleanKeywords(req.Keywords); len(kw) > 0 {
		snap.Keywords = kw
	}

	c.JSON(http.StatusOK, CombinedAnalysis{
		URL:      req.URL,
		Snapshot: &snap,
		SEO:      h.runSEO(ctx, snap, sourceURL),
		AIO:      h.runAIO(ctx, snap, sourceURL),
	})
}

func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func (h *Handler) runSEO(ctx context.Context, snap analyzer.ContentSnapshot, source string) analyzer.SEOAnalysis {
	_, span := otel.Tracer(tracerName).Start(ctx, "analyze.seo")
	defer span.End()

	result := h.analyzer.AnalyzeSEO(snap)

	span.SetAttributes(
		attribute.Int("analysis.score", result.Score),
		attribute.Int("analysis.issues", len(result.Issues)),
		attribute.Int("content.word_count", result.Readability.WordCount),
		attribute.String("analysis.source", source),
	)
	span.SetStatus(codes.Ok, "")

	h.record(stats.KindSEO, source, result.Score, result.Issues)
	return result
}

func (h *Handler) runAIO(ctx context.Context, snap analyzer.ContentSnapshot, source string) analyzer.AIOAnalysis {
	_, span := otel.Tracer(tracerName).Start(ctx, "analyze.aio")
	defer span.End()

	result := h.analyzer.AnalyzeAIO(snap)

	span.SetAttributes(
		attribute.Int("analysis.score", result.Score),
		attribute.Int("analysis.issues", len(result.Issues)),
		attribute.Int("content.word_count", result.WordCount),
		attribute.String("analysis.source", source),
	)
	span.SetStatus(codes.Ok, "")

	h.record(stats.KindAIO, source, result.Score, result.Issues)
	return result
}

func (h *Handler) record(kind stats.Kind, source string, score int, issues []analyzer.Issue) {
	if h.stats != nil {
		h.stats.RecordAnalysis(kind, score)
	}

	labels := make([]metrics.IssueLabel, len(issues))
	for i, issue := range issues {
		labels[i] = metrics.IssueLabel{Type: string(issue.Type), Severity: string(issue.Severity)}
	}
	h.metrics.ObserveAnalysis(string(kind), source, score, labels)
}
