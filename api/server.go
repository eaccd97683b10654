package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/logging"
	"github.com/seo-optimizer/contentscore/metrics"
	"github.com/seo-optimizer/contentscore/middleware"
	"github.com/seo-optimizer/contentscore/stats"
)

const tracerName = "github.com/seo-optimizer/contentscore/api"

// maxBodyBytes bounds analysis request bodies.
const maxBodyBytes = 2 << 20

// PageFetcher loads a page as a snapshot; *page.Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (analyzer.ContentSnapshot, error)
}

// Deps are the collaborators of the HTTP API. Stats and Fetcher may be nil;
// the statistics and URL endpoints then degrade accordingly.
type Deps struct {
	Analyzer    *analyzer.Analyzer
	Fetcher     PageFetcher
	Stats       *stats.Storage
	Traffic     *stats.Traffic
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
	DevMode     bool
}

// Handler serves the analysis API.
type Handler struct {
	analyzer *analyzer.Analyzer
	fetcher  PageFetcher
	stats    *stats.Storage
	traffic  *stats.Traffic
	metrics  *metrics.Metrics
	logger   *slog.Logger
	devMode  bool
}

// NewHandler builds the gin engine with middleware and routes, wrapped with
// CORS.
func NewHandler(deps Deps) http.Handler {
	if deps.Analyzer == nil {
		deps.Analyzer = analyzer.New(analyzer.Config{})
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Traffic == nil {
		deps.Traffic = stats.NewTraffic()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}

	h := &Handler{
		analyzer: deps.Analyzer,
		fetcher:  deps.Fetcher,
		stats:    deps.Stats,
		traffic:  deps.Traffic,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		devMode:  deps.DevMode,
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Tracing(tracerName),
		logging.RequestLogger(deps.Logger),
		middleware.ErrorHandler(deps.Logger),
		middleware.Stats(deps.Metrics, deps.Traffic),
	)

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/statistics", h.statistics)
		api.GET("/config/keyword-density", h.keywordDensity)

		analyze := api.Group("/analyze")
		if deps.RateLimiter != nil {
			analyze.Use(deps.RateLimiter.RateLimit())
		}
		analyze.POST("", h.analyzeBoth)
		analyze.POST("/seo", h.analyzeSEO)
		analyze.POST("/aio", h.analyzeAIO)
		analyze.POST("/url", h.analyzeURL)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         600,
	})

	return c.Handler(r)
}
