package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/seo-optimizer/contentscore/analyzer"
)

// Mode selects which rubrics run.
type Mode string

const (
	ModeSEO  Mode = "seo"
	ModeAIO  Mode = "aio"
	ModeBoth Mode = "both"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSEO, ModeAIO, ModeBoth:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want seo, aio or both)", s)
	}
}

// Fetcher loads page URLs; *page.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (analyzer.ContentSnapshot, error)
}

// Result is one output record.
type Result struct {
	Source string                `json:"source"`
	Title  string                `json:"title,omitempty"`
	SEO    *analyzer.SEOAnalysis `json:"seo,omitempty"`
	AIO    *analyzer.AIOAnalysis `json:"aio,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// Runner analyzes items with a bounded number of workers.
type Runner struct {
	Analyzer    *analyzer.Analyzer
	Fetcher     Fetcher
	Mode        Mode
	Concurrency int
	Logger      *slog.Logger
}

// Run processes items and returns results in input order. Items that fail
// to fetch carry an error instead of analyses; Run itself only fails when
// ctx is cancelled.
func (r *Runner) Run(ctx context.Context, items []Item) ([]Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]Result, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < max(r.Concurrency, 1); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.process(ctx, items[i])
				if results[i].Error != "" {
					logger.Warn("batch item failed", "source", items[i].Source, "error", results[i].Error)
				}
			}
		}()
	}

dispatch:
	for i := range items {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}
	return results, nil
}

func (r *Runner) process(ctx context.Context, item Item) Result {
	res := Result{Source: item.Source}

	var snap analyzer.ContentSnapshot
	switch {
	case item.Snapshot != nil:
		snap = *item.Snapshot
	case r.Fetcher == nil:
		res.Error = "no fetcher configured for url input"
		return res
	default:
		var err error
		snap, err = r.Fetcher.Fetch(ctx, item.URL)
		if err != nil {
			res.Error = err.Error()
			return res
		}
	}

	res.Title = snap.Title
	if r.Mode != ModeAIO {
		seo := r.Analyzer.AnalyzeSEO(snap)
		res.SEO = &seo
	}
	if r.Mode != ModeSEO {
		aio := r.Analyzer.AnalyzeAIO(snap)
		res.AIO = &aio
	}
	return res
}

// WriteNDJSON writes one JSON record per line.
func WriteNDJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}
