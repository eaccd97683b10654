package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/batch"
	"github.com/seo-optimizer/contentscore/config"
	"github.com/seo-optimizer/contentscore/feed"
	"github.com/seo-optimizer/contentscore/logging"
	"github.com/seo-optimizer/contentscore/page"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	var (
		snapshots   = flag.String("input", "", "NDJSON file of content snapshots (\"-\" for stdin)")
		urls        = flag.String("urls", "", "CSV with a 'url' column, or text file with one URL per line")
		feedURL     = flag.String("feed", "", "RSS/Atom feed URL whose items are analyzed")
		out         = flag.String("output", "", "output NDJSON file (default stdout)")
		mode        = flag.String("mode", string(batch.ModeBoth), "analyses to run: seo, aio or both")
		concurrency = flag.Int("concurrency", 4, "worker concurrency")
		siteURL     = flag.String("site-url", cfg.SiteURL, "site origin for internal links (env: SITE_URL)")
		logLevel    = flag.String("log-level", cfg.LogLevel, "log level (env: LOG_LEVEL)")
	)
	flag.Parse()

	logger := logging.New(os.Stderr, *logLevel, "text")

	m, err := batch.ParseMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	sources := 0
	for _, s := range []string{*snapshots, *urls, *feedURL} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		fmt.Fprintln(os.Stderr, "exactly one of --input, --urls or --feed is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var items []batch.Item
	switch {
	case *snapshots != "":
		items, err = readFile(*snapshots, batch.ReadSnapshots)
	case *urls != "":
		items, err = readFile(*urls, batch.ReadURLs)
	default:
		items, err = readFeed(ctx, *feedURL)
	}
	if err != nil {
		logger.Error("failed to read input", "error", err)
		os.Exit(1)
	}
	logger.Info("batch starting", "items", len(items), "mode", m, "concurrency", *concurrency)

	fetcher := page.NewFetcher(page.Options{Timeout: cfg.FetchTimeout, CacheTTL: cfg.FetchCacheTTL})
	defer fetcher.Close()

	runner := &batch.Runner{
		Analyzer:    analyzer.New(analyzer.Config{SiteURL: *siteURL}),
		Fetcher:     fetcher,
		Mode:        m,
		Concurrency: *concurrency,
		Logger:      logger,
	}
	results, err := runner.Run(ctx, items)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	w := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("failed to create output", "error", err, "path", *out)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := batch.WriteNDJSON(w, results); err != nil {
		logger.Error("failed to write results", "error", err)
		os.Exit(1)
	}
	logger.Info("batch done", "results", len(results))
}

func readFile(path string, read func(io.Reader) ([]batch.Item, error)) ([]batch.Item, error) {
	if path == "-" {
		return read(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f)
}

func readFeed(ctx context.Context, feedURL string) ([]batch.Item, error) {
	entries, err := feed.NewReader(nil).Read(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return batch.FeedItems(feedURL, entries), nil
}
