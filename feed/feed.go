package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/slug"
	"github.com/seo-optimizer/contentscore/textutil"
)

// Entry is one feed item converted to a snapshot.
type Entry struct {
	Link      string                   `json:"link"`
	Published *time.Time               `json:"published,omitempty"`
	Snapshot  analyzer.ContentSnapshot `json:"snapshot"`
}

// Reader loads RSS, Atom and JSON feeds.
type Reader struct {
	parser *gofeed.Parser
}

// NewReader creates a Reader. A nil client uses a client with a 15s timeout.
func NewReader(client *http.Client) *Reader {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "ContentScore/1.0"
	return &Reader{parser: parser}
}

// Read fetches and parses the feed at feedURL.
func (r *Reader) Read(ctx context.Context, feedURL string) ([]Entry, error) {
	f, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", feedURL, err)
	}
	return entries(f), nil
}

// Parse parses a feed document.
func (r *Reader) Parse(in io.Reader) ([]Entry, error) {
	f, err := r.parser.Parse(in)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return entries(f), nil
}

func entries(f *gofeed.Feed) []Entry {
	out := make([]Entry, 0, len(f.Items))
	for _, item := range f.Items {
		if item == nil {
			continue
		}
		out = append(out, Entry{
			Link:      item.Link,
			Published: item.PublishedParsed,
			Snapshot:  snapshot(item),
		})
	}
	return out
}

func snapshot(item *gofeed.Item) analyzer.ContentSnapshot {
	summary := textutil.StripHTML(item.Description)

	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}

	keywords := make([]string, 0, len(item.Categories))
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			keywords = append(keywords, c)
		}
	}

	s := slug.FromURL(item.Link)
	if s == "" {
		s = slug.Generate(item.Title)
	}

	return analyzer.ContentSnapshot{
		Title:    strings.TrimSpace(item.Title),
		Content:  content,
		Keywords: keywords,
		Slug:     s,
		Excerpt:  summary,
	}
}
