package batch

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/feed"
)

const maxLineBytes = 4 << 20

// Item is one unit of work: an inline snapshot or a page URL to fetch.
type Item struct {
	Source   string
	Snapshot *analyzer.ContentSnapshot
	URL      string
}

// ReadSnapshots reads one JSON snapshot per line. Blank lines are skipped;
// a malformed line fails the whole read with its line number.
func ReadSnapshots(r io.Reader) ([]Item, error) {
	var items []Item

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var snap analyzer.ContentSnapshot
		if err := json.Unmarshal([]byte(text), &snap); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, Item{Source: fmt.Sprintf("line:%d", line), Snapshot: &snap})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}
	return items, nil
}

// ReadURLs reads page URLs from a CSV with a "url" header column, or from
// plain text with one URL per line ("#" starts a comment).
func ReadURLs(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read urls: %w", err)
	}

	if urls, err := readCSV(string(data)); err == nil {
		return urlItems(urls), nil
	}

	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if len(urls) == 0 {
		return nil, errors.New("no urls found")
	}
	return urlItems(urls), nil
}

func readCSV(data string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), "url") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, errors.New("csv must contain a 'url' header column")
	}

	var out []string
	for _, row := range rows[1:] {
		if col < len(row) {
			if u := strings.TrimSpace(row[col]); u != "" {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func urlItems(urls []string) []Item {
	items := make([]Item, len(urls))
	for i, u := range urls {
		items[i] = Item{Source: u, URL: u}
	}
	return items
}

// FeedItems turns feed entries into inline items; entries without a link are
// named after their position in the feed.
func FeedItems(feedURL string, entries []feed.Entry) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		snap := e.Snapshot
		source := e.Link
		if source == "" {
			source = fmt.Sprintf("%s#%d", feedURL, i)
		}
		items[i] = Item{Source: source, Snapshot: &snap}
	}
	return items
}
