package page

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/slug"
)

// Extract turns an HTML page into a content snapshot. contentType is the
// response Content-Type and drives charset detection; pageURL supplies the
// slug.
func Extract(data []byte, contentType, pageURL string) (analyzer.ContentSnapshot, error) {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return analyzer.ContentSnapshot{}, fmt.Errorf("decode page: %w", err)
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return analyzer.ContentSnapshot{}, fmt.Errorf("parse page: %w", err)
	}

	snap := analyzer.ContentSnapshot{
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Keywords: metaKeywords(doc),
		Slug:     slug.FromURL(pageURL),
	}
	if snap.Title == "" {
		snap.Title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}

	snap.Description = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if snap.Description == "" {
		snap.Description = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}

	// JSON-LD often lives in <head>; keep it with the body so structured
	// data is still counted.
	var jsonLD []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if html, err := goquery.OuterHtml(s); err == nil {
			jsonLD = append(jsonLD, html)
		}
		s.Remove()
	})
	doc.Find("script, noscript, style, template").Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	body, err := root.Html()
	if err != nil {
		return analyzer.ContentSnapshot{}, fmt.Errorf("render page body: %w", err)
	}
	snap.Content = strings.TrimSpace(strings.Join(jsonLD, "") + body)

	return snap, nil
}

func metaKeywords(doc *goquery.Document) []string {
	keywords := []string{}
	seen := make(map[string]bool)

	raw := doc.Find(`meta[name="keywords"]`).AttrOr("content", "")
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		key := strings.ToLower(k)
		if k == "" || seen[key] {
			continue
		}
		seen[key] = true
		keywords = append(keywords, k)
	}
	return keywords
}
