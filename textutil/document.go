package textutil

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Heading is an h1-h4 element found in a document.
type Heading struct {
	Level int
	Text  string
}

// Image is an img element with a src attribute.
type Image struct {
	Src    string
	Alt    string
	HasAlt bool
}

// Link is an anchor with an href attribute.
type Link struct {
	Href     string
	Text     string
	Internal bool
}

// Document is parsed HTML content ready for extraction. A Document is never
// nil and never fails to build; unparseable input yields an empty document.
type Document struct {
	doc *goquery.Document
}

// Parse parses an HTML fragment or full page.
func Parse(content string) *Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return &Document{doc: doc}
}

// Headings returns h1-h4 elements in document order.
func (d *Document) Headings() []Heading {
	var headings []Heading
	d.doc.Find("h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		headings = append(headings, Heading{
			Level: int(name[1] - '0'),
			Text:  collapse(s.Text()),
		})
	})
	return headings
}

// Images returns every img element carrying a src attribute.
func (d *Document) Images() []Image {
	var images []Image
	d.doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, exists := s.Attr("alt")
		alt = strings.TrimSpace(alt)
		images = append(images, Image{
			Src:    strings.TrimSpace(src),
			Alt:    alt,
			HasAlt: exists && alt != "",
		})
	})
	return images
}

// Links returns every anchor with an href, classifying each against siteURL.
func (d *Document) Links(siteURL string) []Link {
	var links []Link
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		links = append(links, Link{
			Href:     href,
			Text:     collapse(s.Text()),
			Internal: IsInternalLink(href, siteURL),
		})
	})
	return links
}

// Paragraphs returns the collapsed text of each non-empty p element.
func (d *Document) Paragraphs() []string {
	var paragraphs []string
	d.doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	return paragraphs
}

// Count returns the number of elements matching a CSS selector.
func (d *Document) Count(selector string) int {
	return d.doc.Find(selector).Length()
}

// StructuredData reports the number of JSON-LD blocks and the distinct schema
// types they declare, in order of first appearance. Blocks that are not valid
// JSON still count as present.
func (d *Document) StructuredData() (blocks int, types []string) {
	seen := make(map[string]bool)
	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		blocks++
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return
		}
		collectSchemaTypes(v, func(t string) {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		})
	})
	return blocks, types
}

func collectSchemaTypes(v any, add func(string)) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			collectSchemaTypes(item, add)
		}
	case map[string]any:
		switch t := node["@type"].(type) {
		case string:
			add(t)
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
		if graph, ok := node["@graph"]; ok {
			collectSchemaTypes(graph, add)
		}
		if entities, ok := node["mainEntity"]; ok {
			collectSchemaTypes(entities, add)
		}
	}
}

// IsInternalLink reports whether href points at the site itself: a root
// relative path, or any URL containing the site origin.
func IsInternalLink(href, siteURL string) bool {
	if strings.HasPrefix(href, "/") {
		return true
	}
	siteURL = strings.TrimSuffix(strings.TrimSpace(siteURL), "/")
	return siteURL != "" && strings.Contains(href, siteURL)
}
