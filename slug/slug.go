// Package slug normalizes text into URL slugs and compares slugs with
// keywords.
package slug

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorRe = regexp.MustCompile(`[\s_]+`)
	invalidRe   = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphensRe   = regexp.MustCompile(`-+`)
)

// Generate creates a URL-friendly slug from a string
func Generate(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	s = transliterate(s)
	s = separatorRe.ReplaceAllString(s, "-")
	s = invalidRe.ReplaceAllString(s, "")
	s = hyphensRe.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

// transliterate converts unicode characters to ASCII equivalents
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// isMn checks if a rune is a nonspacing mark (accents, diacritics)
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// ContainsKeyword reports whether the normalized slug contains the normalized
// keyword, so "Personal Injury" matches "/personal-injury-lawyer".
func ContainsKeyword(slug, keyword string) bool {
	k := Generate(keyword)
	if k == "" {
		return false
	}
	return strings.Contains(Generate(slug), k)
}

// FromURL returns the last non-empty path segment of a URL, unescaped and
// without a file extension. It returns an empty string for a site root.
func FromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}
	if unescaped, err := url.PathUnescape(last); err == nil {
		last = unescaped
	}
	return last
}
