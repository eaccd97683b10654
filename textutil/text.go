// Package textutil holds the text and markup primitives shared by the SEO and
// AIO scorers: HTML stripping, word, sentence and syllable counting, and
// best-effort extraction of headings, images and links.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+`)
	nonLetterRe    = regexp.MustCompile(`[^a-z]`)
	silentSuffixRe = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	leadingYRe     = regexp.MustCompile(`^y`)
	vowelGroupRe   = regexp.MustCompile(`[aeiouy]+`)
)

// Inline elements do not break words when stripped; everything else does.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "cite": true,
	"code": true, "data": true, "em": true, "i": true, "kbd": true,
	"mark": true, "q": true, "s": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true,
}

// StripHTML removes all markup from s and collapses runs of whitespace into a
// single space. Entities are decoded and the bodies of script and style
// elements are dropped.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapse(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				switch {
				case tt == html.StartTagToken:
					skip++
				case tt == html.EndTagToken && skip > 0:
					skip--
				}
			}
			if !inlineTags[tag] {
				b.WriteByte(' ')
			}
		}
	}
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Words splits plain text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// CountWords returns the number of whitespace separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Sentences splits text on runs of terminal punctuation and drops empty
// fragments.
func Sentences(text string) []string {
	parts := sentenceEndRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// CountSyllables approximates the number of syllables in a single word by
// counting vowel groups. Every word has at least one syllable.
func CountSyllables(word string) int {
	w := nonLetterRe.ReplaceAllString(strings.ToLower(word), "")
	if len(w) <= 3 {
		return 1
	}

	w = silentSuffixRe.ReplaceAllString(w, "")
	w = leadingYRe.ReplaceAllString(w, "")

	if n := len(vowelGroupRe.FindAllString(w, -1)); n > 0 {
		return n
	}
	return 1
}
