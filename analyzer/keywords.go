package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seo-optimizer/contentscore/textutil"
)

// Optimal keyword density range, in percent. Scoring and every consumer that
// displays an "optimal" badge must read these instead of hard-coding a range.
const (
	KeywordDensityMin = 0.5
	KeywordDensityMax = 3.0
)

// IsOptimalDensity reports whether density (percent) is inside the optimal
// range, bounds included.
func IsOptimalDensity(density float64) bool {
	return density >= KeywordDensityMin && density <= KeywordDensityMax
}

// DensityRangeLabel renders the optimal range for messages, e.g. "0.5-3%".
func DensityRangeLabel() string {
	return fmt.Sprintf("%g-%g%%", KeywordDensityMin, KeywordDensityMax)
}

// AnalyzeKeywordDensity counts whole-word, case-insensitive occurrences of
// each keyword in plain text. Results keep the order of keywords.
func AnalyzeKeywordDensity(text string, keywords []string) []KeywordAnalysis {
	total := textutil.CountWords(text)

	results := make([]KeywordAnalysis, 0, len(keywords))
	for _, kw := range keywords {
		results = append(results, analyzeKeyword(text, kw, total))
	}
	return results
}

func analyzeKeyword(text, keyword string, totalWords int) KeywordAnalysis {
	ka := KeywordAnalysis{
		Keyword:   keyword,
		Positions: []int{},
	}

	term := strings.TrimSpace(keyword)
	if term == "" {
		return ka
	}

	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(term))
	if err != nil {
		return ka
	}

	// byte offsets to character offsets, walking forward once
	lastByte, lastRune := 0, 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if !atWordBoundary(text, loc[0]) || !atWordBoundary(text, loc[1]) {
			continue
		}
		lastRune += utf8.RuneCountInString(text[lastByte:loc[0]])
		lastByte = loc[0]
		ka.Positions = append(ka.Positions, lastRune)
	}

	ka.Count = len(ka.Positions)
	raw := densityPercent(ka.Count, totalWords)
	ka.Density = round2(raw)
	ka.Optimal = IsOptimalDensity(raw)

	return ka
}

// atWordBoundary reports a \b boundary at byte i, counting Unicode letters
// and digits as word characters.
func atWordBoundary(s string, i int) bool {
	var before, after rune = -1, -1
	if i > 0 {
		before, _ = utf8.DecodeLastRuneInString(s[:i])
	}
	if i < len(s) {
		after, _ = utf8.DecodeRuneInString(s[i:])
	}
	return isWordRune(before) != isWordRune(after)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// densityPercent is count per hundred words, unrounded. Range checks read this;
// round2 is for reporting only.
func densityPercent(count, words int) float64 {
	if words <= 0 {
		return 0
	}
	return float64(count) * 100 / float64(words)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
