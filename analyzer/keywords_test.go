package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeKeywordDensityWholeWord(t *testing.T) {
	results := AnalyzeKeywordDensity("category cat concatenate Cat.", []string{"cat"})

	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Count)
	assert.Equal(t, []int{9, 25}, results[0].Positions)
}

func TestAnalyzeKeywordDensityPercent(t *testing.T) {
	text := strings.Repeat("dog ", 98) + "cat cat"

	results := AnalyzeKeywordDensity(text, []string{"cat"})

	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Count)
	assert.Equal(t, 2.0, results[0].Density)
	assert.True(t, results[0].Optimal)
}

func TestAnalyzeKeywordDensityOrderAndEdgeCases(t *testing.T) {
	text := "Café owners ask about café licensing. C++ is not a keyword here (really)."

	results := AnalyzeKeywordDensity(text, []string{"café", "(really)", "", "licensing", "missing"})

	require.Len(t, results, 5)
	assert.Equal(t, "café", results[0].Keyword)
	assert.Equal(t, 2, results[0].Count)
	assert.Equal(t, []int{0, 22}, results[0].Positions)

	// a keyword bounded by punctuation has no word edge to anchor on
	assert.Equal(t, 0, results[1].Count)

	assert.Equal(t, "", results[2].Keyword)
	assert.Equal(t, 0, results[2].Count)
	assert.Equal(t, []int{}, results[2].Positions)

	assert.Equal(t, 1, results[3].Count)
	assert.Equal(t, 0, results[4].Count)
	assert.False(t, results[4].Optimal)
}

func TestAnalyzeKeywordDensityNoWords(t *testing.T) {
	results := AnalyzeKeywordDensity("", []string{"law"})

	require.Len(t, results, 1)
	assert.Zero(t, results[0].Density)
	assert.False(t, results[0].Optimal)
}

func TestIsOptimalDensity(t *testing.T) {
	assert.False(t, IsOptimalDensity(0.49))
	assert.True(t, IsOptimalDensity(KeywordDensityMin))
	assert.True(t, IsOptimalDensity(2.5))
	assert.True(t, IsOptimalDensity(KeywordDensityMax))
	assert.False(t, IsOptimalDensity(3.01))
	assert.Equal(t, "0.5-3%", DensityRangeLabel())
}

func TestKeywordDensityBoundsUseExactRatio(t *testing.T) {
	tests := []struct {
		name    string
		hits    int
		filler  int
		density float64
		message string
	}{
		{
			name:    "just under the minimum",
			hits:    1,
			filler:  200,
			density: 0.5,
			message: `Keyword "custody" density is too low (0.5%)`,
		},
		{
			name:    "just over the maximum",
			hits:    751,
			filler:  24249,
			density: 3.0,
			message: `Keyword "custody" density is too high (3.0%)`,
		},
	}

	a := New(Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("custody ", tt.hits) + strings.Repeat("word ", tt.filler)

			results := AnalyzeKeywordDensity(text, []string{"custody"})
			require.Len(t, results, 1)
			assert.Equal(t, tt.density, results[0].Density)
			assert.False(t, results[0].Optimal)

			seo := a.AnalyzeSEO(ContentSnapshot{
				Content:  "<p>" + text + "</p>",
				Keywords: []string{"custody"},
			})
			issue, ok := findIssue(seo.Issues, IssueKeywords, tt.message)
			require.True(t, ok)
			assert.Equal(t, SeverityWarning, issue.Severity)
			assert.Equal(t, 3, issue.Impact)
		})
	}
}
