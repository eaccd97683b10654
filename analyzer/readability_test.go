package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeReadabilityKnownValue(t *testing.T) {
	// 20 words, 1 sentence, 23 syllables:
	// 206.835 - 1.015*20 - 84.6*(23/20) = 89.245
	text := "The quick brown fox jumps over the lazy dog and then it runs back to the old red barn today."

	r := AnalyzeReadability(text)

	assert.Equal(t, ReadabilityScore{
		FleschKincaid:       89,
		Grade:               "Easy (6th grade)",
		ReadingTime:         1,
		WordCount:           20,
		SentenceCount:       1,
		AvgWordsPerSentence: 20,
	}, r)
}

func TestAnalyzeReadabilityEmpty(t *testing.T) {
	r := AnalyzeReadability("")

	assert.Equal(t, 0, r.WordCount)
	assert.Equal(t, 1, r.SentenceCount)
	assert.Equal(t, 0, r.ReadingTime)
	assert.Equal(t, 0, r.AvgWordsPerSentence)
	assert.GreaterOrEqual(t, r.FleschKincaid, 0)
	assert.LessOrEqual(t, r.FleschKincaid, 100)
}

func TestAnalyzeReadabilityClampsLow(t *testing.T) {
	text := "Institutionalization notwithstanding, interdisciplinary jurisprudential considerations necessitate comprehensive reconsideration"

	r := AnalyzeReadability(text)

	assert.Equal(t, 0, r.FleschKincaid)
	assert.Equal(t, "Very Difficult (college graduate)", r.Grade)
}

func TestAnalyzeReadabilityReadingTime(t *testing.T) {
	assert.Equal(t, 1, AnalyzeReadability(prose(200)).ReadingTime)
	assert.Equal(t, 2, AnalyzeReadability(prose(201)).ReadingTime)
}

func TestReadabilityGrade(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, "Very Easy (5th grade)"},
		{90, "Very Easy (5th grade)"},
		{89, "Easy (6th grade)"},
		{75, "Fairly Easy (7th grade)"},
		{60, "Standard (8th-9th grade)"},
		{55, "Fairly Difficult (10th-12th grade)"},
		{30, "Difficult (college)"},
		{29, "Very Difficult (college graduate)"},
		{0, "Very Difficult (college graduate)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, readabilityGrade(tt.score), "score %d", tt.score)
	}
}
