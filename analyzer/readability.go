package analyzer

import (
	"math"

	"github.com/seo-optimizer/contentscore/textutil"
)

const wordsPerMinute = 200

// AnalyzeReadability computes the Flesch Reading Ease of plain text along with
// the counts it is derived from.
func AnalyzeReadability(text string) ReadabilityScore {
	words := textutil.Words(text)
	wordCount := len(words)

	sentenceCount := len(textutil.Sentences(text))
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += textutil.CountSyllables(w)
	}

	divisor := float64(max(wordCount, 1))
	ease := 206.835 -
		1.015*(divisor/float64(sentenceCount)) -
		84.6*(float64(syllables)/divisor)
	score := int(math.Round(math.Max(0, math.Min(100, ease))))

	return ReadabilityScore{
		FleschKincaid:       score,
		Grade:               readabilityGrade(score),
		ReadingTime:         int(math.Ceil(float64(wordCount) / wordsPerMinute)),
		WordCount:           wordCount,
		SentenceCount:       sentenceCount,
		AvgWordsPerSentence: int(math.Round(float64(wordCount) / float64(sentenceCount))),
	}
}

func readabilityGrade(score int) string {
	switch {
	case score >= 90:
		return "Very Easy (5th grade)"
	case score >= 80:
		return "Easy (6th grade)"
	case score >= 70:
		return "Fairly Easy (7th grade)"
	case score >= 60:
		return "Standard (8th-9th grade)"
	case score >= 50:
		return "Fairly Difficult (10th-12th grade)"
	case score >= 30:
		return "Difficult (college)"
	default:
		return "Very Difficult (college graduate)"
	}
}
