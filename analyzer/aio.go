package analyzer

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/seo-optimizer/contentscore/textutil"
)

var (
	numberRe      = regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\b`)
	percentRe     = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?(?:\s?%|\s+percent\b)`)
	yearRe        = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	attributionRe = regexp.MustCompile(`(?i)\baccording to\b`)
	freshnessRe   = regexp.MustCompile(`(?i)\b(?:updated|last reviewed|as of)\b`)
	questionRe    = regexp.MustCompile(`(?i)^(?:what|how|why|when|where|who|which|can|does|do|is|are|should|will)\b`)
	faqRe         = regexp.MustCompile(`(?i)\bfaqs?\b|frequently asked`)
)

var authoritativeSuffixes = []string{
	".gov", ".edu", ".mil", ".int", ".org", ".gov.uk", ".ac.uk",
}

var authoritativeHosts = []string{
	"reuters.com", "apnews.com", "nature.com", "sciencedirect.com",
	"justia.com", "findlaw.com", "scholar.google.com", "bbc.co.uk",
}

const (
	minSummaryWords   = 20
	maxSummaryWords   = 80
	aioMinWords       = 300
	aioTargetWords    = 600
	aioRecommendBelow = 70
)

// Rubric categories; subscores feed the per-platform weighting.
const (
	catCitations = iota
	catFacts
	catQA
	catStructured
	catFormat
	catSummary
	catQuotes
	catFreshness
	catDepth
	numCategories
)

var categoryMax = [numCategories]int{
	catCitations:  15,
	catFacts:      10,
	catQA:         15,
	catStructured: 10,
	catFormat:     5,
	catSummary:    10,
	catQuotes:     5,
	catFreshness:  5,
	catDepth:      10,
}

// Each row sums to 1.
var (
	chatGPTWeights = [numCategories]float64{
		catSummary: 0.25, catDepth: 0.2, catQA: 0.2, catFacts: 0.1, catCitations: 0.1,
		catQuotes: 0.05, catFormat: 0.05, catStructured: 0.025, catFreshness: 0.025,
	}
	perplexityWeights = [numCategories]float64{
		catCitations: 0.3, catFacts: 0.2, catFreshness: 0.1, catQuotes: 0.1, catSummary: 0.1,
		catDepth: 0.1, catQA: 0.05, catFormat: 0.025, catStructured: 0.025,
	}
	sgeWeights = [numCategories]float64{
		catStructured: 0.25, catQA: 0.2, catFormat: 0.15, catSummary: 0.1, catCitations: 0.1,
		catDepth: 0.1, catFacts: 0.05, catFreshness: 0.025, catQuotes: 0.025,
	}
)

// AnalyzeAIO scores how likely AI answer engines (ChatGPT, Perplexity, Google
// SGE) are to select and cite the snapshot.
func (a *Analyzer) AnalyzeAIO(snap ContentSnapshot) AIOAnalysis {
	doc := textutil.Parse(snap.Content)
	text := textutil.StripHTML(snap.Content)
	wordCount := textutil.CountWords(text)
	headings := doc.Headings()

	citations := analyzeCitations(doc.Links(a.siteURL))
	facts := analyzeFacts(text, wordCount)
	qa := analyzeQA(doc, headings, text)
	blocks, types := doc.StructuredData()
	structured := StructuredDataAnalysis{Blocks: blocks, Types: types}
	if structured.Types == nil {
		structured.Types = []string{}
	}
	summary := SummaryAnalysis{
		FirstParagraphWords: firstParagraphWords(doc),
		HasFreshness:        yearRe.MatchString(text) || freshnessRe.MatchString(text),
	}

	c := newScorecard()
	var lost [numCategories]int
	lost[catCitations] = c.measure(func() { checkCitations(c, citations) })
	lost[catFacts] = c.measure(func() { checkFacts(c, facts, wordCount) })
	lost[catQA] = c.measure(func() { checkQA(c, qa) })
	lost[catStructured] = c.measure(func() { checkStructuredData(c, structured) })
	lost[catFormat] = c.measure(func() { checkFormatting(c, qa) })
	lost[catSummary] = c.measure(func() { checkSummary(c, summary.FirstParagraphWords) })
	lost[catQuotes] = c.measure(func() { checkQuotes(c, qa.Quotes) })
	lost[catFreshness] = c.measure(func() { checkFreshness(c, summary.HasFreshness) })
	lost[catDepth] = c.measure(func() { checkDepth(c, wordCount) })

	score := c.score()

	return AIOAnalysis{
		Score:           score,
		Issues:          c.issues,
		Recommendations: aioRecommendations(score, citations, qa, structured),
		Strengths:       c.strengths,
		Platforms: PlatformScores{
			ChatGPT:    platformScore(lost, chatGPTWeights),
			Perplexity: platformScore(lost, perplexityWeights),
			GoogleSGE:  platformScore(lost, sgeWeights),
		},
		Citations:      citations,
		Facts:          facts,
		QA:             qa,
		StructuredData: structured,
		Summary:        summary,
		WordCount:      wordCount,
	}
}

func platformScore(lost [numCategories]int, weights [numCategories]float64) int {
	total := 0.0
	for cat, w := range weights {
		kept := max(categoryMax[cat]-lost[cat], 0)
		total += w * 100 * float64(kept) / float64(categoryMax[cat])
	}
	return min(100, max(0, int(math.Round(total))))
}

func isExternal(l textutil.Link) bool {
	if l.Internal {
		return false
	}
	href := strings.ToLower(l.Href)
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

func isAuthoritative(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, suffix := range authoritativeSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	for _, h := range authoritativeHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func analyzeCitations(links []textutil.Link) CitationAnalysis {
	var ca CitationAnalysis
	for _, l := range links {
		if !isExternal(l) {
			continue
		}
		ca.ExternalLinks++
		if isAuthoritative(l.Href) {
			ca.AuthoritativeLinks++
		}
	}

	switch {
	case ca.AuthoritativeLinks >= 2:
		ca.Quality = "strong"
	case ca.AuthoritativeLinks == 1:
		ca.Quality = "moderate"
	case ca.ExternalLinks > 0:
		ca.Quality = "weak"
	default:
		ca.Quality = "none"
	}
	return ca
}

func analyzeFacts(text string, words int) FactAnalysis {
	fa := FactAnalysis{
		Percentages: len(percentRe.FindAllString(text, -1)),
		Years:       len(yearRe.FindAllString(text, -1)),
		Numbers:     len(numberRe.FindAllString(text, -1)),
	}
	if words > 0 {
		fa.PerHundredWords = round2(densityPercent(fa.Numbers, words))
	}
	return fa
}

func analyzeQA(doc *textutil.Document, headings []textutil.Heading, text string) QAAnalysis {
	var qa QAAnalysis
	for _, h := range headings {
		if h.Level < 2 {
			continue
		}
		if strings.HasSuffix(h.Text, "?") || questionRe.MatchString(h.Text) {
			qa.QuestionHeadings++
		}
		if faqRe.MatchString(h.Text) {
			qa.HasFAQ = true
		}
	}
	qa.Lists = doc.Count("ul, ol")
	qa.Tables = doc.Count("table")
	qa.Quotes = doc.Count("blockquote") + len(attributionRe.FindAllString(text, -1))
	return qa
}

func firstParagraphWords(doc *textutil.Document) int {
	paragraphs := doc.Paragraphs()
	if len(paragraphs) == 0 {
		return 0
	}
	return textutil.CountWords(paragraphs[0])
}

func checkCitations(c *scorecard, ca CitationAnalysis) {
	switch {
	case ca.ExternalLinks == 0:
		c.add(Issue{
			Type:     IssueCitations,
			Severity: SeverityWarning,
			Message:  "No citations to external sources",
			Fix:      "Link to 2-3 authoritative sources that back up the key claims",
			Impact:   15,
		})
	case ca.AuthoritativeLinks == 0:
		c.add(Issue{
			Type:     IssueCitations,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("None of the %d external links point to authoritative sources", ca.ExternalLinks),
			Fix:      "Cite government, academic or recognized reference sources",
			Impact:   5,
		})
	case ca.AuthoritativeLinks >= 2:
		c.pass("%d authoritative citations", ca.AuthoritativeLinks)
	}
}

func checkFacts(c *scorecard, fa FactAnalysis, words int) {
	perHundred := densityPercent(fa.Numbers, words)
	switch {
	case perHundred < 1:
		c.add(Issue{
			Type:     IssueFacts,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Few concrete facts or statistics (%.1f per 100 words)", fa.PerHundredWords),
			Fix:      "Add specific numbers, dates and statistics that answer engines can quote",
			Impact:   10,
		})
	case perHundred < 2:
		c.add(Issue{
			Type:     IssueFacts,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("Fact density could be higher (%.1f per 100 words)", fa.PerHundredWords),
			Fix:      "Support more statements with figures or dates",
			Impact:   5,
		})
	default:
		c.pass("Good fact density (%.1f per 100 words)", fa.PerHundredWords)
	}
}

func checkQA(c *scorecard, qa QAAnalysis) {
	if qa.QuestionHeadings == 0 {
		c.add(Issue{
			Type:     IssueQAFormat,
			Severity: SeverityWarning,
			Message:  "No question-style headings",
			Fix:      "Phrase some H2/H3 headings as the questions readers ask",
			Impact:   10,
		})
	} else {
		c.pass("%d question-style headings", qa.QuestionHeadings)
	}

	if !qa.HasFAQ {
		c.add(Issue{
			Type:     IssueQAFormat,
			Severity: SeverityInfo,
			Message:  "No FAQ section",
			Fix:      "Add an FAQ section with short, direct answers",
			Impact:   5,
		})
	} else {
		c.pass("Includes an FAQ section")
	}
}

func checkStructuredData(c *scorecard, sd StructuredDataAnalysis) {
	switch {
	case sd.Blocks == 0:
		c.add(Issue{
			Type:     IssueStructuredData,
			Severity: SeverityWarning,
			Message:  "No structured data (JSON-LD) found",
			Fix:      "Add Article or FAQPage schema markup",
			Impact:   10,
		})
	case len(sd.Types) > 0:
		c.pass("Structured data present: %s", strings.Join(sd.Types, ", "))
	default:
		c.pass("Structured data present")
	}
}

func checkFormatting(c *scorecard, qa QAAnalysis) {
	if qa.Lists == 0 && qa.Tables == 0 {
		c.add(Issue{
			Type:     IssueContent,
			Severity: SeverityInfo,
			Message:  "No lists or tables",
			Fix:      "Break steps, options or comparisons into lists or tables",
			Impact:   5,
		})
		return
	}
	c.pass("Uses lists or tables (%d lists, %d tables)", qa.Lists, qa.Tables)
}

func checkSummary(c *scorecard, words int) {
	switch {
	case words < minSummaryWords:
		c.add(Issue{
			Type:     IssueSummary,
			Severity: SeverityWarning,
			Message:  "Missing a concise summary paragraph at the top",
			Fix:      "Open with a 40-60 word paragraph that directly answers the main question",
			Impact:   10,
		})
	case words > maxSummaryWords:
		c.add(Issue{
			Type:     IssueSummary,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("Opening paragraph is too long to quote (%d words)", words),
			Fix:      "Trim the opening paragraph to 40-60 words",
			Impact:   5,
		})
	default:
		c.pass("Opens with a quotable summary (%d words)", words)
	}
}

func checkQuotes(c *scorecard, quotes int) {
	if quotes == 0 {
		c.add(Issue{
			Type:     IssueCitations,
			Severity: SeverityInfo,
			Message:  "No expert quotes or attributed statements",
			Fix:      `Attribute claims ("according to ...") or quote recognized experts`,
			Impact:   5,
		})
		return
	}
	c.pass("%d quotes or attributed statements", quotes)
}

func checkFreshness(c *scorecard, fresh bool) {
	if !fresh {
		c.add(Issue{
			Type:     IssueContent,
			Severity: SeverityInfo,
			Message:  "No freshness signal (dates or update notes)",
			Fix:      "Mention when the content was last updated or reviewed",
			Impact:   5,
		})
		return
	}
	c.pass("Contains dates or update notes")
}

func checkDepth(c *scorecard, words int) {
	switch {
	case words < aioMinWords:
		c.add(Issue{
			Type:     IssueContent,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Content is too thin to be cited (%d words)", words),
			Fix:      "Cover the topic in at least 600 words",
			Impact:   10,
		})
	case words < aioTargetWords:
		c.add(Issue{
			Type:     IssueContent,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Content depth is limited (%d words)", words),
			Fix:      "Expand with examples, edge cases and follow-up questions",
			Impact:   5,
		})
	default:
		c.pass("In-depth coverage (%d words)", words)
	}
}

func aioRecommendations(score int, ca CitationAnalysis, qa QAAnalysis, sd StructuredDataAnalysis) []string {
	recommendations := []string{}

	if score < aioRecommendBelow {
		recommendations = append(recommendations,
			"Fix citation, Q&A and summary issues first; answer engines weigh them most")
	}
	if sd.Blocks == 0 {
		recommendations = append(recommendations,
			"Add FAQPage or Article JSON-LD so AI search can parse the page structure")
	}
	if !qa.HasFAQ {
		recommendations = append(recommendations,
			"Add an FAQ section answering the questions your audience asks")
	}
	if ca.ExternalLinks == 0 {
		recommendations = append(recommendations,
			"Cite 2-3 authoritative sources to improve the chance of being referenced")
	}

	return recommendations
}
