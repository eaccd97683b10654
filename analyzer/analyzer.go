package analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/seo-optimizer/contentscore/slug"
	"github.com/seo-optimizer/contentscore/textutil"
)

const (
	titleMinLength       = 30
	titleMaxLength       = 60
	descriptionMinLength = 120
	descriptionMaxLength = 160
	minContentWords      = 300
	targetContentWords   = 800
	readabilityFloor     = 60
	readabilityGood      = 70
	slugMaxLength        = 75
	recommendScoreBelow  = 80
)

// Config holds the site-specific inputs of an Analyzer.
type Config struct {
	// SiteURL is the public origin of the site, e.g. "https://example.com".
	// Absolute links containing it count as internal.
	SiteURL string
}

// Analyzer scores content snapshots. It holds no mutable state and is safe
// for concurrent use.
type Analyzer struct {
	siteURL string
}

// New creates a new Analyzer instance
func New(cfg Config) *Analyzer {
	return &Analyzer{siteURL: strings.TrimSpace(cfg.SiteURL)}
}

// SiteURL returns the origin used for internal link classification.
func (a *Analyzer) SiteURL() string {
	return a.siteURL
}

// scorecard accumulates deductions and strengths for one rubric run.
type scorecard struct {
	deducted  int
	issues    []Issue
	strengths []string
}

func newScorecard() *scorecard {
	return &scorecard{
		issues:    []Issue{},
		strengths: []string{},
	}
}

func (c *scorecard) add(issue Issue) {
	c.deducted += issue.Impact
	c.issues = append(c.issues, issue)
}

func (c *scorecard) pass(format string, args ...any) {
	c.strengths = append(c.strengths, fmt.Sprintf(format, args...))
}

// measure runs check and returns the points it deducted.
func (c *scorecard) measure(check func()) int {
	before := c.deducted
	check()
	return c.deducted - before
}

func (c *scorecard) score() int {
	return min(100, max(0, 100-c.deducted))
}

// AnalyzeSEO performs a complete search-engine analysis of the snapshot
func (a *Analyzer) AnalyzeSEO(snap ContentSnapshot) SEOAnalysis {
	doc := textutil.Parse(snap.Content)
	text := textutil.StripHTML(snap.Content)
	wordCount := textutil.CountWords(text)
	primary := primaryKeyword(snap.Keywords)

	title := strings.TrimSpace(snap.Title)
	description := metaDescription(snap)

	readability := AnalyzeReadability(text)
	keywords := AnalyzeKeywordDensity(text, snap.Keywords)
	headings := analyzeHeadings(doc.Headings())
	images := doc.Images()
	internalLinks := countInternal(doc.Links(a.siteURL))

	c := newScorecard()
	checkTitle(c, title, primary)
	checkDescription(c, description)
	checkContentLength(c, wordCount)
	checkHeadings(c, headings)
	checkKeywordDensity(c, keywords, wordCount)
	checkImages(c, images)
	checkInternalLinks(c, internalLinks)
	checkReadability(c, readability)
	checkSlug(c, strings.TrimSpace(snap.Slug), primary)

	score := c.score()

	return SEOAnalysis{
		Score:           score,
		Issues:          c.issues,
		Warnings:        c.issues,
		Recommendations: seoRecommendations(score, wordCount, internalLinks, len(images)),
		Strengths:       c.strengths,
		Readability:     readability,
		Keywords:        keywords,
		Headings:        headings,
		Meta:            analyzeMeta(title, description, primary),
	}
}

func primaryKeyword(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	return strings.TrimSpace(keywords[0])
}

func metaDescription(snap ContentSnapshot) string {
	if d := strings.TrimSpace(snap.Description); d != "" {
		return d
	}
	return strings.TrimSpace(snap.Excerpt)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func titleLengthOptimal(n int) bool {
	return n >= titleMinLength && n <= titleMaxLength
}

func descriptionLengthOptimal(n int) bool {
	return n >= descriptionMinLength && n <= descriptionMaxLength
}

func checkTitle(c *scorecard, title, primary string) {
	length := utf8.RuneCountInString(title)
	switch {
	case length == 0:
		c.add(Issue{
			Type:     IssueMetaTitle,
			Severity: SeverityError,
			Message:  "Missing meta title",
			Fix:      "Add a 50-60 character title that includes the primary keyword",
			Impact:   15,
		})
	case length < titleMinLength:
		c.add(Issue{
			Type:     IssueMetaTitle,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Meta title is too short (%d characters)", length),
			Fix:      "Expand the title to 50-60 characters",
			Impact:   5,
		})
	case length > titleMaxLength:
		c.add(Issue{
			Type:     IssueMetaTitle,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Meta title is too long (%d characters)", length),
			Fix:      "Shorten the title to 50-60 characters",
			Impact:   5,
		})
	default:
		c.pass("Meta title length is optimal (%d characters)", length)
	}

	if primary == "" {
		return
	}
	if containsFold(title, primary) {
		c.pass("Primary keyword %q appears in the meta title", primary)
		return
	}
	c.add(Issue{
		Type:     IssueMetaTitle,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("Primary keyword %q is missing from the meta title", primary),
		Fix:      "Work the primary keyword into the title, ideally near the start",
		Impact:   5,
	})
}

func checkDescription(c *scorecard, description string) {
	length := utf8.RuneCountInString(description)
	switch {
	case length == 0:
		c.add(Issue{
			Type:     IssueMetaDescription,
			Severity: SeverityError,
			Message:  "Missing meta description",
			Fix:      "Write a 120-160 character description that summarizes the page",
			Impact:   10,
		})
	case length < descriptionMinLength:
		c.add(Issue{
			Type:     IssueMetaDescription,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Meta description is too short (%d characters)", length),
			Fix:      "Expand the description to 120-160 characters",
			Impact:   5,
		})
	case length > descriptionMaxLength:
		c.add(Issue{
			Type:     IssueMetaDescription,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("Meta description is too long (%d characters)", length),
			Fix:      "Trim the description to 160 characters so it is not truncated",
			Impact:   3,
		})
	default:
		c.pass("Meta description length is optimal (%d characters)", length)
	}
}

func checkContentLength(c *scorecard, words int) {
	switch {
	case words < minContentWords:
		c.add(Issue{
			Type:     IssueContent,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Content is too short (%d words)", words),
			Fix:      "Write at least 300 words; 800+ is better for competitive topics",
			Impact:   10,
		})
	case words < targetContentWords:
		c.add(Issue{
			Type:     IssueContent,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Content could be more comprehensive (%d words)", words),
			Fix:      "Expand the content to 800+ words",
			Impact:   5,
		})
	default:
		c.pass("Comprehensive content (%d words)", words)
	}
}

func analyzeHeadings(headings []textutil.Heading) HeadingAnalysis {
	h := HeadingAnalysis{Issues: []string{}}
	for _, heading := range headings {
		switch heading.Level {
		case 1:
			h.H1Count++
		case 2:
			h.H2Count++
		case 3:
			h.H3Count++
		case 4:
			h.H4Count++
		}
	}

	if h.H1Count == 0 {
		h.Issues = append(h.Issues, "Missing H1 heading")
	}
	if h.H1Count > 1 {
		h.Issues = append(h.Issues, fmt.Sprintf("Multiple H1 headings found (%d)", h.H1Count))
	}
	if h.H2Count == 0 {
		h.Issues = append(h.Issues, "No H2 subheadings")
	}
	if h.H3Count > 0 && h.H2Count == 0 {
		h.Issues = append(h.Issues, "H3 headings used without any H2")
	}
	if h.H4Count > 0 && h.H3Count == 0 {
		h.Issues = append(h.Issues, "H4 headings used without any H3")
	}

	switch {
	case len(h.Issues) == 0 && h.H2Count >= 2:
		h.Structure = StructureExcellent
	case len(h.Issues) == 0, len(h.Issues) == 1 && h.H1Count == 1:
		h.Structure = StructureGood
	default:
		h.Structure = StructurePoor
	}

	return h
}

func checkHeadings(c *scorecard, h HeadingAnalysis) {
	switch {
	case h.H1Count == 0:
		c.add(Issue{
			Type:     IssueHeadings,
			Severity: SeverityError,
			Message:  "Missing H1 heading",
			Fix:      "Add a single H1 that states the topic of the page",
			Impact:   8,
		})
	case h.H1Count > 1:
		c.add(Issue{
			Type:     IssueHeadings,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Multiple H1 headings found (%d)", h.H1Count),
			Fix:      "Use exactly one H1 and demote the others to H2",
			Impact:   5,
		})
	default:
		c.pass("Single H1 heading")
	}

	switch {
	case h.H2Count == 0:
		c.add(Issue{
			Type:     IssueHeadings,
			Severity: SeverityWarning,
			Message:  "No H2 subheadings",
			Fix:      "Add H2 subheadings to break the content into sections",
			Impact:   4,
		})
	case h.H2Count >= 2:
		c.pass("Content is organized with %d H2 subheadings", h.H2Count)
	}
}

func checkKeywordDensity(c *scorecard, keywords []KeywordAnalysis, words int) {
	for _, kw := range keywords {
		term := strings.TrimSpace(kw.Keyword)
		if term == "" {
			continue
		}

		raw := densityPercent(kw.Count, words)
		switch {
		case raw < KeywordDensityMin:
			c.add(Issue{
				Type:     IssueKeywords,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Keyword %q density is too low (%.1f%%)", term, kw.Density),
				Fix:      fmt.Sprintf("Use %q naturally a few more times (aim for %s)", term, DensityRangeLabel()),
				Impact:   3,
			})
		case raw > KeywordDensityMax:
			c.add(Issue{
				Type:     IssueKeywords,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Keyword %q density is too high (%.1f%%)", term, kw.Density),
				Fix:      fmt.Sprintf("Reduce usage of %q to avoid keyword stuffing", term),
				Impact:   3,
			})
		default:
			c.pass("Keyword %q density is optimal (%.1f%%)", term, kw.Density)
		}
	}
}

func checkImages(c *scorecard, images []textutil.Image) {
	missing := 0
	for _, img := range images {
		if !img.HasAlt {
			missing++
		}
	}

	switch {
	case missing > 0:
		c.add(Issue{
			Type:     IssueImages,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d of %d images are missing alt text", missing, len(images)),
			Fix:      "Add descriptive alt text to every image",
			Impact:   5,
		})
	case len(images) > 0:
		c.pass("All %d images have alt text", len(images))
	}
}

func countInternal(links []textutil.Link) int {
	n := 0
	for _, l := range links {
		if l.Internal {
			n++
		}
	}
	return n
}

func checkInternalLinks(c *scorecard, internal int) {
	switch {
	case internal == 0:
		c.add(Issue{
			Type:     IssueLinks,
			Severity: SeverityInfo,
			Message:  "No internal links found",
			Fix:      "Add 2-3 internal links to related content",
			Impact:   5,
		})
	case internal >= 2:
		c.pass("%d internal links found", internal)
	}
}

func checkReadability(c *scorecard, r ReadabilityScore) {
	switch {
	case r.FleschKincaid < readabilityFloor:
		c.add(Issue{
			Type:     IssueContent,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("Content is hard to read (Flesch score %d, %s)", r.FleschKincaid, r.Grade),
			Fix:      "Simplify: use shorter sentences and shorter words",
			Impact:   5,
		})
	case r.FleschKincaid >= readabilityGood:
		c.pass("Content is easy to read (Flesch score %d)", r.FleschKincaid)
	}
}

func checkSlug(c *scorecard, s, primary string) {
	length := utf8.RuneCountInString(s)
	switch {
	case length == 0:
		c.add(Issue{
			Type:     IssueContent,
			Severity: SeverityError,
			Message:  "Missing URL slug",
			Fix:      "Add a short, descriptive slug that contains the primary keyword",
			Impact:   5,
		})
	case length > slugMaxLength:
		c.add(Issue{
			Type:     IssueContent,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("URL slug is too long (%d characters)", length),
			Fix:      "Keep the slug under 75 characters",
			Impact:   2,
		})
	case primary != "" && slug.ContainsKeyword(s, primary):
		c.pass("URL slug contains the primary keyword")
	}
}

func analyzeMeta(title, description, primary string) MetaAnalysis {
	titleLength := utf8.RuneCountInString(title)
	descriptionLength := utf8.RuneCountInString(description)

	return MetaAnalysis{
		TitleLength:             titleLength,
		TitleOptimal:            titleLengthOptimal(titleLength),
		DescriptionLength:       descriptionLength,
		DescriptionOptimal:      descriptionLengthOptimal(descriptionLength),
		HasKeywordInTitle:       primary != "" && containsFold(title, primary),
		HasKeywordInDescription: primary != "" && containsFold(description, primary),
	}
}

func seoRecommendations(score, words, internalLinks, images int) []string {
	recommendations := []string{}

	if score < recommendScoreBelow {
		recommendations = append(recommendations,
			"Address the high-impact issues first to lift the score above 80")
	}
	if words < targetContentWords {
		recommendations = append(recommendations,
			"Expand the content to 800+ words for more comprehensive coverage")
	}
	if internalLinks < 2 {
		recommendations = append(recommendations,
			"Add 2-3 internal links to related pages")
	}
	if images == 0 {
		recommendations = append(recommendations,
			"Add relevant images with descriptive alt text")
	}

	return recommendations
}
