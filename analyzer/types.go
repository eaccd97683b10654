package analyzer

// ContentSnapshot is the editable state of a piece of content at the time of
// analysis. Keywords are ordered by priority; Keywords[0] is the primary one.
type ContentSnapshot struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
	Keywords    []string `json:"keywords"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt,omitempty"`
}

// IssueType names the area of the content an issue belongs to
type IssueType string

const (
	IssueMetaTitle       IssueType = "meta_title"
	IssueMetaDescription IssueType = "meta_description"
	IssueKeywords        IssueType = "keywords"
	IssueHeadings        IssueType = "headings"
	IssueImages          IssueType = "images"
	IssueLinks           IssueType = "links"
	IssueContent         IssueType = "content"

	// AIO only
	IssueCitations      IssueType = "citations"
	IssueFacts          IssueType = "facts"
	IssueQAFormat       IssueType = "qa_format"
	IssueStructuredData IssueType = "structured_data"
	IssueSummary        IssueType = "summary"
)

// Severity of an issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single finding; Impact is the number of points it cost.
type Issue struct {
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Fix      string    `json:"fix,omitempty"`
	Impact   int       `json:"impact"`
}

// SEOAnalysis represents the complete search-engine analysis of a snapshot
type SEOAnalysis struct {
	Score           int               `json:"score"`
	Issues          []Issue           `json:"issues"`
	Warnings        []Issue           `json:"warnings"`
	Recommendations []string          `json:"recommendations"`
	Strengths       []string          `json:"strengths"`
	Readability     ReadabilityScore  `json:"readability"`
	Keywords        []KeywordAnalysis `json:"keywords"`
	Headings        HeadingAnalysis   `json:"headings"`
	Meta            MetaAnalysis      `json:"meta"`
}

// ReadabilityScore is the Flesch reading-ease result for the plain text
type ReadabilityScore struct {
	FleschKincaid       int    `json:"fleschKincaid"`
	Grade               string `json:"grade"`
	ReadingTime         int    `json:"readingTime"`
	WordCount           int    `json:"wordCount"`
	SentenceCount       int    `json:"sentenceCount"`
	AvgWordsPerSentence int    `json:"avgWordsPerSentence"`
}

// KeywordAnalysis is the occurrence count and density of one keyword
type KeywordAnalysis struct {
	Keyword   string  `json:"keyword"`
	Count     int     `json:"count"`
	Density   float64 `json:"density"`
	Optimal   bool    `json:"optimal"`
	Positions []int   `json:"positions"`
}

// HeadingStructure grades the overall heading outline
type HeadingStructure string

const (
	StructureExcellent HeadingStructure = "excellent"
	StructureGood      HeadingStructure = "good"
	StructurePoor      HeadingStructure = "poor"
)

// HeadingAnalysis counts headings per level and grades the outline
type HeadingAnalysis struct {
	H1Count   int              `json:"h1Count"`
	H2Count   int              `json:"h2Count"`
	H3Count   int              `json:"h3Count"`
	H4Count   int              `json:"h4Count"`
	Structure HeadingStructure `json:"structure"`
	Issues    []string         `json:"issues"`
}

// MetaAnalysis reports title and description lengths and keyword placement
type MetaAnalysis struct {
	TitleLength             int  `json:"titleLength"`
	TitleOptimal            bool `json:"titleOptimal"`
	DescriptionLength       int  `json:"descriptionLength"`
	DescriptionOptimal      bool `json:"descriptionOptimal"`
	HasKeywordInTitle       bool `json:"hasKeywordInTitle"`
	HasKeywordInDescription bool `json:"hasKeywordInDescription"`
}

// AIOAnalysis represents how well a snapshot is suited to being selected and
// cited by AI answer engines
type AIOAnalysis struct {
	Score           int                    `json:"score"`
	Issues          []Issue                `json:"issues"`
	Recommendations []string               `json:"recommendations"`
	Strengths       []string               `json:"strengths"`
	Platforms       PlatformScores         `json:"platforms"`
	Citations       CitationAnalysis       `json:"citations"`
	Facts           FactAnalysis           `json:"facts"`
	QA              QAAnalysis             `json:"qa"`
	StructuredData  StructuredDataAnalysis `json:"structuredData"`
	Summary         SummaryAnalysis        `json:"summary"`
	WordCount       int                    `json:"wordCount"`
}

// PlatformScores weights the AIO rubric per answer engine
type PlatformScores struct {
	ChatGPT    int `json:"chatgpt"`
	Perplexity int `json:"perplexity"`
	GoogleSGE  int `json:"googleSge"`
}

// CitationAnalysis counts outbound links and how many are authoritative
type CitationAnalysis struct {
	ExternalLinks      int    `json:"externalLinks"`
	AuthoritativeLinks int    `json:"authoritativeLinks"`
	Quality            string `json:"quality"`
}

// FactAnalysis counts statistics, years and numbers in the text
type FactAnalysis struct {
	Percentages     int     `json:"percentages"`
	Years           int     `json:"years"`
	Numbers         int     `json:"numbers"`
	PerHundredWords float64 `json:"perHundredWords"`
}

// QAAnalysis counts question headings and answer-friendly formatting
type QAAnalysis struct {
	QuestionHeadings int  `json:"questionHeadings"`
	HasFAQ           bool `json:"hasFaq"`
	Lists            int  `json:"lists"`
	Tables           int  `json:"tables"`
	Quotes           int  `json:"quotes"`
}

// StructuredDataAnalysis lists the JSON-LD blocks and their schema types
type StructuredDataAnalysis struct {
	Blocks int      `json:"blocks"`
	Types  []string `json:"types"`
}

// SummaryAnalysis describes the opening paragraph and freshness markers
type SummaryAnalysis struct {
	FirstParagraphWords int  `json:"firstParagraphWords"`
	HasFreshness        bool `json:"hasFreshness"`
}
