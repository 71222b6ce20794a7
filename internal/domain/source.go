package domain

import "time"

// SentimentLabel buckets the lexicon score into a coarse polarity.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Sentiment carries the raw lexicon score and its label.
type Sentiment struct {
	Score float64        `json:"score"`
	Label SentimentLabel `json:"label"`
}

// CredibilityIndicators are surface-text signals used as positive evidence
// when scoring a source.
type CredibilityIndicators struct {
	HasReferences   bool    `json:"hasReferences"`
	HasDates        bool    `json:"hasDates"`
	HasAuthor       bool    `json:"hasAuthor"`
	HasStatistics   bool    `json:"hasStatistics"`
	ContentLength   int     `json:"contentLength"`
	LanguageQuality float64 `json:"languageQuality"`
}

// BiasIndicators are surface-text signals used as negative evidence.
// ControversialTerms keeps every matched token, duplicates included.
type BiasIndicators struct {
	EmotionalLanguage  float64  `json:"emotionalLanguage"`
	Subjectivity       float64  `json:"subjectivity"`
	ControversialTerms []string `json:"controversialTerms"`
}

// ContentAnalysis is the immutable outcome of one analysis pass over
// extracted page text.
type ContentAnalysis struct {
	Category         string                `json:"category"`
	Topics           []string              `json:"topics"`
	Sentiment        Sentiment             `json:"sentiment"`
	ReadabilityScore float64               `json:"readabilityScore"`
	Credibility      CredibilityIndicators `json:"credibilityIndicators"`
	Bias             BiasIndicators        `json:"biasIndicators"`
}

// PageContent is what the fetcher extracts from a live page.
type PageContent struct {
	Title       string
	Description string
	MainText    string
	FinalURL    string
}

// VerificationResult is the externally visible outcome of verifying a URL.
// Once the fetch succeeds the pipeline always produces a result; later
// stages degrade instead of failing.
type VerificationResult struct {
	IsValid         bool             `json:"isValid"`
	TrustScore      float64          `json:"trustScore"`
	Domain          string           `json:"domain"`
	IsDomainTrusted bool             `json:"isDomainTrusted"`
	Title           string           `json:"title,omitempty"`
	Description     string           `json:"description,omitempty"`
	ArchiveURL      string           `json:"archiveUrl,omitempty"`
	Analysis        *ContentAnalysis `json:"analysis,omitempty"`
}

// Clone returns a deep copy. Cached results must not share the analysis
// pointer or its slices with values handed to callers.
func (r VerificationResult) Clone() VerificationResult {
	if r.Analysis == nil {
		return r
	}

	analysis := *r.Analysis
	analysis.Topics = append([]string(nil), r.Analysis.Topics...)
	analysis.Bias.ControversialTerms = append([]string(nil), r.Analysis.Bias.ControversialTerms...)
	r.Analysis = &analysis
	return r
}

// ArchiveStatus distinguishes a snapshot that worked, one that was never
// attempted, and one that was attempted and failed.
type ArchiveStatus string

const (
	ArchiveDone    ArchiveStatus = "archived"
	ArchiveSkipped ArchiveStatus = "skipped"
	ArchiveFailed  ArchiveStatus = "failed"
)

// ArchiveOutcome reports what the archival client did with a URL.
type ArchiveOutcome struct {
	Status ArchiveStatus
	URL    string
}

// VerifyInput is a single verification request.
type VerifyInput struct {
	URL      string   `json:"url"`
	DebateID string   `json:"debateId,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// VerifiedSource is the persisted record of a completed verification,
// associated with its submitter and optionally a debate.
type VerifiedSource struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Domain      string    `json:"domain"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	TrustScore  float64   `json:"trustScore"`
	IsValid     bool      `json:"isValid"`
	ArchiveURL  string    `json:"archiveUrl,omitempty"`
	Category    string    `json:"category,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	SubmitterID string    `json:"submitterId"`
	DebateID    string    `json:"debateId,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SourceStats aggregates stored verifications for dashboards.
type SourceStats struct {
	TotalSources      int            `json:"totalSources"`
	ValidSources      int            `json:"validSources"`
	AverageTrustScore float64        `json:"averageTrustScore"`
	ByCategory        map[string]int `json:"byCategory"`
}
