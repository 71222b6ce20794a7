package analysis

import (
	"strings"
	"unicode"

	"github.com/jonreiter/govader"

	"sourceverifier/internal/domain"
	"sourceverifier/internal/ports"
)

const topTopicCount = 5

// Category pairs a label with its keyword list. Declaration order breaks
// classification ties: the earliest category with the best score wins.
type Category struct {
	Name     string
	Keywords []string
}

// Config carries the static word lists the analyzer is seeded with once at
// startup.
type Config struct {
	Categories    []Category
	BiasTerms     []string
	WeakModifiers []string
}

// Analyzer derives content signals from extracted page text. All per-document
// state is built fresh inside Analyze, so one instance is safe to share
// across concurrent verifications.
type Analyzer struct {
	categories []Category
	keywords   []map[string]struct{}
	biasTerms  []string
	weakMods   map[string]struct{}
	sentiment  *govader.SentimentIntensityAnalyzer
}

var _ ports.ContentAnalyzer = (*Analyzer)(nil)

// New precomputes keyword lookups; the govader lexicon is read-only after
// construction.
func New(cfg Config) *Analyzer {
	keywords := make([]map[string]struct{}, len(cfg.Categories))
	for i, cat := range cfg.Categories {
		set := make(map[string]struct{}, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			set[strings.ToLower(kw)] = struct{}{}
		}
		keywords[i] = set
	}

	weakMods := make(map[string]struct{}, len(cfg.WeakModifiers))
	for _, w := range cfg.WeakModifiers {
		weakMods[strings.ToLower(w)] = struct{}{}
	}

	biasTerms := make([]string, len(cfg.BiasTerms))
	for i, t := range cfg.BiasTerms {
		biasTerms[i] = strings.ToLower(t)
	}

	return &Analyzer{
		categories: cfg.Categories,
		keywords:   keywords,
		biasTerms:  biasTerms,
		weakMods:   weakMods,
		sentiment:  govader.NewSentimentIntensityAnalyzer(),
	}
}

// Analyze runs every sub-analysis over the text. It never fails: degenerate
// input yields neutral defaults instead of an error.
func (a *Analyzer) Analyze(text string) domain.ContentAnalysis {
	tokens := tokenize(text)

	return domain.ContentAnalysis{
		Category:         a.categorize(tokens),
		Topics:           topTopics(tokens, topTopicCount),
		Sentiment:        a.scoreSentiment(text),
		ReadabilityScore: readabilityGrade(text),
		Credibility:      a.credibility(text),
		Bias:             a.bias(text, tokens),
	}
}

// categorize scores each category as matched-keyword share of all tokens and
// picks the best; earlier categories win ties.
func (a *Analyzer) categorize(tokens []string) string {
	if len(a.categories) == 0 {
		return ""
	}
	if len(tokens) == 0 {
		return a.categories[0].Name
	}

	best := 0
	bestScore := -1.0
	for i, set := range a.keywords {
		hits := 0
		for _, tok := range tokens {
			if _, ok := set[tok]; ok {
				hits++
			}
		}
		score := float64(hits) / float64(len(tokens))
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	return a.categories[best].Name
}

func (a *Analyzer) scoreSentiment(text string) domain.Sentiment {
	if strings.TrimSpace(text) == "" {
		return domain.Sentiment{Label: domain.SentimentNeutral}
	}

	score := a.sentiment.PolarityScores(text).Compound

	label := domain.SentimentNeutral
	switch {
	case score > 0.1:
		label = domain.SentimentPositive
	case score < -0.1:
		label = domain.SentimentNegative
	}

	return domain.Sentiment{Score: score, Label: label}
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
