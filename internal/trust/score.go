package trust

import (
	"strings"

	"sourceverifier/internal/domain"
)

// ValidThreshold separates valid from invalid sources.
const ValidThreshold = 0.5

// Signals are the fetch-level inputs to the score, independent of content
// analysis.
type Signals struct {
	DomainTrusted  bool
	HasTitle       bool
	HasDescription bool
	HTTPS          bool
}

// Score combines fetch signals and content analysis into a trust score,
// clamped to [0,1]. The weights are fixed: scores must stay comparable across
// deployments, so they are not configurable.
func Score(sig Signals, analysis *domain.ContentAnalysis) float64 {
	score := 0.0

	if sig.DomainTrusted {
		score += 0.30
	}
	if sig.HTTPS {
		score += 0.10
	}
	if sig.HasTitle {
		score += 0.05
	}
	if sig.HasDescription {
		score += 0.05
	}

	if analysis != nil {
		if analysis.Credibility.HasReferences {
			score += 0.10
		}
		if analysis.Credibility.HasDates {
			score += 0.05
		}
		if analysis.Credibility.HasAuthor {
			score += 0.05
		}
		if analysis.Credibility.HasStatistics {
			score += 0.05
		}
		score += min(0.10, analysis.Credibility.LanguageQuality*0.10)

		score -= min(0.10, analysis.Bias.EmotionalLanguage*0.20)
		score -= min(0.10, analysis.Bias.Subjectivity*0.20)

		if analysis.ReadabilityScore >= 8 && analysis.ReadabilityScore <= 14 {
			score += 0.05
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// IsValid applies the validity threshold to a computed score.
func IsValid(score float64) bool {
	return score >= ValidThreshold
}

// IsDomainTrusted reports whether host equals a trusted domain or is a
// subdomain of one. "example.org" matches "example.org" and
// "sub.example.org" but not "notexample.org".
func IsDomainTrusted(host string, trusted []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, d := range trusted {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
