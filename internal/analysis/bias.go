package analysis

import (
	"regexp"
	"strings"

	"sourceverifier/internal/domain"
)

// Subjectivity regex families: first-person pronouns, belief/opinion verbs,
// hedging adverbs. Each family that matches anywhere contributes 0.2.
var subjectivityRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:i|we|me|us|my|our|mine|ours)\b`),
	regexp.MustCompile(`(?i)\b(?:believe|think|feel|suppose|assume|suspect|opine|argue|claim)s?\b`),
	regexp.MustCompile(`(?i)\b(?:maybe|perhaps|possibly|probably|apparently|seemingly|arguably|presumably)\b`),
}

const subjectivityWeight = 0.2

// bias measures emotionally loaded vocabulary and subjective phrasing.
// Matched tokens are reported verbatim, repeats included.
func (a *Analyzer) bias(text string, tokens []string) domain.BiasIndicators {
	var matched []string
	for _, tok := range tokens {
		for _, term := range a.biasTerms {
			if strings.Contains(tok, term) {
				matched = append(matched, tok)
				break
			}
		}
	}

	emotional := 0.0
	if len(tokens) > 0 {
		emotional = float64(len(matched)) / float64(len(tokens))
	}

	subjectivity := 0.0
	for _, re := range subjectivityRes {
		if re.MatchString(text) {
			subjectivity += subjectivityWeight
		}
	}
	if subjectivity > 1 {
		subjectivity = 1
	}

	return domain.BiasIndicators{
		EmotionalLanguage:  emotional,
		Subjectivity:       subjectivity,
		ControversialTerms: matched,
	}
}
