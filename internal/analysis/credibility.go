package analysis

import (
	"regexp"
	"unicode/utf8"

	"sourceverifier/internal/domain"
)

var (
	// Bracketed citation indexes or parenthetical references ending in a year,
	// e.g. "[12]" or "(Smith et al., 2020)".
	referenceRe = regexp.MustCompile(`\[\d+\]|\([A-Za-z][^()]*\d{4}\)`)

	// Common date shapes: "March 5, 2021", "5 March 2021", "2021-03-05",
	// "03/05/2021".
	dateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}[/.]\d{1,2}[/.]\d{2,4}\b`),
	}

	// Byline shapes: "by First Last" or "Author: Name".
	authorRes = []*regexp.Regexp{
		regexp.MustCompile(`\b[Bb]y\s+[A-Z][a-z]+\s+[A-Z][a-z]+`),
		regexp.MustCompile(`(?i)\bauthor:\s*\S+`),
	}

	// Percentages, large-number words, currency amounts.
	statisticsRe = regexp.MustCompile(`\d+(?:\.\d+)?\s?%|(?i:\b\d+(?:\.\d+)?\s+(?:percent|thousand|million|billion|trillion)\b)|[$€£]\s?\d`)

	repeatedPunctRe = regexp.MustCompile(`[!?]{2,}|\.{3,}|,{2,}`)
	allCapsRunRe    = regexp.MustCompile(`\b[A-Z]{3,}\b`)
)

// credibility runs the surface-pattern checks and the language-quality
// penalties over the raw text.
func (a *Analyzer) credibility(text string) domain.CredibilityIndicators {
	return domain.CredibilityIndicators{
		HasReferences:   referenceRe.MatchString(text),
		HasDates:        anyMatch(dateRes, text),
		HasAuthor:       anyMatch(authorRes, text),
		HasStatistics:   statisticsRe.MatchString(text),
		ContentLength:   utf8.RuneCountInString(text),
		LanguageQuality: a.languageQuality(text),
	}
}

// languageQuality starts at 1.0 and subtracts a fixed penalty per defect,
// floored at zero.
func (a *Analyzer) languageQuality(text string) float64 {
	quality := 1.0

	sentences := splitSentences(text)
	if len(sentences) > 0 {
		totalLen := 0
		for _, s := range sentences {
			totalLen += utf8.RuneCountInString(s)
		}
		avg := float64(totalLen) / float64(len(sentences))
		if avg < 50 || avg > 200 {
			quality -= 0.2
		}
	}

	if repeatedPunctRe.MatchString(text) {
		quality -= 0.1
	}

	if allCapsRunRe.MatchString(text) {
		quality -= 0.1
	}

	tokens := tokenize(text)
	if len(tokens) > 0 {
		weak := 0
		for _, tok := range tokens {
			if _, ok := a.weakMods[tok]; ok {
				weak++
			}
		}
		if float64(weak)/float64(len(tokens)) > 0.02 {
			quality -= 0.1
		}
	}

	if quality < 0 {
		quality = 0
	}
	return quality
}

func anyMatch(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
