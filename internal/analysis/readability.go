package analysis

import "strings"

// readabilityGrade computes the Flesch-Kincaid grade level:
// 0.39*(words/sentences) + 11.8*(syllables/words) - 15.59. The result is not
// clamped; very simple text goes negative and a single run-on sentence can
// push it far above any real reading grade.
func readabilityGrade(text string) float64 {
	words := strings.Fields(text)
	sentences := splitSentences(text)
	if len(words) == 0 || len(sentences) == 0 {
		return 0
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	return 0.39*float64(len(words))/float64(len(sentences)) +
		11.8*float64(syllables)/float64(len(words)) - 15.59
}

// splitSentences treats '.', '!' and '?' as terminators and drops empty
// segments.
func splitSentences(text string) []string {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	out := segments[:0]
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// countSyllables approximates syllables as runs of consecutive vowels
// (y included).
func countSyllables(word string) int {
	count := 0
	inGroup := false
	for _, r := range strings.ToLower(word) {
		if isVowel(r) {
			if !inGroup {
				count++
				inGroup = true
			}
		} else {
			inGroup = false
		}
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
