package analysis

import (
	"math"
	"sort"
)

// stopwords excluded from topic ranking; keyword matching elsewhere is not
// filtered.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "a": {}, "for": {}, "is": {},
	"on": {}, "with": {}, "as": {}, "by": {}, "at": {}, "from": {}, "that": {},
	"this": {}, "it": {}, "an": {}, "be": {}, "or": {}, "are": {}, "was": {},
	"will": {}, "has": {}, "have": {}, "had": {}, "but": {}, "not": {}, "your": {},
	"you": {}, "we": {}, "our": {}, "they": {}, "their": {}, "its": {}, "were": {},
}

// termModel accumulates term statistics for a small in-memory corpus. Every
// analysis builds its own model from a single document, so scoring collapses
// to term frequency with a constant idf factor; the ranking is kept anyway so
// the weighting stays meaningful if more documents are ever added.
type termModel struct {
	docs []map[string]int
	df   map[string]int
}

func newTermModel() *termModel {
	return &termModel{df: map[string]int{}}
}

func (m *termModel) addDocument(tokens []string) {
	counts := map[string]int{}
	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		counts[tok]++
	}

	for term := range counts {
		m.df[term]++
	}
	m.docs = append(m.docs, counts)
}

// topTerms ranks one document's terms by tf-idf weight, highest first; ties
// break alphabetically for stable output.
func (m *termModel) topTerms(doc, n int) []string {
	if doc < 0 || doc >= len(m.docs) {
		return nil
	}

	counts := m.docs[doc]
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil
	}

	type weighted struct {
		term   string
		weight float64
	}
	ranked := make([]weighted, 0, len(counts))
	for term, c := range counts {
		tf := float64(c) / float64(total)
		idf := math.Log(float64(len(m.docs))/float64(1+m.df[term])) + 1
		ranked = append(ranked, weighted{term: term, weight: tf * idf})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight == ranked[j].weight {
			return ranked[i].term < ranked[j].term
		}
		return ranked[i].weight > ranked[j].weight
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ranked[i].term)
	}
	return out
}

func topTopics(tokens []string, n int) []string {
	model := newTermModel()
	model.addDocument(tokens)
	return model.topTerms(0, n)
}
