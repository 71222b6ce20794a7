package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestCredibilityPatterns(t *testing.T) {
	t.Parallel()

	a := New(testConfig())

	cases := []struct {
		name  string
		text  string
		check func(t *testing.T, got bool)
	}{
		{"citation", "The effect was replicated (Smith et al., 2020) in later work.", nil},
		{"numbered reference", "As shown in [12], the effect holds.", nil},
	}
	for _, tc := range cases {
		got := a.credibility(tc.text)
		if !got.HasReferences {
			t.Fatalf("%s: expected HasReferences", tc.name)
		}
	}

	if got := a.credibility("The law passed on March 5, 2021 after debate."); !got.HasDates {
		t.Fatalf("expected HasDates for written month date")
	}
	if got := a.credibility("Updated 2021-03-05 by staff."); !got.HasDates {
		t.Fatalf("expected HasDates for ISO date")
	}
	if got := a.credibility("Written by John Smith for the paper."); !got.HasAuthor {
		t.Fatalf("expected HasAuthor for byline")
	}
	if got := a.credibility("Author: J. Doe"); !got.HasAuthor {
		t.Fatalf("expected HasAuthor for author field")
	}
	if got := a.credibility("Revenue saw a 45% increase this year."); !got.HasStatistics {
		t.Fatalf("expected HasStatistics for percentage")
	}
	if got := a.credibility("The project cost $3 million overall."); !got.HasStatistics {
		t.Fatalf("expected HasStatistics for currency amount")
	}

	got := a.credibility("Nothing notable here")
	if got.HasReferences || got.HasDates || got.HasAuthor || got.HasStatistics {
		t.Fatalf("expected no indicators, got %#v", got)
	}
}

func TestContentLength(t *testing.T) {
	t.Parallel()

	a := New(testConfig())
	if got := a.credibility("abcde"); got.ContentLength != 5 {
		t.Fatalf("expected length 5, got %d", got.ContentLength)
	}
}

func TestLanguageQualityPenalties(t *testing.T) {
	t.Parallel()

	a := New(testConfig())

	// A clean paragraph with sentence lengths inside [50,200] characters.
	clean := "The committee approved the proposal after reviewing the submitted evidence in detail. " +
		"Members debated the costs and the expected benefits before voting on the final version."
	if q := a.languageQuality(clean); q != 1.0 {
		t.Fatalf("expected quality 1.0 for clean text, got %f", q)
	}

	// Short choppy sentences: average length below 50 characters.
	choppy := "It failed. They left. Nobody knew. All gone. So what."
	if q := a.languageQuality(choppy); math.Abs(q-0.8) > 1e-9 {
		t.Fatalf("expected 0.8 for short sentences, got %f", q)
	}

	// Repeated punctuation stacks with the sentence-length penalty.
	shouting := "It failed!!! They left. Nobody knew. All gone. So what."
	if q := a.languageQuality(shouting); math.Abs(q-0.7) > 1e-9 {
		t.Fatalf("expected 0.7 with repeated punctuation, got %f", q)
	}

	// ALL-CAPS run adds another penalty.
	caps := "It FAILED completely!!! They left. Nobody knew. All gone. So what."
	if q := a.languageQuality(caps); math.Abs(q-0.6) > 1e-9 {
		t.Fatalf("expected 0.6 with caps run, got %f", q)
	}

	// Weak modifiers above the overuse threshold.
	weak := clean + " This was very very really basically literally important."
	if q := a.languageQuality(weak); math.Abs(q-0.9) > 1e-9 {
		t.Fatalf("expected 0.9 with weak modifier overuse, got %f", q)
	}
}

func TestLanguageQualityFloorsAtZero(t *testing.T) {
	t.Parallel()

	a := New(testConfig())

	bad := strings.Repeat("VERY BAD!!! really very literally basically WRONG. ", 5)
	if q := a.languageQuality(bad); q < 0 {
		t.Fatalf("quality must not go below zero, got %f", q)
	}
}
