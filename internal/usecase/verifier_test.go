package usecase

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"sourceverifier/internal/domain"
	"sourceverifier/internal/infrastructure/cache"
	"sourceverifier/internal/infrastructure/metrics"
)

type fakeFetcher struct {
	calls int
	page  domain.PageContent
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (domain.PageContent, error) {
	f.calls++
	return f.page, f.err
}

type fakeAnalyzer struct {
	analysis domain.ContentAnalysis
}

func (f *fakeAnalyzer) Analyze(_ string) domain.ContentAnalysis {
	return f.analysis
}

type fakeArchiver struct {
	calls   int
	outcome domain.ArchiveOutcome
	err     error
}

func (f *fakeArchiver) Archive(_ context.Context, _ string) (domain.ArchiveOutcome, error) {
	f.calls++
	return f.outcome, f.err
}

type fakeReputation struct {
	users []string
	err   error
}

func (f *fakeReputation) AwardAction(_ context.Context, userID, _ string) error {
	f.users = append(f.users, userID)
	return f.err
}

type fakeRepository struct {
	saved     []domain.VerifiedSource
	listCalls int
	sources   []domain.VerifiedSource
	stats     domain.SourceStats
	saveErr   error
}

func (f *fakeRepository) SaveVerified(_ context.Context, src domain.VerifiedSource) error {
	f.saved = append(f.saved, src)
	return f.saveErr
}

func (f *fakeRepository) ListByUser(_ context.Context, _ string) ([]domain.VerifiedSource, error) {
	f.listCalls++
	return f.sources, nil
}

func (f *fakeRepository) ListByDebate(_ context.Context, _ string) ([]domain.VerifiedSource, error) {
	f.listCalls++
	return f.sources, nil
}

func (f *fakeRepository) AggregateStats(_ context.Context) (domain.SourceStats, error) {
	f.listCalls++
	return f.stats, nil
}

func strongAnalysis() domain.ContentAnalysis {
	return domain.ContentAnalysis{
		Category:         "science",
		Topics:           []string{"research", "data"},
		ReadabilityScore: 10,
		Credibility: domain.CredibilityIndicators{
			HasReferences:   true,
			HasDates:        true,
			HasAuthor:       true,
			HasStatistics:   true,
			LanguageQuality: 1.0,
		},
	}
}

type verifierFixture struct {
	verifier   *Verifier
	fetcher    *fakeFetcher
	archiver   *fakeArchiver
	reputation *fakeReputation
	repository *fakeRepository
	recorder   *metrics.Recorder
	store      *cache.Memory
}

func newFixture(t *testing.T, analysis domain.ContentAnalysis) *verifierFixture {
	t.Helper()

	f := &verifierFixture{
		fetcher: &fakeFetcher{page: domain.PageContent{
			Title:       "A Study",
			Description: "Findings.",
			MainText:    "body",
		}},
		archiver:   &fakeArchiver{outcome: domain.ArchiveOutcome{Status: domain.ArchiveDone, URL: "https://archive.example/snap"}},
		reputation: &fakeReputation{},
		repository: &fakeRepository{},
		recorder:   metrics.NewRecorder(),
		store:      cache.NewMemory(time.Minute),
	}
	t.Cleanup(f.store.Close)

	f.verifier = NewVerifier(VerifierDeps{
		Fetcher:        f.fetcher,
		Analyzer:       &fakeAnalyzer{analysis: analysis},
		Cache:          f.store,
		Archiver:       f.archiver,
		Reputation:     f.reputation,
		Repository:     f.repository,
		Metrics:        f.recorder,
		TrustedDomains: []string{"example.org"},
	})
	return f
}

func TestVerifySourceHappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	input := domain.VerifyInput{URL: "https://example.org/study", DebateID: "d1", Tags: []string{"energy"}}

	result, err := f.verifier.VerifySource(context.Background(), input, "user-1")
	if err != nil {
		t.Fatalf("VerifySource error: %v", err)
	}

	if math.Abs(result.TrustScore-0.90) > 1e-9 {
		t.Fatalf("expected trust score 0.90, got %f", result.TrustScore)
	}
	if !result.IsValid {
		t.Fatalf("expected valid result")
	}
	if result.Domain != "example.org" || !result.IsDomainTrusted {
		t.Fatalf("unexpected domain fields: %+v", result)
	}
	if result.ArchiveURL != "https://archive.example/snap" {
		t.Fatalf("expected archive URL, got %q", result.ArchiveURL)
	}
	if result.Analysis == nil || result.Analysis.Category != "science" {
		t.Fatalf("expected analysis attached, got %+v", result.Analysis)
	}

	if got := f.reputation.users; len(got) != 1 || got[0] != "user-1" {
		t.Fatalf("expected one reputation award for user-1, got %v", got)
	}

	if len(f.repository.saved) != 1 {
		t.Fatalf("expected one persisted row, got %d", len(f.repository.saved))
	}
	row := f.repository.saved[0]
	if row.SubmitterID != "user-1" || row.DebateID != "d1" || row.Category != "science" {
		t.Fatalf("unexpected persisted row: %+v", row)
	}
}

func TestVerifySourceCacheHit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	input := domain.VerifyInput{URL: "https://example.org/study"}

	first, err := f.verifier.VerifySource(context.Background(), input, "user-1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	second, err := f.verifier.VerifySource(context.Background(), input, "user-2")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if f.fetcher.calls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", f.fetcher.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached result differs:\n%#v\n%#v", first, second)
	}

	snap := f.recorder.Snapshot()
	if snap.CacheMisses != 1 || snap.CacheHits != 1 {
		t.Fatalf("expected 1 miss and 1 hit, got %d/%d", snap.CacheMisses, snap.CacheHits)
	}
}

func TestCachedResultDoesNotShareAnalysis(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	input := domain.VerifyInput{URL: "https://example.org/study"}

	first, err := f.verifier.VerifySource(context.Background(), input, "user-1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Mutate everything the caller received; the cached entry must be
	// unaffected.
	first.Analysis.Category = "tampered"
	first.Analysis.Topics[0] = "tampered"

	second, err := f.verifier.VerifySource(context.Background(), input, "user-2")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if f.fetcher.calls != 1 {
		t.Fatalf("expected a cache hit, got %d fetches", f.fetcher.calls)
	}

	if second.Analysis.Category != "science" {
		t.Fatalf("cached analysis mutated: %q", second.Analysis.Category)
	}
	if second.Analysis.Topics[0] != "research" {
		t.Fatalf("cached topics mutated: %v", second.Analysis.Topics)
	}

	second.Analysis.Topics[0] = "tampered again"
	third, err := f.verifier.VerifySource(context.Background(), input, "user-3")
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	if third.Analysis.Topics[0] != "research" {
		t.Fatalf("cache hit shares slices with callers: %v", third.Analysis.Topics)
	}
}

func TestVerifySourceInvalidURL(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())

	_, err := f.verifier.VerifySource(context.Background(), domain.VerifyInput{URL: "not a url"}, "user-1")
	if !errors.Is(err, domain.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
	if f.fetcher.calls != 0 {
		t.Fatalf("invalid URL must fail before any fetch, saw %d", f.fetcher.calls)
	}
}

func TestVerifySourceFetchFailurePropagates(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	f.fetcher.err = &domain.FetchError{Kind: domain.FetchNon2xx, URL: "https://example.org/x", Status: 500}

	_, err := f.verifier.VerifySource(context.Background(), domain.VerifyInput{URL: "https://example.org/x"}, "user-1")

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Kind != domain.FetchNon2xx {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if f.archiver.calls != 0 || len(f.repository.saved) != 0 {
		t.Fatalf("failed fetch must stop the pipeline")
	}
}

func TestArchivalFailureNeverFailsVerification(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	f.archiver.outcome = domain.ArchiveOutcome{Status: domain.ArchiveFailed}
	f.archiver.err = &domain.ArchiveError{URL: "x", Err: errors.New("backend down")}

	result, err := f.verifier.VerifySource(context.Background(), domain.VerifyInput{URL: "https://example.org/study"}, "user-1")
	if err != nil {
		t.Fatalf("archival failure leaked: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("result should stay valid without an archive")
	}
	if result.ArchiveURL != "" {
		t.Fatalf("failed archive must leave ArchiveURL empty, got %q", result.ArchiveURL)
	}
}

func TestLowScoreSkipsArchiveAndReputation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ContentAnalysis{})
	f.fetcher.page = domain.PageContent{MainText: "thin content"}

	result, err := f.verifier.VerifySource(context.Background(), domain.VerifyInput{URL: "http://blog.unknown.net/post"}, "user-1")
	if err != nil {
		t.Fatalf("VerifySource error: %v", err)
	}

	if result.IsValid {
		t.Fatalf("expected invalid result, got score %f", result.TrustScore)
	}
	if f.archiver.calls != 0 {
		t.Fatalf("archive must only run at or above the threshold")
	}
	if len(f.reputation.users) != 0 {
		t.Fatalf("no reputation award for invalid sources")
	}
	if len(f.repository.saved) != 1 {
		t.Fatalf("invalid results are still persisted, got %d rows", len(f.repository.saved))
	}
}

func TestReputationFailureIsAbsorbed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	f.reputation.err = errors.New("service down")

	result, err := f.verifier.VerifySource(context.Background(), domain.VerifyInput{URL: "https://example.org/study"}, "user-1")
	if err != nil {
		t.Fatalf("reputation failure leaked: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("expected valid result")
	}
}

func TestPersistFailureIsAbsorbed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	f.repository.saveErr = errors.New("db down")

	if _, err := f.verifier.VerifySource(context.Background(), domain.VerifyInput{URL: "https://example.org/study"}, "user-1"); err != nil {
		t.Fatalf("persistence failure leaked: %v", err)
	}
}

func TestListUserSourcesCacheAside(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	f.repository.sources = []domain.VerifiedSource{{ID: "s1", URL: "https://example.org/a"}}

	for i := 0; i < 3; i++ {
		got, err := f.verifier.ListUserSources(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("ListUserSources: %v", err)
		}
		if len(got) != 1 || got[0].ID != "s1" {
			t.Fatalf("unexpected listing: %v", got)
		}
	}

	if f.repository.listCalls != 1 {
		t.Fatalf("expected a single repository read, got %d", f.repository.listCalls)
	}
}

func TestStatsCacheAside(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	f.repository.stats = domain.SourceStats{TotalSources: 4, ValidSources: 3, ByCategory: map[string]int{"science": 4}}

	for i := 0; i < 3; i++ {
		got, err := f.verifier.Stats(context.Background())
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if got.TotalSources != 4 {
			t.Fatalf("unexpected stats: %+v", got)
		}
	}

	if f.repository.listCalls != 1 {
		t.Fatalf("expected a single aggregate query, got %d", f.repository.listCalls)
	}
}

func TestStageMetricsObserved(t *testing.T) {
	t.Parallel()

	f := newFixture(t, strongAnalysis())
	if _, err := f.verifier.VerifySource(context.Background(), domain.VerifyInput{URL: "https://example.org/study"}, "user-1"); err != nil {
		t.Fatalf("VerifySource: %v", err)
	}

	snap := f.recorder.Snapshot()
	for _, stage := range []string{StageFetch, StageAnalyze, StageScore, StageArchive, StagePersist} {
		if snap.Stages[stage].Count != 1 {
			t.Fatalf("stage %s not observed: %+v", stage, snap.Stages)
		}
	}
}
