package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sourceverifier/internal/domain"
	"sourceverifier/internal/ports"
	"sourceverifier/internal/trust"
)

// Cache key namespaces. Verification keys use the raw submitted URL:
// different spellings of the same resource are distinct entries.
const (
	verificationKeyPrefix  = "verification:"
	userSourcesKeyPrefix   = "user_sources:"
	debateSourcesKeyPrefix = "debate_sources:"
	statsKey               = "stats"
)

// ActionSourceVerified is the reputation event emitted for a valid source.
const ActionSourceVerified = "source_verified"

// Pipeline stage names used for duration metrics.
const (
	StageFetch   = "fetch"
	StageAnalyze = "analyze"
	StageScore   = "score"
	StageArchive = "archive"
	StagePersist = "persist"
)

// VerifierDeps wires all driven adapters into the verification pipeline.
type VerifierDeps struct {
	Fetcher    ports.PageFetcher
	Analyzer   ports.ContentAnalyzer
	Cache      ports.Cache
	Archiver   ports.Archiver
	Reputation ports.ReputationClient
	Repository ports.SourceRepository
	Metrics    ports.MetricsSink

	TrustedDomains  []string
	VerificationTTL time.Duration
	ListingTTL      time.Duration
	StatsTTL        time.Duration

	Logger *slog.Logger
}

// Verifier implements the source-verification workflow: cache-aside lookup,
// fetch, analysis, trust scoring, best-effort archival, persistence and the
// reputation side effect.
type Verifier struct {
	fetcher    ports.PageFetcher
	analyzer   ports.ContentAnalyzer
	cache      ports.Cache
	archiver   ports.Archiver
	reputation ports.ReputationClient
	repository ports.SourceRepository
	metrics    ports.MetricsSink

	trustedDomains  []string
	verificationTTL time.Duration
	listingTTL      time.Duration
	statsTTL        time.Duration

	logger *slog.Logger
}

// NewVerifier constructs the orchestration component.
func NewVerifier(deps VerifierDeps) *Verifier {
	if deps.VerificationTTL <= 0 {
		deps.VerificationTTL = time.Hour
	}
	if deps.ListingTTL <= 0 {
		deps.ListingTTL = 10 * time.Minute
	}
	if deps.StatsTTL <= 0 {
		deps.StatsTTL = 5 * time.Minute
	}

	return &Verifier{
		fetcher:         deps.Fetcher,
		analyzer:        deps.Analyzer,
		cache:           deps.Cache,
		archiver:        deps.Archiver,
		reputation:      deps.Reputation,
		repository:      deps.Repository,
		metrics:         deps.Metrics,
		trustedDomains:  deps.TrustedDomains,
		verificationTTL: deps.VerificationTTL,
		listingTTL:      deps.ListingTTL,
		statsTTL:        deps.StatsTTL,
		logger:          deps.Logger,
	}
}

// VerifySource runs the full pipeline for one URL. Only URL validation and
// fetch failures abort the call; every later stage degrades and the result
// is still returned.
func (v *Verifier) VerifySource(ctx context.Context, input domain.VerifyInput, requesterID string) (domain.VerificationResult, error) {
	cacheKey := verificationKeyPrefix + input.URL
	if v.cache != nil {
		cached, ok := v.cache.Get(cacheKey)
		v.recordLookup(ok)
		if ok {
			if result, isResult := cached.(domain.VerificationResult); isResult {
				return result.Clone(), nil
			}
		}
	}

	parsed, err := domain.ValidateURL(input.URL)
	if err != nil {
		return domain.VerificationResult{}, err
	}
	host := strings.ToLower(parsed.Hostname())
	domainTrusted := trust.IsDomainTrusted(host, v.trustedDomains)

	fetchStart := time.Now()
	page, err := v.fetcher.Fetch(ctx, input.URL)
	v.observe(StageFetch, fetchStart)
	if err != nil {
		return domain.VerificationResult{}, fmt.Errorf("verify %s: %w", input.URL, err)
	}

	var analysis *domain.ContentAnalysis
	if v.analyzer != nil {
		analyzeStart := time.Now()
		a := v.analyzer.Analyze(page.MainText)
		v.observe(StageAnalyze, analyzeStart)
		analysis = &a
	}

	scoreStart := time.Now()
	score := trust.Score(trust.Signals{
		DomainTrusted:  domainTrusted,
		HasTitle:       page.Title != "",
		HasDescription: page.Description != "",
		HTTPS:          parsed.Scheme == "https",
	}, analysis)
	v.observe(StageScore, scoreStart)

	result := domain.VerificationResult{
		IsValid:         trust.IsValid(score),
		TrustScore:      score,
		Domain:          host,
		IsDomainTrusted: domainTrusted,
		Title:           page.Title,
		Description:     page.Description,
		Analysis:        analysis,
	}

	if score >= trust.ValidThreshold && v.archiver != nil {
		archiveStart := time.Now()
		outcome, archiveErr := v.archiver.Archive(ctx, input.URL)
		v.observe(StageArchive, archiveStart)
		if archiveErr != nil {
			v.warn("archival failed", "url", input.URL, "error", archiveErr)
		}
		if outcome.Status == domain.ArchiveDone {
			result.ArchiveURL = outcome.URL
		}
	}

	if v.cache != nil {
		v.cache.Set(cacheKey, result.Clone(), v.verificationTTL)
	}

	if result.IsValid && v.reputation != nil {
		if repErr := v.reputation.AwardAction(ctx, requesterID, ActionSourceVerified); repErr != nil {
			v.warn("reputation award failed", "user", requesterID, "error", repErr)
		}
	}

	if v.repository != nil {
		persistStart := time.Now()
		persistErr := v.repository.SaveVerified(ctx, domain.VerifiedSource{
			URL:         input.URL,
			Domain:      result.Domain,
			Title:       result.Title,
			Description: result.Description,
			TrustScore:  result.TrustScore,
			IsValid:     result.IsValid,
			ArchiveURL:  result.ArchiveURL,
			Category:    category(analysis),
			Topics:      topics(analysis),
			SubmitterID: requesterID,
			DebateID:    input.DebateID,
			Tags:        input.Tags,
		})
		v.observe(StagePersist, persistStart)
		if persistErr != nil {
			// The result is derived data; losing the row is recoverable.
			v.warn("persist failed", "url", input.URL, "error", persistErr)
		}
	}

	return result, nil
}

// ListUserSources returns a user's verified sources, cache-aside.
func (v *Verifier) ListUserSources(ctx context.Context, userID string) ([]domain.VerifiedSource, error) {
	return v.cachedList(ctx, userSourcesKeyPrefix+userID, func() ([]domain.VerifiedSource, error) {
		return v.repository.ListByUser(ctx, userID)
	})
}

// ListDebateSources returns the sources attached to a debate, cache-aside.
func (v *Verifier) ListDebateSources(ctx context.Context, debateID string) ([]domain.VerifiedSource, error) {
	return v.cachedList(ctx, debateSourcesKeyPrefix+debateID, func() ([]domain.VerifiedSource, error) {
		return v.repository.ListByDebate(ctx, debateID)
	})
}

// Stats returns aggregate counts over stored sources, cache-aside.
func (v *Verifier) Stats(ctx context.Context) (domain.SourceStats, error) {
	if v.cache != nil {
		if cached, ok := v.cache.Get(statsKey); ok {
			if stats, isStats := cached.(domain.SourceStats); isStats {
				return stats, nil
			}
		}
	}

	if v.repository == nil {
		return domain.SourceStats{ByCategory: map[string]int{}}, nil
	}

	stats, err := v.repository.AggregateStats(ctx)
	if err != nil {
		return domain.SourceStats{}, fmt.Errorf("aggregate stats: %w", err)
	}

	if v.cache != nil {
		v.cache.Set(statsKey, stats, v.statsTTL)
	}
	return stats, nil
}

func (v *Verifier) cachedList(ctx context.Context, key string, load func() ([]domain.VerifiedSource, error)) ([]domain.VerifiedSource, error) {
	if v.cache != nil {
		if cached, ok := v.cache.Get(key); ok {
			if sources, isList := cached.([]domain.VerifiedSource); isList {
				return sources, nil
			}
		}
	}

	if v.repository == nil {
		return nil, nil
	}

	sources, err := load()
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	if v.cache != nil {
		v.cache.Set(key, sources, v.listingTTL)
	}
	return sources, nil
}

func (v *Verifier) observe(stage string, start time.Time) {
	if v.metrics != nil {
		v.metrics.ObserveStage(stage, time.Since(start))
	}
}

func (v *Verifier) recordLookup(hit bool) {
	if v.metrics != nil {
		v.metrics.RecordCacheLookup(hit)
	}
}

func (v *Verifier) warn(msg string, args ...any) {
	if v.logger != nil {
		v.logger.Warn(msg, args...)
	}
}

func category(analysis *domain.ContentAnalysis) string {
	if analysis == nil {
		return ""
	}
	return analysis.Category
}

func topics(analysis *domain.ContentAnalysis) []string {
	if analysis == nil {
		return nil
	}
	return analysis.Topics
}
