package ports

import (
	"context"
	"time"

	"sourceverifier/internal/domain"
)

// PageFetcher retrieves a URL and extracts readable text plus light metadata.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (domain.PageContent, error)
}

// ContentAnalyzer derives analysis signals from extracted text. Pure: same
// text always yields the same analysis.
type ContentAnalyzer interface {
	Analyze(text string) domain.ContentAnalysis
}

// Cache is a TTL key-value store for derived results. Keys are namespaced by
// purpose; entries expire independently and are overwritten on re-computation.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// Archiver snapshots a URL with an external service, best effort.
type Archiver interface {
	Archive(ctx context.Context, rawURL string) (domain.ArchiveOutcome, error)
}

// ReputationClient notifies an external reputation system about a user action.
type ReputationClient interface {
	AwardAction(ctx context.Context, userID, action string) error
}

// MetricsSink receives stage timings and cache lookup outcomes.
type MetricsSink interface {
	ObserveStage(stage string, d time.Duration)
	RecordCacheLookup(hit bool)
}

// SourceRepository persists and queries verified source records.
type SourceRepository interface {
	SaveVerified(ctx context.Context, src domain.VerifiedSource) error
	ListByUser(ctx context.Context, userID string) ([]domain.VerifiedSource, error)
	ListByDebate(ctx context.Context, debateID string) ([]domain.VerifiedSource, error)
	AggregateStats(ctx context.Context) (domain.SourceStats, error)
}
