package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"sourceverifier/internal/domain"
	"sourceverifier/internal/ports"
)

// PostgresRepository persists verified sources into Postgres. A nil db
// degrades every operation to a no-op so local runs work without a database.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SourceRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveVerified upserts the verification snapshot for a URL.
func (r *PostgresRepository) SaveVerified(ctx context.Context, src domain.VerifiedSource) error {
	if r.db == nil {
		return nil
	}

	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	if src.CreatedAt.IsZero() {
		src.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.builder.
		Insert("verified_sources").
		Columns("id", "url", "domain", "title", "description", "trust_score",
			"is_valid", "archive_url", "category", "topics", "submitter_id",
			"debate_id", "tags", "created_at").
		Values(src.ID, src.URL, src.Domain, src.Title, src.Description, src.TrustScore,
			src.IsValid, src.ArchiveURL, src.Category, pq.StringArray(src.Topics),
			src.SubmitterID, nullable(src.DebateID), pq.StringArray(src.Tags), src.CreatedAt).
		Suffix(`ON CONFLICT (url, submitter_id) DO UPDATE
                SET trust_score = EXCLUDED.trust_score,
                    is_valid = EXCLUDED.is_valid,
                    archive_url = EXCLUDED.archive_url,
                    category = EXCLUDED.category,
                    topics = EXCLUDED.topics,
                    title = EXCLUDED.title,
                    description = EXCLUDED.description`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert verified source: %w", err)
	}

	return nil
}

// ListByUser returns a user's verified sources, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]domain.VerifiedSource, error) {
	return r.list(ctx, sq.Eq{"submitter_id": userID})
}

// ListByDebate returns the sources attached to a debate, newest first.
func (r *PostgresRepository) ListByDebate(ctx context.Context, debateID string) ([]domain.VerifiedSource, error) {
	return r.list(ctx, sq.Eq{"debate_id": debateID})
}

func (r *PostgresRepository) list(ctx context.Context, where sq.Eq) ([]domain.VerifiedSource, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := r.builder.
		Select("id", "url", "domain", "title", "description", "trust_score",
			"is_valid", "archive_url", "category", "topics", "submitter_id",
			"debate_id", "tags", "created_at").
		From("verified_sources").
		Where(where).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []domain.VerifiedSource
	for rows.Next() {
		var (
			src      domain.VerifiedSource
			topics   pq.StringArray
			tags     pq.StringArray
			debateID sql.NullString
		)
		if err := rows.Scan(&src.ID, &src.URL, &src.Domain, &src.Title, &src.Description,
			&src.TrustScore, &src.IsValid, &src.ArchiveURL, &src.Category, &topics,
			&src.SubmitterID, &debateID, &tags, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.Topics = topics
		src.Tags = tags
		src.DebateID = debateID.String
		out = append(out, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return out, nil
}

// AggregateStats computes totals across all stored sources.
func (r *PostgresRepository) AggregateStats(ctx context.Context) (domain.SourceStats, error) {
	stats := domain.SourceStats{ByCategory: map[string]int{}}
	if r.db == nil {
		return stats, nil
	}

	query, args, err := r.builder.
		Select("COUNT(*)",
			"COUNT(*) FILTER (WHERE is_valid)",
			"COALESCE(AVG(trust_score), 0)").
		From("verified_sources").
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("build totals: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&stats.TotalSources, &stats.ValidSources, &stats.AverageTrustScore); err != nil {
		return stats, fmt.Errorf("scan totals: %w", err)
	}

	query, args, err = r.builder.
		Select("category", "COUNT(*)").
		From("verified_sources").
		GroupBy("category").
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("build category counts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return stats, fmt.Errorf("scan category count: %w", err)
		}
		stats.ByCategory[category] = count
	}

	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("rows iteration: %w", err)
	}

	return stats, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
