// Package store persists embedded review documents in PostgreSQL + pgvector
// and serves date-bounded similarity searches over them.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/ladinzgit/personasim/internal/review"
)

// DB is the database surface Store needs. pgxpool.Pool satisfies it;
// defined by the consumer so tests can substitute a fake.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const (
	upsertReviewSQL = `
INSERT INTO reviews (id, content, embedding, review_date, voted_up, playtime, source)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    content = EXCLUDED.content,
    embedding = EXCLUDED.embedding,
    review_date = EXCLUDED.review_date,
    voted_up = EXCLUDED.voted_up,
    playtime = EXCLUDED.playtime,
    source = EXCLUDED.source`

	searchBeforeSQL = `
SELECT id, content, review_date, voted_up, playtime, source,
       embedding <=> $1 AS distance
FROM reviews
WHERE review_date <= $2
ORDER BY embedding <=> $1
LIMIT $3`

	countReviewsSQL = `SELECT count(*) FROM reviews`
)

// Store manages review documents with vector search capabilities.
// Safe for concurrent use by multiple goroutines; concurrency control is
// delegated to the underlying connection pool.
type Store struct {
	db     DB
	logger *slog.Logger
}

// New creates a Store over the given database handle.
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// AddBatch upserts one batch of documents with their embeddings in a single
// database round trip. docs and embeddings must be parallel slices.
// Returns the number of documents written.
func (s *Store) AddBatch(ctx context.Context, docs []review.Document, embeddings [][]float32) (int, error) {
	if len(docs) != len(embeddings) {
		return 0, fmt.Errorf("document/embedding count mismatch: %d vs %d", len(docs), len(embeddings))
	}
	if len(docs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i, doc := range docs {
		vec := pgvector.NewVector(embeddings[i])
		batch.Queue(upsertReviewSQL,
			doc.ID, doc.Content, vec, doc.DateInt, doc.VotedUp, doc.Playtime, doc.Source)
	}

	results := s.db.SendBatch(ctx, batch)
	defer func() {
		if err := results.Close(); err != nil {
			s.logger.Warn("closing batch results", "error", err)
		}
	}()

	written := 0
	for i := range docs {
		if _, err := results.Exec(); err != nil {
			// The remaining queued statements are lost once one fails,
			// so surface the error with the partial count.
			return written, fmt.Errorf("upserting document %q: %w", docs[i].ID, err)
		}
		written++
	}

	s.logger.Debug("batch written", "documents", written)
	return written, nil
}

// searchRow mirrors the searchBeforeSQL projection for pgxscan.
type searchRow struct {
	ID         string  `db:"id"`
	Content    string  `db:"content"`
	ReviewDate int     `db:"review_date"`
	VotedUp    bool    `db:"voted_up"`
	Playtime   float64 `db:"playtime"`
	Source     string  `db:"source"`
	Distance   float64 `db:"distance"`
}

// SearchBefore returns up to topK documents dated on or before cutoffInt
// (YYYYMMDD), ordered by ascending cosine distance to the query embedding.
// An empty result is not an error.
func (s *Store) SearchBefore(ctx context.Context, embedding []float32, cutoffInt, topK int) ([]review.Hit, error) {
	if topK < 1 {
		return nil, fmt.Errorf("topK must be at least 1, got %d", topK)
	}

	vec := pgvector.NewVector(embedding)

	var rows []searchRow
	if err := pgxscan.Select(ctx, s.db, &rows, searchBeforeSQL, vec, cutoffInt, topK); err != nil {
		return nil, fmt.Errorf("searching reviews before %d: %w", cutoffInt, err)
	}

	hits := make([]review.Hit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, review.Hit{
			Document: review.Document{
				ID:       row.ID,
				Content:  row.Content,
				DateInt:  row.ReviewDate,
				VotedUp:  row.VotedUp,
				Playtime: row.Playtime,
				Source:   row.Source,
			},
			Distance: row.Distance,
		})
	}

	return hits, nil
}

// Count returns the total number of stored documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := pgxscan.Get(ctx, s.db, &count, countReviewsSQL); err != nil {
		return 0, fmt.Errorf("counting reviews: %w", err)
	}
	return count, nil
}
