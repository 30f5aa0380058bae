// Package retriever serves time-filtered evidence snippets from the review
// store. A retrieval call never sees documents dated after its cutoff, which
// is what keeps the simulation honest about what a persona could have known
// on a given day.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ladinzgit/personasim/internal/review"
)

// ErrInvalidCutoff indicates the cutoff date is not a valid YYYY-MM-DD date.
// A malformed cutoff is a caller bug and is surfaced rather than silently
// replaced with a default.
var ErrInvalidCutoff = errors.New("invalid cutoff date")

// SnippetMaxChars is the per-snippet character budget for evidence text.
const SnippetMaxChars = 400

// DefaultTopK is used when a caller asks for a non-positive result count.
const DefaultTopK = 5

// EmbeddingSource resolves query text to an embedding vector. Satisfied by
// embedcache.Cache; the retriever never computes embeddings independently.
type EmbeddingSource interface {
	Embedding(ctx context.Context, query string) ([]float32, error)
}

// SearchStore performs the date-bounded similarity search.
// Satisfied by store.Store.
type SearchStore interface {
	SearchBefore(ctx context.Context, embedding []float32, cutoffInt, topK int) ([]review.Hit, error)
}

// Retriever wraps the vector store with query-embedding caching and
// snippet formatting.
type Retriever struct {
	embeddings EmbeddingSource
	store      SearchStore
	logger     *slog.Logger
}

// New creates a Retriever.
func New(embeddings EmbeddingSource, store SearchStore, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embeddings: embeddings, store: store, logger: logger}
}

// Retrieve returns up to topK formatted evidence snippets for query,
// restricted to documents dated on or before cutoff (YYYY-MM-DD), in the
// store's similarity order. An empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query, cutoff string, topK int) ([]string, error) {
	cutoffInt, err := review.DateInt(cutoff)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCutoff, cutoff)
	}

	if topK < 1 {
		topK = DefaultTopK
	}

	embedding, err := r.embeddings.Embedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("resolving query embedding: %w", err)
	}

	hits, err := r.store.SearchBefore(ctx, embedding, cutoffInt, topK)
	if err != nil {
		return nil, fmt.Errorf("searching store: %w", err)
	}

	snippets := make([]string, 0, len(hits))
	for _, hit := range hits {
		snippets = append(snippets, formatSnippet(hit.Document))
	}

	r.logger.Debug("retrieved evidence", "query", query, "cutoff", cutoff, "hits", len(snippets))
	return snippets, nil
}

// formatSnippet renders one hit as a dated evidence line, truncating the
// review body to the snippet budget. The budget counts characters, not
// bytes, so multi-byte text is never cut mid-rune.
func formatSnippet(doc review.Document) string {
	body := doc.Content
	if len(body) > SnippetMaxChars {
		if runes := []rune(body); len(runes) > SnippetMaxChars {
			body = string(runes[:SnippetMaxChars])
		}
	}
	return fmt.Sprintf("- [%s] %s...", review.FormatDateInt(doc.DateInt), body)
}
