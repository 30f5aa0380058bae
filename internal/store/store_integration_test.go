package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/ladinzgit/personasim/internal/log"
	"github.com/ladinzgit/personasim/internal/review"
	"github.com/ladinzgit/personasim/internal/testutil"
)

// unitVector returns a 1536-dim unit vector with a single nonzero component,
// giving predictable cosine distances between distinct axes.
func unitVector(axis int) []float32 {
	v := make([]float32, 1536)
	v[axis%1536] = 1
	return v
}

func TestStore_CutoffFiltering_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tc, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	s := New(tc.Pool, log.NewNop())

	docs := []review.Document{
		{ID: "r1", Content: "T1", DateInt: 20200101, Source: "test"},
		{ID: "r2", Content: "T2", DateInt: 20200601, Source: "test"},
		{ID: "r3", Content: "T3", DateInt: 20210101, Source: "test"},
	}
	// All three share the same axis so ranking is by insertion noise only;
	// what matters here is the date predicate.
	embeddings := [][]float32{unitVector(0), unitVector(0), unitVector(0)}

	written, err := s.AddBatch(ctx, docs, embeddings)
	if err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}
	if written != 3 {
		t.Fatalf("AddBatch() wrote %d, want 3", written)
	}

	hits, err := s.SearchBefore(ctx, unitVector(0), 20201231, 5)
	if err != nil {
		t.Fatalf("SearchBefore() error = %v", err)
	}

	got := make(map[string]bool, len(hits))
	for _, h := range hits {
		got[h.Content] = true
		if h.DateInt > 20201231 {
			t.Errorf("hit %q dated %d is after cutoff", h.ID, h.DateInt)
		}
	}
	if !got["T1"] || !got["T2"] || got["T3"] {
		t.Errorf("SearchBefore() returned %v, want exactly {T1, T2}", got)
	}
}

func TestStore_TopKAndOrdering_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tc, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	s := New(tc.Pool, log.NewNop())

	var docs []review.Document
	var embeddings [][]float32
	for i := 0; i < 10; i++ {
		docs = append(docs, review.Document{
			ID:      fmt.Sprintf("r%d", i),
			Content: fmt.Sprintf("review %d", i),
			DateInt: 20200101,
		})
		embeddings = append(embeddings, unitVector(i))
	}
	if _, err := s.AddBatch(ctx, docs, embeddings); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}

	hits, err := s.SearchBefore(ctx, unitVector(3), 20251231, 4)
	if err != nil {
		t.Fatalf("SearchBefore() error = %v", err)
	}
	if len(hits) > 4 {
		t.Fatalf("SearchBefore() returned %d hits, want at most 4", len(hits))
	}
	if len(hits) == 0 || hits[0].ID != "r3" {
		t.Errorf("closest hit = %+v, want r3 first", hits)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("hits not ordered by distance: %v then %v", hits[i-1].Distance, hits[i].Distance)
		}
	}
}

func TestStore_CountAndUpsert_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tc, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	s := New(tc.Pool, log.NewNop())

	docs := []review.Document{{ID: "dup", Content: "v1", DateInt: 20200101}}
	if _, err := s.AddBatch(ctx, docs, [][]float32{unitVector(0)}); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}

	// Same ID again: upsert, not a second row.
	docs[0].Content = "v2"
	if _, err := s.AddBatch(ctx, docs, [][]float32{unitVector(0)}); err != nil {
		t.Fatalf("AddBatch() second write error = %v", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	hits, err := s.SearchBefore(ctx, unitVector(0), 20251231, 1)
	if err != nil {
		t.Fatalf("SearchBefore() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Content != "v2" {
		t.Errorf("expected upserted content v2, got %+v", hits)
	}
}

func TestStore_AddBatch_LengthMismatch(t *testing.T) {
	s := New(nil, log.NewNop())
	if _, err := s.AddBatch(context.Background(), []review.Document{{ID: "a"}}, nil); err == nil {
		t.Fatal("AddBatch() = nil error, want length mismatch error")
	}
}
