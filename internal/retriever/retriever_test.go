package retriever

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ladinzgit/personasim/internal/log"
	"github.com/ladinzgit/personasim/internal/review"
)

type fakeEmbeddings struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbeddings) Embedding(ctx context.Context, query string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type fakeStore struct {
	hits       []review.Hit
	err        error
	gotCutoff  int
	gotTopK    int
	gotVecHead float32
}

func (f *fakeStore) SearchBefore(ctx context.Context, embedding []float32, cutoffInt, topK int) ([]review.Hit, error) {
	if len(embedding) > 0 {
		f.gotVecHead = embedding[0]
	}
	f.gotCutoff = cutoffInt
	f.gotTopK = topK
	return f.hits, f.err
}

func TestRetrieve_FormatsDatedSnippets(t *testing.T) {
	store := &fakeStore{hits: []review.Hit{
		{Document: review.Document{Content: "Amazing story", DateInt: 20201215}},
		{Document: review.Document{Content: "Crashes constantly", DateInt: 20201220}},
	}}
	r := New(&fakeEmbeddings{vec: []float32{0.5}}, store, log.NewNop())

	got, err := r.Retrieve(context.Background(), "worth buying?", "2020-12-31", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	want := []string{
		"- [2020-12-15] Amazing story...",
		"- [2020-12-20] Crashes constantly...",
	}
	if len(got) != len(want) {
		t.Fatalf("Retrieve() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snippet %d = %q, want %q", i, got[i], want[i])
		}
	}

	if store.gotCutoff != 20201231 {
		t.Errorf("cutoff passed to store = %d, want 20201231", store.gotCutoff)
	}
	if store.gotTopK != 5 {
		t.Errorf("topK passed to store = %d, want 5", store.gotTopK)
	}
}

func TestRetrieve_UsesCachedEmbedding(t *testing.T) {
	embeddings := &fakeEmbeddings{vec: []float32{0.25}}
	store := &fakeStore{}
	r := New(embeddings, store, log.NewNop())

	if _, err := r.Retrieve(context.Background(), "q", "2021-01-01", 3); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if embeddings.calls != 1 {
		t.Errorf("embedding source called %d times, want 1", embeddings.calls)
	}
	if store.gotVecHead != 0.25 {
		t.Errorf("store received embedding head %v, want 0.25", store.gotVecHead)
	}
}

func TestRetrieve_InvalidCutoff(t *testing.T) {
	r := New(&fakeEmbeddings{vec: []float32{1}}, &fakeStore{}, log.NewNop())

	for _, cutoff := range []string{"2021/01/01", "20210101", "soon", ""} {
		_, err := r.Retrieve(context.Background(), "q", cutoff, 5)
		if !errors.Is(err, ErrInvalidCutoff) {
			t.Errorf("Retrieve() with cutoff %q = %v, want ErrInvalidCutoff", cutoff, err)
		}
	}
}

func TestRetrieve_EmptyResultIsNotError(t *testing.T) {
	r := New(&fakeEmbeddings{vec: []float32{1}}, &fakeStore{hits: nil}, log.NewNop())

	got, err := r.Retrieve(context.Background(), "q", "2021-01-01", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Retrieve() = %v, want empty", got)
	}
}

func TestRetrieve_NonPositiveTopKUsesDefault(t *testing.T) {
	store := &fakeStore{}
	r := New(&fakeEmbeddings{vec: []float32{1}}, store, log.NewNop())

	if _, err := r.Retrieve(context.Background(), "q", "2021-01-01", 0); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if store.gotTopK != DefaultTopK {
		t.Errorf("topK = %d, want default %d", store.gotTopK, DefaultTopK)
	}
}

func TestRetrieve_TruncatesLongReviews(t *testing.T) {
	long := strings.Repeat("x", 1000)
	store := &fakeStore{hits: []review.Hit{
		{Document: review.Document{Content: long, DateInt: 20200101}},
	}}
	r := New(&fakeEmbeddings{vec: []float32{1}}, store, log.NewNop())

	got, err := r.Retrieve(context.Background(), "q", "2021-01-01", 1)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	// "- [2020-01-01] " prefix + 400 chars + "..." suffix
	wantLen := len("- [2020-01-01] ") + SnippetMaxChars + len("...")
	if len(got[0]) != wantLen {
		t.Errorf("snippet length = %d, want %d", len(got[0]), wantLen)
	}
}

func TestRetrieve_TruncatesOnRuneBoundary(t *testing.T) {
	// 3-byte runes: a byte-index cut at 400 would land mid-rune and leave
	// an invalid UTF-8 tail in the prompt.
	long := strings.Repeat("굉", 500)
	store := &fakeStore{hits: []review.Hit{
		{Document: review.Document{Content: long, DateInt: 20200101}},
	}}
	r := New(&fakeEmbeddings{vec: []float32{1}}, store, log.NewNop())

	got, err := r.Retrieve(context.Background(), "q", "2021-01-01", 1)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if !utf8.ValidString(got[0]) {
		t.Errorf("snippet is not valid UTF-8: %q", got[0])
	}
	wantRunes := utf8.RuneCountInString("- [2020-01-01] ") + SnippetMaxChars + len("...")
	if n := utf8.RuneCountInString(got[0]); n != wantRunes {
		t.Errorf("snippet rune count = %d, want %d", n, wantRunes)
	}
}

func TestRetrieve_EmbeddingError(t *testing.T) {
	r := New(&fakeEmbeddings{err: errors.New("provider down")}, &fakeStore{}, log.NewNop())
	if _, err := r.Retrieve(context.Background(), "q", "2021-01-01", 5); err == nil {
		t.Fatal("Retrieve() = nil error, want embedding error")
	}
}
