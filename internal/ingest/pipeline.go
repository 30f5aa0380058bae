// Package ingest bulk-loads raw reviews into the vector store: filter,
// resolve dates, embed in fixed-size batches, and upsert. Batches fan out
// over a bounded worker pool; one failed batch never aborts the run.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/firebase/genkit/go/ai"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ladinzgit/personasim/internal/retry"
	"github.com/ladinzgit/personasim/internal/review"
)

// DefaultBatchSize is the number of documents embedded per provider call.
const DefaultBatchSize = 512

// DefaultWorkers bounds concurrent embed-and-write batches.
const DefaultWorkers = 3

// DocumentStore is the write side of the vector store.
// Satisfied by store.Store.
type DocumentStore interface {
	AddBatch(ctx context.Context, docs []review.Document, embeddings [][]float32) (int, error)
	Count(ctx context.Context) (int64, error)
}

// Options tune a pipeline run. Zero values fall back to defaults.
type Options struct {
	// BatchSize is the embed/write batch size.
	BatchSize int

	// Workers bounds concurrently processed batches.
	Workers int

	// Language keeps only reviews in this language. Empty keeps all.
	Language string

	// Source tags every written document (e.g. "steam").
	Source string

	// Limiter throttles embedding calls across workers. nil means no
	// client-side throttle; the retry policy still absorbs 429s.
	Limiter *rate.Limiter

	// Retry is applied per batch. Zero value means retry.Default.
	Retry retry.Policy
}

// Report summarizes a pipeline run.
type Report struct {
	// Input is the number of reviews handed to Run.
	Input int

	// Filtered is the number dropped by the language/empty-text filter.
	Filtered int

	// SkippedTimestamps counts reviews with no usable date field.
	SkippedTimestamps int

	// Written is the number of documents upserted into the store.
	Written int

	// FailedBatches counts batches that exhausted retries; their documents
	// are not written.
	FailedBatches int

	// StoreCount is the store's total row count after the run, -1 when the
	// count query itself failed.
	StoreCount int64
}

// Pipeline embeds and stores review corpora.
type Pipeline struct {
	embedder ai.Embedder
	store    DocumentStore
	logger   *slog.Logger
	opts     Options
}

// New creates a Pipeline. A zero Options is valid.
func New(embedder ai.Embedder, store DocumentStore, logger *slog.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Default
	}
	return &Pipeline{embedder: embedder, store: store, logger: logger, opts: opts}
}

// Run ingests reviews end to end and reports what happened. Only a context
// error or a fully failed setup returns a non-nil error; individual batch
// failures are counted in the report instead.
func (p *Pipeline) Run(ctx context.Context, reviews []review.Review) (Report, error) {
	report := Report{Input: len(reviews), StoreCount: -1}

	docs, skipped, filtered := p.prepare(reviews)
	report.SkippedTimestamps = skipped
	report.Filtered = filtered

	p.logger.Info("ingestion prepared",
		"input", report.Input,
		"documents", len(docs),
		"filtered", filtered,
		"skipped_timestamps", skipped)

	var written, failedBatches atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for start := 0; start < len(docs); start += p.opts.BatchSize {
		end := start + p.opts.BatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]
		batchNum := start/p.opts.BatchSize + 1

		g.Go(func() error {
			n, err := p.processBatch(gctx, batch)
			if err != nil {
				// Batch failures are tolerated; only context errors
				// propagate and cancel the group.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failedBatches.Add(1)
				p.logger.Error("batch failed", "batch", batchNum, "size", len(batch), "error", err)
				return nil
			}
			written.Add(int64(n))
			p.logger.Debug("batch written", "batch", batchNum, "documents", n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	report.Written = int(written.Load())
	report.FailedBatches = int(failedBatches.Load())

	if count, err := p.store.Count(ctx); err != nil {
		p.logger.Warn("store count failed", "error", err)
	} else {
		report.StoreCount = count
	}

	p.logger.Info("ingestion complete",
		"written", report.Written,
		"failed_batches", report.FailedBatches,
		"store_count", report.StoreCount)
	return report, nil
}

// prepare filters and converts reviews to documents, counting what it drops.
// Records without a natural ID get a positional one; the upsert keys on ID,
// so every document must carry a distinct stable identifier.
func (p *Pipeline) prepare(reviews []review.Review) (docs []review.Document, skipped, filtered int) {
	for i, r := range reviews {
		if strings.TrimSpace(r.Text) == "" {
			filtered++
			continue
		}
		if p.opts.Language != "" && !strings.EqualFold(r.Language, p.opts.Language) {
			filtered++
			continue
		}

		dateInt, err := r.ResolveDate()
		if err != nil {
			skipped++
			continue
		}

		id := r.ID
		if id == "" {
			id = fmt.Sprintf("rev_%d", i)
		}

		docs = append(docs, review.Document{
			ID:       id,
			Content:  r.Text,
			DateInt:  dateInt,
			VotedUp:  r.VotedUp(),
			Playtime: r.PlaytimeHours(),
			Source:   p.opts.Source,
		})
	}
	return docs, skipped, filtered
}

// processBatch embeds one batch (with retry on rate limits) and writes it.
func (p *Pipeline) processBatch(ctx context.Context, batch []review.Document) (int, error) {
	var embeddings [][]float32

	err := p.opts.Retry.Do(ctx, func() error {
		if p.opts.Limiter != nil {
			if err := p.opts.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		vecs, err := p.embedBatch(ctx, batch)
		if err != nil {
			return err
		}
		embeddings = vecs
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("embedding batch: %w", err)
	}

	// The store write gets its own retry window so a rate-limited insert
	// does not force the batch to be re-embedded.
	var n int
	err = p.opts.Retry.Do(ctx, func() error {
		var addErr error
		n, addErr = p.store.AddBatch(ctx, batch, embeddings)
		return addErr
	})
	if err != nil {
		return 0, fmt.Errorf("writing batch: %w", err)
	}
	return n, nil
}

func (p *Pipeline) embedBatch(ctx context.Context, batch []review.Document) ([][]float32, error) {
	inputs := make([]*ai.Document, len(batch))
	for i, doc := range batch {
		inputs[i] = ai.DocumentFromText(doc.Content, nil)
	}

	resp, err := p.embedder.Embed(ctx, &ai.EmbedRequest{Input: inputs})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(batch) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(resp.Embeddings), len(batch))
	}

	vecs := make([][]float32, len(batch))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		vecs[i] = emb.Embedding
	}
	return vecs, nil
}
