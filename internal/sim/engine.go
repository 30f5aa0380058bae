// Package sim runs the persona purchase simulation: every persona decides,
// for every simulation date, whether to buy, given only evidence published
// on or before that date. Tasks fan out under two independent bounds - one
// for in-flight model calls, one for store-backed retrieval.
package sim

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ladinzgit/personasim/internal/persona"
	"github.com/ladinzgit/personasim/internal/retry"
)

// DefaultConcurrency bounds in-flight model calls.
const DefaultConcurrency = 100

// DefaultRetrievalWorkers bounds concurrent store lookups.
const DefaultRetrievalWorkers = 8

// EvidenceSource serves dated review snippets for a query, restricted to the
// given cutoff. Satisfied by retriever.Retriever.
type EvidenceSource interface {
	Retrieve(ctx context.Context, query, cutoff string, topK int) ([]string, error)
}

// Decision is one persona's verdict on one simulation date. Static runs use
// an empty Date.
type Decision struct {
	PersonaID   string
	Date        string
	Verdict     string // normalized model decision text
	Affirmative bool
	Reasoning   string
}

// Report summarizes one simulation run.
type Report struct {
	RunID     string
	Tasks     int
	Succeeded int
	Failed    int
}

// Options tune an Engine. Zero values fall back to defaults.
type Options struct {
	// Concurrency bounds in-flight model calls.
	Concurrency int

	// RetrievalWorkers bounds concurrent retrieval calls, independently of
	// Concurrency, so a wide model fan-out cannot saturate the store.
	RetrievalWorkers int

	// TopK is the per-query evidence count.
	TopK int

	// Retry is applied per model call. Zero value retries transient
	// provider errors with the default policy.
	Retry retry.Policy
}

// Engine executes simulation runs.
type Engine struct {
	evidence EvidenceSource
	model    DecisionModel
	logger   *slog.Logger
	opts     Options
	sem      *semaphore.Weighted
}

// New creates an Engine. evidence may be nil only if the engine is used
// exclusively for static runs.
func New(evidence EvidenceSource, model DecisionModel, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.RetrievalWorkers < 1 {
		opts.RetrievalWorkers = DefaultRetrievalWorkers
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Policy{
			MaxAttempts: retry.Default.MaxAttempts,
			BaseDelay:   retry.Default.BaseDelay,
			MaxDelay:    retry.Default.MaxDelay,
			Jitter:      retry.Default.Jitter,
			Retryable:   retry.Transient,
		}
	}
	return &Engine{
		evidence: evidence,
		model:    model,
		logger:   logger,
		opts:     opts,
		sem:      semaphore.NewWeighted(int64(opts.RetrievalWorkers)),
	}
}

// Run simulates every persona on every date and returns the successful
// decisions sorted by (date, persona). Individual task failures are counted
// in the report; only a context error aborts the run.
func (e *Engine) Run(ctx context.Context, personas []persona.Persona, dates []string) ([]Decision, Report, error) {
	report := Report{RunID: uuid.NewString(), Tasks: len(personas) * len(dates)}
	e.logger.Info("simulation starting",
		"run_id", report.RunID,
		"personas", len(personas),
		"dates", len(dates),
		"tasks", report.Tasks,
		"concurrency", e.opts.Concurrency)

	var (
		mu        sync.Mutex
		decisions []Decision
		failed    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for _, date := range dates {
		for _, p := range personas {
			g.Go(func() error {
				d, err := e.runTask(gctx, p, date)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					mu.Lock()
					failed++
					mu.Unlock()
					e.logger.Warn("task failed", "persona", p.ID, "date", date, "error", err)
					return nil
				}
				mu.Lock()
				decisions = append(decisions, d)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, report, err
	}

	sort.Slice(decisions, func(i, j int) bool {
		if decisions[i].Date != decisions[j].Date {
			return decisions[i].Date < decisions[j].Date
		}
		return decisions[i].PersonaID < decisions[j].PersonaID
	})

	report.Succeeded = len(decisions)
	report.Failed = failed
	e.logger.Info("simulation complete",
		"run_id", report.RunID,
		"succeeded", report.Succeeded,
		"failed", report.Failed)
	return decisions, report, nil
}

// RunStatic asks every persona once, with no evidence and no date. The
// resulting yes-ratio is a time-invariant baseline.
func (e *Engine) RunStatic(ctx context.Context, personas []persona.Persona) ([]Decision, Report, error) {
	report := Report{RunID: uuid.NewString(), Tasks: len(personas)}
	e.logger.Info("static simulation starting", "run_id", report.RunID, "personas", len(personas))

	var (
		mu        sync.Mutex
		decisions []Decision
		failed    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for _, p := range personas {
		g.Go(func() error {
			out, err := e.decide(gctx, systemPrompt(p), staticPrompt())
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				failed++
				mu.Unlock()
				e.logger.Warn("task failed", "persona", p.ID, "error", err)
				return nil
			}
			verdict, affirmative := parseVerdict(out.Decision)
			mu.Lock()
			decisions = append(decisions, Decision{
				PersonaID:   p.ID,
				Verdict:     verdict,
				Affirmative: affirmative,
				Reasoning:   out.Reasoning,
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, report, err
	}

	sort.Slice(decisions, func(i, j int) bool { return decisions[i].PersonaID < decisions[j].PersonaID })

	report.Succeeded = len(decisions)
	report.Failed = failed
	return decisions, report, nil
}

func (e *Engine) runTask(ctx context.Context, p persona.Persona, date string) (Decision, error) {
	evidence, err := e.gatherEvidence(ctx, p, date)
	if err != nil {
		return Decision{}, err
	}

	out, err := e.decide(ctx, systemPrompt(p), dynamicPrompt(date, evidence))
	if err != nil {
		return Decision{}, err
	}

	verdict, affirmative := parseVerdict(out.Decision)
	return Decision{
		PersonaID:   p.ID,
		Date:        date,
		Verdict:     verdict,
		Affirmative: affirmative,
		Reasoning:   out.Reasoning,
	}, nil
}

// gatherEvidence runs the persona's query set against the store, each lookup
// gated by the retrieval semaphore, and dedupes snippets across queries.
func (e *Engine) gatherEvidence(ctx context.Context, p persona.Persona, date string) ([]string, error) {
	seen := make(map[string]bool)
	var evidence []string

	for _, query := range persona.QueriesFor(p.Type) {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		snippets, err := e.evidence.Retrieve(ctx, query, date, e.opts.TopK)
		e.sem.Release(1)
		if err != nil {
			return nil, err
		}

		for _, s := range snippets {
			if !seen[s] {
				seen[s] = true
				evidence = append(evidence, s)
			}
		}
	}
	return evidence, nil
}

func (e *Engine) decide(ctx context.Context, system, prompt string) (Output, error) {
	var out Output
	err := e.opts.Retry.Do(ctx, func() error {
		var decideErr error
		out, decideErr = e.model.Decide(ctx, system, prompt)
		return decideErr
	})
	return out, err
}

// parseVerdict normalizes the model's decision text. A YES prefix, ignoring
// case and surrounding whitespace, is affirmative; anything else is negative.
func parseVerdict(raw string) (string, bool) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	return norm, strings.HasPrefix(norm, "YES")
}
