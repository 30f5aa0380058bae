// Package embedcache memoizes query embeddings on disk so repeated retrieval
// queries never re-hit the embedding provider across tasks or runs.
//
// The cache is an optimization, never a correctness dependency: a missing or
// corrupt cache file resets to empty and every embedding is recoverable by
// recomputation.
package embedcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/gofrs/flock"
)

// PrecomputeBatchSize is how many missing queries are grouped into one
// embedding request during Precompute.
const PrecomputeBatchSize = 20

// Cache maps exact query strings to their embedding vectors. It is
// append-only during a run and safe for concurrent use.
//
// Persistence policy: an ad-hoc miss saves the file immediately (safety);
// Precompute saves once after all batches (efficiency). Saves are atomic
// (temp file + rename) and guarded by a file lock against concurrent
// processes, so a torn cache file cannot occur.
type Cache struct {
	path     string
	embedder ai.Embedder
	logger   *slog.Logger
	fileLock *flock.Flock

	mu      sync.Mutex
	entries map[string][]float32
}

// New creates a Cache backed by the file at path, loading any existing
// entries. A corrupt or unreadable file is logged and replaced with an
// empty cache rather than failing.
func New(path string, embedder ai.Embedder, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cache{
		path:     path,
		embedder: embedder,
		logger:   logger,
		fileLock: flock.New(path + ".lock"),
		entries:  make(map[string][]float32),
	}
	c.load()
	return c
}

func (c *Cache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("unreadable query cache, starting fresh", "path", c.path, "error", err)
		}
		return
	}

	var entries map[string][]float32
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("corrupt query cache, starting fresh", "path", c.path, "error", err)
		return
	}

	c.entries = entries
	c.logger.Debug("loaded query cache", "entries", len(entries))
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Embedding returns the embedding for query, computing and persisting it on
// a miss. Two goroutines missing on the same key may both call the provider
// (they produce the same value); the stored entry is written once.
func (c *Cache) Embedding(ctx context.Context, query string) ([]float32, error) {
	c.mu.Lock()
	if vec, ok := c.entries[query]; ok {
		c.mu.Unlock()
		return vec, nil
	}
	c.mu.Unlock()

	vecs, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	vec := vecs[0]

	c.mu.Lock()
	if existing, ok := c.entries[query]; ok {
		// Lost the race; keep the first write.
		c.mu.Unlock()
		return existing, nil
	}
	c.entries[query] = vec
	err = c.saveLocked()
	c.mu.Unlock()

	if err != nil {
		// The entry is still usable in memory for this run.
		c.logger.Warn("persisting query cache", "error", err)
	}
	return vec, nil
}

// Precompute embeds every query not already cached, grouping misses into
// batches of PrecomputeBatchSize, and persists once at the end.
func (c *Cache) Precompute(ctx context.Context, queries []string) error {
	c.mu.Lock()
	var missing []string
	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		if seen[q] {
			continue
		}
		seen[q] = true
		if _, ok := c.entries[q]; !ok {
			missing = append(missing, q)
		}
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		c.logger.Debug("all queries already cached")
		return nil
	}

	c.logger.Info("precomputing query embeddings", "missing", len(missing))

	for start := 0; start < len(missing); start += PrecomputeBatchSize {
		end := min(start+PrecomputeBatchSize, len(missing))
		batch := missing[start:end]

		vecs, err := c.embed(ctx, batch)
		if err != nil {
			return fmt.Errorf("embedding batch starting at %d: %w", start, err)
		}

		c.mu.Lock()
		for i, q := range batch {
			c.entries[q] = vecs[i]
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.saveLocked(); err != nil {
		return fmt.Errorf("persisting query cache: %w", err)
	}
	return nil
}

// embed runs one grouped embedding request and returns vectors aligned with
// the input queries.
func (c *Cache) embed(ctx context.Context, queries []string) ([][]float32, error) {
	input := make([]*ai.Document, len(queries))
	for i, q := range queries {
		input[i] = ai.DocumentFromText(q, nil)
	}

	resp, err := c.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("embedding %d queries: %w", len(queries), err)
	}
	if len(resp.Embeddings) != len(queries) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), len(queries))
	}

	vecs := make([][]float32, len(queries))
	for i, e := range resp.Embeddings {
		if len(e.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding returned for query %q", queries[i])
		}
		vecs[i] = e.Embedding
	}
	return vecs, nil
}

// saveLocked writes the cache atomically: serialize to a temp file in the
// same directory, then rename over the target. The file lock excludes other
// processes for the duration. Caller must hold c.mu.
func (c *Cache) saveLocked() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0750); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if err := c.fileLock.Lock(); err != nil {
		return fmt.Errorf("locking cache file: %w", err)
	}
	defer func() {
		if err := c.fileLock.Unlock(); err != nil {
			c.logger.Warn("unlocking cache file", "error", err)
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".query_cache_*.json")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing cache file: %w", err)
	}

	c.logger.Debug("query cache saved", "entries", len(c.entries))
	return nil
}
