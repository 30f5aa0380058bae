// Package app assembles the application: configuration, tracing, database
// pool, genkit, and the simulation components, with teardown in reverse
// order via Close.
package app

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/ladinzgit/personasim/internal/config"
	"github.com/ladinzgit/personasim/internal/embedcache"
	"github.com/ladinzgit/personasim/internal/log"
	"github.com/ladinzgit/personasim/internal/retriever"
	"github.com/ladinzgit/personasim/internal/store"
)

// App holds the initialized application components.
type App struct {
	Config *config.Config
	Logger log.Logger

	DBPool   *pgxpool.Pool
	Genkit   *genkit.Genkit
	Embedder ai.Embedder

	Store     *store.Store
	Cache     *embedcache.Cache
	Retriever *retriever.Retriever

	otelCleanup func()
	dbCleanup   func()
}

// Close releases resources in reverse initialization order. Safe to call on
// a partially initialized App.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.dbCleanup != nil {
		a.dbCleanup()
		a.dbCleanup = nil
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
		a.otelCleanup = nil
	}
	return nil
}

// NewCache builds the query-embedding cache over the app's embedder at the
// configured path.
func (a *App) NewCache() *embedcache.Cache {
	return embedcache.New(a.Config.CacheFile, a.Embedder, a.Logger)
}
