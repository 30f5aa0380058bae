package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ladinzgit/personasim/internal/app"
	"github.com/ladinzgit/personasim/internal/persona"
)

func newPrecomputeCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "precompute",
		Short: "Precompute and cache embeddings for every persona query",
		Long: `Embeds the full persona query set up front so simulation runs never pay
per-query embedding latency. Already-cached queries are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := app.Setup(ctx, r.cfg, r.logger, app.Options{SkipDatabase: true})
			if err != nil {
				return err
			}
			defer a.Close()

			cache := a.NewCache()
			queries := persona.AllQueries()
			if err := cache.Precompute(ctx, queries); err != nil {
				return fmt.Errorf("precomputing query embeddings: %w", err)
			}

			fmt.Printf("Cache holds %d embeddings (%d persona queries) at %s\n",
				cache.Len(), len(queries), r.cfg.CacheFile)
			return nil
		},
	}
}
