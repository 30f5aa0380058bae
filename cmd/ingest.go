package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ladinzgit/personasim/internal/app"
	"github.com/ladinzgit/personasim/internal/ingest"
	"github.com/ladinzgit/personasim/internal/review"
)

func newIngestCmd(r *root) *cobra.Command {
	var (
		language  string
		source    string
		batchSize int
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "ingest <reviews.csv>",
		Short: "Embed a review corpus and load it into the vector store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening reviews file: %w", err)
			}
			defer f.Close()

			reviews, err := review.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("reading reviews: %w", err)
			}

			a, err := app.Setup(ctx, r.cfg, r.logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			var limiter *rate.Limiter
			if r.cfg.EmbedRPS > 0 {
				limiter = rate.NewLimiter(rate.Limit(r.cfg.EmbedRPS), 1)
			}

			pipeline := ingest.New(a.Embedder, a.Store, r.logger.With("component", "ingest"), ingest.Options{
				BatchSize: batchSize,
				Workers:   workers,
				Language:  language,
				Source:    source,
				Limiter:   limiter,
			})

			report, err := pipeline.Run(ctx, reviews)
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d/%d reviews (filtered %d, skipped %d without timestamps, %d failed batches)\n",
				report.Written, report.Input, report.Filtered, report.SkippedTimestamps, report.FailedBatches)
			if report.StoreCount >= 0 {
				fmt.Printf("Store now holds %d documents\n", report.StoreCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "keep only reviews in this language (default: configured language)")
	cmd.Flags().StringVar(&source, "source", "", "source tag stored with each document (default: configured source_tag)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "documents per embedding batch (default: configured batch_size)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent batches (default: configured ingest_workers)")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if language == "" {
			language = r.cfg.Language
		}
		if source == "" {
			source = r.cfg.SourceTag
		}
		if batchSize == 0 {
			batchSize = r.cfg.BatchSize
		}
		if workers == 0 {
			workers = r.cfg.IngestWorkers
		}
	}
	return cmd
}
