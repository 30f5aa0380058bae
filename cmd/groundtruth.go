package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ladinzgit/personasim/internal/groundtruth"
	"github.com/ladinzgit/personasim/internal/review"
)

func newGroundTruthCmd(r *root) *cobra.Command {
	var (
		out      string
		language string
		noPlot   bool
	)

	cmd := &cobra.Command{
		Use:   "groundtruth <reviews.csv>",
		Short: "Build the daily sentiment ground-truth series from raw reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening reviews file: %w", err)
			}
			defer f.Close()

			reviews, err := review.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("reading reviews: %w", err)
			}

			stats := groundtruth.Build(reviews, language)
			if len(stats) == 0 {
				return fmt.Errorf("no usable reviews in %s", args[0])
			}

			if out == "" {
				out = r.cfg.SteamGT
			}
			if err := os.MkdirAll(filepath.Dir(out), 0750); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			outFile, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating ground-truth file: %w", err)
			}
			defer outFile.Close()
			if err := groundtruth.WriteCSV(outFile, stats); err != nil {
				return fmt.Errorf("writing ground truth: %w", err)
			}

			fmt.Printf("Ground truth for %d days (%s .. %s) written to %s\n",
				len(stats), stats[0].Date, stats[len(stats)-1].Date, out)

			if noPlot {
				return nil
			}
			if err := os.MkdirAll(r.cfg.PlotDir, 0750); err != nil {
				return fmt.Errorf("creating plot directory: %w", err)
			}
			plotPath := filepath.Join(r.cfg.PlotDir, "ground_truth_trend.png")
			if err := groundtruth.SavePlot(plotPath, stats); err != nil {
				return fmt.Errorf("saving plot: %w", err)
			}
			fmt.Printf("Trend plot written to %s\n", plotPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output CSV path (default: configured steam_gt)")
	cmd.Flags().StringVar(&language, "language", "english", "keep only reviews in this language (empty keeps all)")
	cmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the trend plot")
	return cmd
}
