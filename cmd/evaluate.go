package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ladinzgit/personasim/internal/eval"
	"github.com/ladinzgit/personasim/internal/sim"
)

func newEvaluateCmd(r *root) *cobra.Command {
	var (
		static    bool
		decisions string
		target    string
		truthFile string
		column    string
		noPlot    bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Correlate a simulation run with ground truth",
		Long: `Aligns the daily simulated purchase ratio with an external time series
(review sentiment or stock price) by date and reports their Pearson
correlation, plus a diagnostic plot. With --static, the run's overall ratio
is broadcast across every ground-truth date; a constant series has no
variance, so the correlation is reported as undefined.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if decisions == "" {
				decisions = r.cfg.DecisionsCSV
			}
			switch target {
			case "steam":
				if truthFile == "" {
					truthFile = r.cfg.SteamGT
				}
				if column == "" {
					column = "Positive_Ratio"
				}
			case "stock":
				if truthFile == "" {
					truthFile = r.cfg.StockGT
				}
				if column == "" {
					column = "Stock_Price"
				}
			default:
				return fmt.Errorf("unknown target %q (want steam or stock)", target)
			}

			runDecisions, err := readDecisionsFile(decisions)
			if err != nil {
				return err
			}

			tf, err := os.Open(truthFile)
			if err != nil {
				return fmt.Errorf("opening ground truth: %w", err)
			}
			defer tf.Close()

			truth, err := eval.ReadSeries(tf, column)
			if err != nil {
				return fmt.Errorf("reading ground truth: %w", err)
			}

			var (
				result    eval.Result
				simulated []eval.Point
			)
			if static {
				ratio := eval.StaticRatio(runDecisions)
				result, err = eval.CorrelateStatic(ratio, truth)
				if err != nil {
					return err
				}
				// Broadcast series, for the plot.
				for _, p := range truth {
					simulated = append(simulated, eval.Point{Date: p.Date, Value: ratio})
				}
				fmt.Printf("Static baseline ratio: %.4f\n", ratio)
			} else {
				simulated = eval.DailyYesRatio(runDecisions)
				result, err = eval.Correlate(simulated, truth)
				if err != nil {
					return err
				}
			}

			if result.Degenerate {
				fmt.Printf("Pearson r vs %s: undefined (zero variance, n=%d)\n", target, result.N)
			} else {
				fmt.Printf("Pearson r vs %s: %.4f (n=%d)\n", target, result.Correlation, result.N)
			}

			if noPlot {
				return nil
			}
			if err := os.MkdirAll(r.cfg.PlotDir, 0750); err != nil {
				return fmt.Errorf("creating plot directory: %w", err)
			}
			plotPath := filepath.Join(r.cfg.PlotDir, "evaluation_"+target+".png")
			if err := eval.SavePlot(plotPath, simulated, truth, result); err != nil {
				return fmt.Errorf("saving plot: %w", err)
			}
			fmt.Printf("Diagnostic plot written to %s\n", plotPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&static, "static", false, "evaluate a static baseline run")
	cmd.Flags().StringVar(&decisions, "decisions", "", "decisions CSV (default: configured decisions_csv)")
	cmd.Flags().StringVar(&target, "target", "steam", "ground truth to correlate against (steam or stock)")
	cmd.Flags().StringVar(&truthFile, "truth", "", "override ground-truth CSV path")
	cmd.Flags().StringVar(&column, "column", "", "override ground-truth value column")
	cmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the diagnostic plot")
	return cmd
}

func readDecisionsFile(path string) ([]sim.Decision, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening decisions file: %w", err)
	}
	defer f.Close()

	decisions, err := sim.ReadDecisions(f)
	if err != nil {
		return nil, fmt.Errorf("reading decisions: %w", err)
	}
	return decisions, nil
}
