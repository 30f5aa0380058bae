package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ladinzgit/personasim/internal/app"
	"github.com/ladinzgit/personasim/internal/persona"
	"github.com/ladinzgit/personasim/internal/sim"
)

func newSimulateCmd(r *root) *cobra.Command {
	var (
		static bool
		seed   int64
		out    string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the persona purchase simulation",
		Long: `Simulates every persona deciding, on each configured date, whether to buy
given only reviews published by that date. With --static, each persona
decides once from its profile alone, producing a time-invariant baseline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := app.Setup(ctx, r.cfg, r.logger, app.Options{SkipDatabase: static})
			if err != nil {
				return err
			}
			defer a.Close()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			generator := persona.NewGenerator(rand.New(rand.NewSource(seed)))
			personas := generator.GenerateBalanced(r.cfg.PersonasPerType)

			model := sim.NewGenkitModel(a.Genkit, "openai/"+r.cfg.ModelName, float64(r.cfg.Temperature))
			engine := sim.New(a.Retriever, model, r.logger.With("component", "sim"), sim.Options{
				Concurrency:      r.cfg.Concurrency,
				RetrievalWorkers: r.cfg.RetrievalWorkers,
				TopK:             r.cfg.TopK,
			})

			var (
				decisions []sim.Decision
				report    sim.Report
			)
			if static {
				decisions, report, err = engine.RunStatic(ctx, personas)
			} else {
				decisions, report, err = engine.Run(ctx, personas, r.cfg.SimulationDates())
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = r.cfg.DecisionsCSV
			}
			if err := writeDecisionsFile(out, decisions); err != nil {
				return err
			}

			fmt.Printf("Run %s: %d/%d tasks succeeded (%d failed)\n",
				report.RunID, report.Succeeded, report.Tasks, report.Failed)
			fmt.Printf("Decisions written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&static, "static", false, "profile-only baseline: one decision per persona, no retrieval")
	cmd.Flags().Int64Var(&seed, "seed", 0, "persona generation seed (0 = time-based)")
	cmd.Flags().StringVar(&out, "out", "", "decisions CSV path (default: configured decisions_csv)")
	return cmd
}

func writeDecisionsFile(path string, decisions []sim.Decision) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating decisions file: %w", err)
	}
	defer f.Close()

	if err := sim.WriteDecisions(f, decisions); err != nil {
		return fmt.Errorf("writing decisions: %w", err)
	}
	return f.Close()
}
