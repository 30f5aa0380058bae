package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ladinzgit/personasim/internal/config"
)

// Version information, injected at build time via ldflags.
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

func newVersionCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("personasim %s\n", AppVersion)
			fmt.Printf("Build Time: %s\n", BuildTime)
			fmt.Printf("Git Commit: %s\n", GitCommit)
			fmt.Println()

			fmt.Println("Configuration:")
			fmt.Printf("  Model: %s\n", r.cfg.ModelName)
			fmt.Printf("  Embedder: %s\n", r.cfg.EmbedderModel)
			fmt.Printf("  Temperature: %.2f\n", r.cfg.Temperature)
			fmt.Printf("  Database: %s:%d/%s\n", r.cfg.PostgresHost, r.cfg.PostgresPort, r.cfg.PostgresDBName)
			fmt.Printf("  Simulation window: %s .. %s (stride %d days)\n", r.cfg.StartDate, r.cfg.EndDate, r.cfg.DateStride)

			if config.OpenAIKeySet() {
				fmt.Println("  OPENAI_API_KEY: configured")
			} else {
				fmt.Println("  OPENAI_API_KEY: not set")
			}
			return nil
		},
	}
}
