package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ladinzgit/personasim/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := newRootCmd(&config.Config{})

	want := []string{"ingest", "precompute", "simulate", "evaluate", "groundtruth", "version"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEvaluate_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	decisions := filepath.Join(dir, "decisions.csv")
	writeFile(t, decisions, "Agent_ID,Simulation_Date,Decision,Reasoning\n"+
		"a,2020-12-10,YES,ok\n"+
		"b,2020-12-10,NO,meh\n"+
		"a,2020-12-17,YES,ok\n"+
		"b,2020-12-17,YES,ok\n")

	truth := filepath.Join(dir, "truth.csv")
	writeFile(t, truth, "Date,Positive_Ratio\n2020-12-10,0.4\n2020-12-17,0.9\n")

	root := newRootCmd(&config.Config{})
	root.SetArgs([]string{"evaluate",
		"--decisions", decisions,
		"--truth", truth,
		"--no-plot",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
}

func TestGroundTruth_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	reviews := filepath.Join(dir, "reviews.csv")
	writeFile(t, reviews, "review,language,rating,timestamp_created\n"+
		"runs great,english,Recommended,1607558400\n"+
		"crashes a lot,english,Not Recommended,1607644800\n")

	out := filepath.Join(dir, "gt.csv")
	root := newRootCmd(&config.Config{})
	root.SetArgs([]string{"groundtruth", reviews, "--out", out, "--no-plot"})
	if err := root.Execute(); err != nil {
		t.Fatalf("groundtruth failed: %v", err)
	}

	if _, err := os.Stat(out); err != nil {
		t.Errorf("ground-truth CSV not written: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
