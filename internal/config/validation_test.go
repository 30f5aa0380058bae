package config

import (
	"errors"
	"testing"
)

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	return &Config{
		ModelName:        DefaultModelName,
		EmbedderModel:    DefaultEmbedderModel,
		Temperature:      0.7,
		PostgresHost:     "localhost",
		PostgresPort:     5432,
		PostgresUser:     "personasim",
		PostgresDBName:   "personasim",
		PostgresSSLMode:  "disable",
		Concurrency:      DefaultConcurrency,
		RetrievalWorkers: DefaultRetrievalWorkers,
		TopK:             DefaultTopK,
		PersonasPerType:  DefaultPersonasPerType,
		StartDate:        "2020-12-10",
		EndDate:          "2021-03-31",
		DateStride:       7,
		BatchSize:        DefaultBatchSize,
		IngestWorkers:    DefaultIngestWorkers,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var c *Config
	if err := c.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate() = %v, want ErrConfigNil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidEmbedderModel,
		},
		{
			name:    "temperature too high",
			mutate:  func(c *Config) { c.Temperature = 2.5 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "temperature negative",
			mutate:  func(c *Config) { c.Temperature = -0.1 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "empty postgres host",
			mutate:  func(c *Config) { c.PostgresHost = "" },
			wantErr: ErrInvalidPostgresHost,
		},
		{
			name:    "postgres port out of range",
			mutate:  func(c *Config) { c.PostgresPort = 70000 },
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name:    "empty db name",
			mutate:  func(c *Config) { c.PostgresDBName = "" },
			wantErr: ErrInvalidPostgresDBName,
		},
		{
			name:    "bogus ssl mode",
			mutate:  func(c *Config) { c.PostgresSSLMode = "maybe" },
			wantErr: ErrInvalidPostgresSSLMode,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "excessive concurrency",
			mutate:  func(c *Config) { c.Concurrency = 5000 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "zero top k",
			mutate:  func(c *Config) { c.TopK = 0 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "malformed start date",
			mutate:  func(c *Config) { c.StartDate = "2020/12/10" },
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "end before start",
			mutate:  func(c *Config) { c.StartDate, c.EndDate = "2021-03-31", "2020-12-10" },
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "zero date stride",
			mutate:  func(c *Config) { c.DateStride = 0 },
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "batch size too large",
			mutate:  func(c *Config) { c.BatchSize = 10000 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "zero ingest workers",
			mutate:  func(c *Config) { c.IngestWorkers = 0 },
			wantErr: ErrInvalidConcurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSimulationDates(t *testing.T) {
	cfg := validConfig()
	cfg.StartDate = "2020-12-10"
	cfg.EndDate = "2020-12-31"
	cfg.DateStride = 7

	got := cfg.SimulationDates()
	want := []string{"2020-12-10", "2020-12-17", "2020-12-24", "2020-12-31"}

	if len(got) != len(want) {
		t.Fatalf("SimulationDates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SimulationDates()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSimulationDates_SingleDay(t *testing.T) {
	cfg := validConfig()
	cfg.StartDate = "2021-01-01"
	cfg.EndDate = "2021-01-01"
	cfg.DateStride = 1

	got := cfg.SimulationDates()
	if len(got) != 1 || got[0] != "2021-01-01" {
		t.Errorf("SimulationDates() = %v, want single 2021-01-01", got)
	}
}
