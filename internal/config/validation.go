package config

import (
	"fmt"
	"time"
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration for out-of-range or missing values.
// It returns the first violation found, wrapped around a sentinel error so
// callers can classify it with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name must not be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model must not be empty", ErrInvalidEmbedderModel)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be in [0, 2], got %v", ErrInvalidTemperature, c.Temperature)
	}

	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateSimulation(); err != nil {
		return err
	}
	return c.validateIngestion()
}

func (c *Config) validateStorage() error {
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: postgres_host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: postgres_port must be in [1, 65535], got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: postgres_db_name must not be empty", ErrInvalidPostgresDBName)
	}
	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}
	return nil
}

func (c *Config) validateSimulation() error {
	if c.Concurrency < 1 || c.Concurrency > 1000 {
		return fmt.Errorf("%w: concurrency must be in [1, 1000], got %d", ErrInvalidConcurrency, c.Concurrency)
	}
	if c.RetrievalWorkers < 1 || c.RetrievalWorkers > 256 {
		return fmt.Errorf("%w: retrieval_workers must be in [1, 256], got %d", ErrInvalidConcurrency, c.RetrievalWorkers)
	}
	if c.TopK < 1 || c.TopK > 100 {
		return fmt.Errorf("%w: top_k must be in [1, 100], got %d", ErrInvalidTopK, c.TopK)
	}
	if c.PersonasPerType < 1 {
		return fmt.Errorf("%w: personas_per_type must be at least 1, got %d", ErrInvalidConcurrency, c.PersonasPerType)
	}

	start, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start_date %q: %v", ErrInvalidDateRange, c.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", c.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end_date %q: %v", ErrInvalidDateRange, c.EndDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end_date %s before start_date %s", ErrInvalidDateRange, c.EndDate, c.StartDate)
	}
	if c.DateStride < 1 {
		return fmt.Errorf("%w: date_stride must be at least 1, got %d", ErrInvalidDateRange, c.DateStride)
	}
	return nil
}

func (c *Config) validateIngestion() error {
	if c.BatchSize < 1 || c.BatchSize > 4096 {
		return fmt.Errorf("%w: batch_size must be in [1, 4096], got %d", ErrInvalidBatchSize, c.BatchSize)
	}
	if c.IngestWorkers < 1 || c.IngestWorkers > 64 {
		return fmt.Errorf("%w: ingest_workers must be in [1, 64], got %d", ErrInvalidConcurrency, c.IngestWorkers)
	}
	return nil
}

// SimulationDates expands the configured date range into the list of
// simulated days, stepping by date_stride. Validate must pass first.
func (c *Config) SimulationDates() []string {
	start, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse("2006-01-02", c.EndDate)
	if err != nil {
		return nil
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, c.DateStride) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}
