package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

type Config struct {
	Server struct {
		Port    string `env:"PORT" envDefault:"5250"`
		GinMode string `env:"GIN_MODE" envDefault:"release"`

		// Origins allowed to call the JSON API
		CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Reference struct {
		// CSV path, or "sqlite:<path>" for a locality_medians table
		Source string `env:"LOCALITY_SOURCE" envDefault:"models/locality_medians.csv"`

		// CSV file copied into the "sqlite:" source at startup, replacing its rows
		ImportCSV string `env:"LOCALITY_IMPORT_CSV"`

		// Year that property age is measured against
		Year int `env:"REFERENCE_YEAR" envDefault:"2025"`
	}

	Models struct {
		// "local" reads the JSON artifacts, "remote" calls a model server
		Backend        string `env:"MODEL_BACKEND" envDefault:"local"`
		ClassifierPath string `env:"CLASSIFIER_PATH" envDefault:"models/good_investment_clf.json"`
		RegressorPath  string `env:"REGRESSOR_PATH" envDefault:"models/future_price_reg.json"`
		ServerURL      string `env:"MODEL_SERVER_URL" envDefault:"http://localhost:8000"`
		TimeoutSeconds int    `env:"MODEL_TIMEOUT_SECONDS" envDefault:"10"`
	}

	History struct {
		// Empty disables prediction history
		DBPath string `env:"HISTORY_DB_PATH" envDefault:""`
	}

	// BatchProcessing configures how prediction history is written
	BatchProcessing struct {
		// Maximum number of records to accumulate before writing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Maximum time to wait before writing a non-full batch (in seconds)
		MaxBatchWaitTime int `env:"BATCH_WAIT_TIME" envDefault:"30"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`

		// Number of pending batches the queue holds before dropping
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"1000"`
	}
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Models.Backend {
	case BackendLocal, BackendRemote:
	default:
		return fmt.Errorf("invalid MODEL_BACKEND %q: must be %q or %q", c.Models.Backend, BackendLocal, BackendRemote)
	}
	if c.Reference.Source == "" {
		return errors.New("LOCALITY_SOURCE must not be empty")
	}
	if c.Reference.ImportCSV != "" && !strings.HasPrefix(c.Reference.Source, "sqlite:") {
		return errors.New("LOCALITY_IMPORT_CSV requires a sqlite: LOCALITY_SOURCE")
	}
	if c.Models.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid MODEL_TIMEOUT_SECONDS %d", c.Models.TimeoutSeconds)
	}
	if c.BatchProcessing.MaxBatchSize <= 0 || c.BatchProcessing.MaxBatchWaitTime <= 0 || c.BatchProcessing.QueueSize <= 0 {
		return errors.New("batch size, wait time and queue size must be positive")
	}
	if c.BatchProcessing.MaxRetries < 0 || c.BatchProcessing.RetryDelay < 0 {
		return errors.New("batch retries and retry delay must not be negative")
	}
	return nil
}
