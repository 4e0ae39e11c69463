package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvFiles are the dotenv files Load reads, in order, when present.
// Later files override earlier ones; the process environment overrides both.
var EnvFiles = []string{".env", ".env.local"}

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields missing from the file keep their defaults. The result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load builds the runtime configuration. The sequence is:
// 1. Defaults, or the YAML file at path when path is not empty
// 2. Dotenv files (EnvFiles) merged into the environment without clobbering it
// 3. Environment variable overrides (TALOS_*)
// 4. Validation of the final configuration
//
// A missing file at path is an error; a missing dotenv file is not.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := loadEnvFiles(EnvFiles); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// loadEnvFiles merges existing dotenv files into the process environment.
// Variables already set in the environment are left alone.
func loadEnvFiles(files []string) error {
	present := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to stat env file %q: %w", f, err)
		}
		present = append(present, f)
	}
	if len(present) == 0 {
		return nil
	}

	// godotenv.Load never overrides variables that are already set, so the
	// first file wins. Read them in reverse to let later files take priority.
	for i := len(present) - 1; i >= 0; i-- {
		if err := godotenv.Load(present[i]); err != nil {
			return fmt.Errorf("failed to load env file %q: %w", present[i], err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Service overrides
	if val := os.Getenv("TALOS_GATEWAY_URL"); val != "" {
		cfg.Gateway.BaseURL = val
	}
	if val := os.Getenv("TALOS_AUDIT_URL"); val != "" {
		cfg.Audit.BaseURL = val
	}
	if val := os.Getenv("TALOS_TOKEN"); val != "" {
		cfg.Gateway.Token = val
		cfg.Audit.Token = val
	}
	if val := os.Getenv("TALOS_GATEWAY_TOKEN"); val != "" {
		cfg.Gateway.Token = val
	}
	if val := os.Getenv("TALOS_AUDIT_TOKEN"); val != "" {
		cfg.Audit.Token = val
	}
	if val := os.Getenv("TALOS_TUI_MOCK"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Mock = b
		}
	}
	if val := os.Getenv("TALOS_CONTRACTS_MAJOR"); val != "" {
		cfg.ContractsMajor = val
	}

	// HTTP overrides
	if val := os.Getenv("TALOS_HTTP_MAX_ATTEMPTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.HTTP.MaxAttempts = i
		}
	}
	if val := os.Getenv("TALOS_HTTP_TOTAL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.HTTP.TotalTimeout = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("TALOS_TUI_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TALOS_TUI_LOG_FILE"); val != "" {
		cfg.Telemetry.Logging.File = val
	}
	if val := os.Getenv("TALOS_TUI_METRICS_ADDR"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("TALOS_TUI_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Enabled = true
		cfg.Telemetry.Tracing.Endpoint = val
	}
}
