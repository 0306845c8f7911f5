package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the static collaborator values consumed by the fetch
// client: downloads directory, API credentials and the timeout/retry
// policy. Loaded once at process start, read-only thereafter.
type Config struct {
	DownloadsDir string `yaml:"downloads_dir" json:"downloads_dir"`
	APIBaseURL   string `yaml:"api_base_url" json:"api_base_url"`
	APIKey       string `yaml:"api_key" json:"api_key"`

	Timeouts TimeoutConfig `yaml:"timeouts" json:"timeouts"`
	Retry    RetryConfig   `yaml:"retry" json:"retry"`
}

// TimeoutConfig holds the per-phase and download timeouts
type TimeoutConfig struct {
	Connect  time.Duration `yaml:"connect" json:"connect"`
	Request  time.Duration `yaml:"request" json:"request"`
	Download time.Duration `yaml:"download" json:"download"`
}

// RetryConfig holds the retry and redirect policy
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	BackoffFactor time.Duration `yaml:"backoff_factor" json:"backoff_factor"`
	MaxRedirects  int           `yaml:"max_redirects" json:"max_redirects"`
}

// UnmarshalYAML decodes duration fields from Go duration strings
// ("30s", "5m"); yaml.v3 has no native time.Duration support
func (t *TimeoutConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Connect  string `yaml:"connect"`
		Request  string `yaml:"request"`
		Download string `yaml:"download"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	var err error
	if t.Connect, err = parseDuration(raw.Connect); err != nil {
		return fmt.Errorf("invalid connect timeout: %w", err)
	}
	if t.Request, err = parseDuration(raw.Request); err != nil {
		return fmt.Errorf("invalid request timeout: %w", err)
	}
	if t.Download, err = parseDuration(raw.Download); err != nil {
		return fmt.Errorf("invalid download timeout: %w", err)
	}
	return nil
}

func (r *RetryConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		MaxRetries    int    `yaml:"max_retries"`
		BackoffFactor string `yaml:"backoff_factor"`
		MaxRedirects  int    `yaml:"max_redirects"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.MaxRetries = raw.MaxRetries
	r.MaxRedirects = raw.MaxRedirects

	var err error
	if r.BackoffFactor, err = parseDuration(raw.BackoffFactor); err != nil {
		return fmt.Errorf("invalid backoff factor: %w", err)
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func (c *Config) ApplyDefaults() {
	if c.DownloadsDir == "" {
		c.DownloadsDir = "downloads"
	}

	if c.Timeouts.Connect == 0 {
		c.Timeouts.Connect = 120 * time.Second
	}
	if c.Timeouts.Request == 0 {
		c.Timeouts.Request = 120 * time.Second
	}
	if c.Timeouts.Download == 0 {
		c.Timeouts.Download = 120 * time.Second
	}

	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 2
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = time.Second
	}
	// MaxRedirects defaults to 0: redirects disabled
}

// Validate checks invariants the client relies on
func (c *Config) Validate() error {
	if c.Retry.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	if c.Retry.BackoffFactor < 0 {
		return fmt.Errorf("backoff factor must be non-negative")
	}
	if c.Retry.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must be non-negative")
	}
	if c.APIBaseURL != "" && c.APIKey == "" {
		return fmt.Errorf("API key is required when an API base URL is configured")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file and applies defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables, reading a
// .env file first when one is present
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load() // best-effort; real env vars win

	cfg := &Config{
		DownloadsDir: os.Getenv("DOWNLOADS_DIR"),
		APIBaseURL:   os.Getenv("API_URL"),
		APIKey:       os.Getenv("API_KEY"),
	}

	if v := os.Getenv("CONNECT_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Timeouts.Connect = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Timeouts.Request = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("DOWNLOAD_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Timeouts.Download = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxRetries = n
		}
	}
	// Duration string rather than whole seconds: sub-second backoff
	// factors like 500ms are common
	if v := os.Getenv("BACKOFF_FACTOR"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retry.BackoffFactor = d
		}
	}
	if v := os.Getenv("MAX_REDIRECTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxRedirects = n
		}
	}

	cfg.ApplyDefaults()
	return cfg, nil
}
