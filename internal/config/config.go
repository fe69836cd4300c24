// Package config loads the filequeue binary configuration from a YAML file
// and FILEQUEUE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"filequeue"
	"filequeue/internal/logging"
)

// Config is the complete binary configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// PipelineConfig mirrors filequeue.Config with file-friendly units.
type PipelineConfig struct {
	QueueCapacity int      `yaml:"queue_capacity"`
	MinDelayMS    int      `yaml:"min_delay_ms"`
	MaxDelayMS    int      `yaml:"max_delay_ms"`
	MinSize       int      `yaml:"min_size"`
	MaxSize       int      `yaml:"max_size"`
	UnitCostMS    int      `yaml:"unit_cost_ms"`
	RunDurationMS int      `yaml:"run_duration_ms"`
	Categories    []string `yaml:"categories"` // XML, JSON, XLS
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type HTTPConfig struct {
	Addr             string `yaml:"addr"` // empty disables the status server
	ShutdownTimeoutS int    `yaml:"shutdown_timeout_s"`
}

// Default returns the configuration of the original ten second demo run.
func Default() *Config {
	d := filequeue.DefaultConfig()
	categories := make([]string, 0, len(d.Categories))
	for _, c := range d.Categories {
		categories = append(categories, c.String())
	}
	return &Config{
		Pipeline: PipelineConfig{
			QueueCapacity: d.QueueCapacity,
			MinDelayMS:    int(d.MinDelay / time.Millisecond),
			MaxDelayMS:    int(d.MaxDelay / time.Millisecond),
			MinSize:       d.Sizes.Min,
			MaxSize:       d.Sizes.Max,
			UnitCostMS:    int(d.UnitCost / time.Millisecond),
			RunDurationMS: int(d.RunDuration / time.Millisecond),
			Categories:    categories,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{
			Addr:             ":8080",
			ShutdownTimeoutS: 10,
		},
	}
}

// Load reads path on top of the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() error {
	p := &c.Pipeline
	ints := []struct {
		key string
		dst *int
	}{
		{"FILEQUEUE_QUEUE_CAPACITY", &p.QueueCapacity},
		{"FILEQUEUE_MIN_DELAY_MS", &p.MinDelayMS},
		{"FILEQUEUE_MAX_DELAY_MS", &p.MaxDelayMS},
		{"FILEQUEUE_MIN_SIZE", &p.MinSize},
		{"FILEQUEUE_MAX_SIZE", &p.MaxSize},
		{"FILEQUEUE_UNIT_COST_MS", &p.UnitCostMS},
		{"FILEQUEUE_RUN_DURATION_MS", &p.RunDurationMS},
		{"FILEQUEUE_SHUTDOWN_TIMEOUT_S", &c.HTTP.ShutdownTimeoutS},
	}
	for _, v := range ints {
		n, err := getenvInt(v.key, *v.dst)
		if err != nil {
			return err
		}
		*v.dst = n
	}

	if val := os.Getenv("FILEQUEUE_CATEGORIES"); val != "" {
		p.Categories = strings.Split(val, ",")
	}
	if val := os.Getenv("FILEQUEUE_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("FILEQUEUE_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}
	if val, ok := os.LookupEnv("FILEQUEUE_HTTP_ADDR"); ok {
		c.HTTP.Addr = val
	}
	return nil
}

// getenvInt reads an int from env, returning def when the variable is unset
// or empty. Range checks are left to Validate.
func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// Validate checks every section. Pipeline errors wrap filequeue.ErrInvalidConfig.
func (c *Config) Validate() error {
	if _, err := c.PipelineConfig(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	if c.HTTP.ShutdownTimeoutS <= 0 {
		return fmt.Errorf("http.shutdown_timeout_s must be > 0")
	}
	return nil
}

// PipelineConfig converts the pipeline section into a validated filequeue.Config.
func (c *Config) PipelineConfig() (filequeue.Config, error) {
	p := c.Pipeline
	categories := make([]filequeue.Category, 0, len(p.Categories))
	for _, name := range p.Categories {
		cat, err := filequeue.ParseCategory(name)
		if err != nil {
			return filequeue.Config{}, fmt.Errorf("%w: %w", filequeue.ErrInvalidConfig, err)
		}
		categories = append(categories, cat)
	}

	cfg := filequeue.Config{
		QueueCapacity: p.QueueCapacity,
		MinDelay:      time.Duration(p.MinDelayMS) * time.Millisecond,
		MaxDelay:      time.Duration(p.MaxDelayMS) * time.Millisecond,
		Sizes:         filequeue.SizeRange{Min: p.MinSize, Max: p.MaxSize},
		UnitCost:      time.Duration(p.UnitCostMS) * time.Millisecond,
		RunDuration:   time.Duration(p.RunDurationMS) * time.Millisecond,
		Categories:    categories,
	}
	if err := cfg.Validate(); err != nil {
		return filequeue.Config{}, err
	}
	return cfg, nil
}

// ShutdownTimeout is the grace period for the status server.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.HTTP.ShutdownTimeoutS) * time.Second
}
