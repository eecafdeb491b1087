package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/ta/indicators"
)

// Config describes one calculation run.
type Config struct {
	Data       DataConfig        `json:"data" yaml:"data"`
	Indicators []IndicatorConfig `json:"indicators" yaml:"indicators"`
	Journal    JournalConfig     `json:"journal" yaml:"journal"`
	Output     OutputConfig      `json:"output" yaml:"output"`
	Metrics    MetricsConfig     `json:"metrics" yaml:"metrics"`
	LogLevel   string            `json:"log_level" yaml:"log_level"`
	Workers    int               `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// DataConfig points at the bar series. Format is "csv" or "json"; empty
// means infer from the file extension.
type DataConfig struct {
	Path   string `json:"path" yaml:"path"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// IndicatorConfig is one requested calculation. Nil params use the
// indicator's defaults.
type IndicatorConfig struct {
	Name   string            `json:"name" yaml:"name"`
	Params indicators.Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// JournalConfig selects where runs are recorded. Both are optional.
type JournalConfig struct {
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RunsFile    string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	OutputsFile string `json:"outputs_file,omitempty" yaml:"outputs_file,omitempty"`
}

type OutputConfig struct {
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
}

type MetricsConfig struct {
	TextfilePath string `json:"textfile_path,omitempty" yaml:"textfile_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// LoadEnv reads a dotenv file when one exists and applies the TA_*
// overrides. An empty path means ".env".
func (c *Config) LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	c.ApplyEnv()
	return nil
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TA_DATA_PATH"); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv("TA_DB_PATH"); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv("TA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TA_CSV_PATH"); v != "" {
		c.Output.CSVPath = v
	}
}

// Validate checks the configuration and reports every problem at once.
// Indicator names are resolved later against the registry.
func (c *Config) Validate() error {
	var errs error

	if c.Data.Path == "" {
		errs = errors.Join(errs, fmt.Errorf("data.path is required"))
	}
	switch strings.ToLower(c.Data.Format) {
	case "", "csv", "json":
	default:
		errs = errors.Join(errs, fmt.Errorf("data.format must be 'csv' or 'json', got %q", c.Data.Format))
	}

	if len(c.Indicators) == 0 {
		errs = errors.Join(errs, fmt.Errorf("at least one indicator is required"))
	}
	for i, ic := range c.Indicators {
		if strings.TrimSpace(ic.Name) == "" {
			errs = errors.Join(errs, fmt.Errorf("indicators[%d].name is required", i))
		}
	}

	if (c.Journal.RunsFile == "") != (c.Journal.OutputsFile == "") {
		errs = errors.Join(errs, fmt.Errorf("journal runs_file and outputs_file must be set together"))
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			errs = errors.Join(errs, fmt.Errorf("log_level: %w", err))
		}
	}

	if c.Workers < 0 {
		errs = errors.Join(errs, fmt.Errorf("workers must not be negative"))
	}

	return errs
}

// DataFormat returns the configured format, falling back to the file
// extension.
func (c *Config) DataFormat() string {
	if c.Data.Format != "" {
		return strings.ToLower(c.Data.Format)
	}
	if strings.EqualFold(filepath.Ext(c.Data.Path), ".json") {
		return "json"
	}
	return "csv"
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Path:   "./bars.csv",
			Format: "csv",
		},
		Indicators: []IndicatorConfig{
			{Name: "ADX", Params: indicators.Params{"period": 14}},
			{Name: "ATR", Params: indicators.Params{"period": 14}},
			{Name: "BBANDS", Params: indicators.Params{"period": 20, "std_dev_multiplier": 2.0}},
		},
		Journal: JournalConfig{
			DBPath: "./ta.db",
		},
		Output: OutputConfig{
			CSVPath: "./indicators.csv",
		},
		LogLevel: "info",
	}
}
