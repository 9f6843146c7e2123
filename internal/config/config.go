package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type WindowConfig struct {
	Size        int    `toml:"size" yaml:"size"`
	OpenMarker  string `toml:"open_marker" yaml:"open_marker"`
	CloseMarker string `toml:"close_marker" yaml:"close_marker"`
}

type DatasetConfig struct {
	DropPolarities []string `toml:"drop_polarities" yaml:"drop_polarities"`
}

type EvaluationConfig struct {
	ShowMax int    `toml:"show_max" yaml:"show_max"`
	Align   string `toml:"align" yaml:"align"`
}

type ServerConfig struct {
	Port string `toml:"port" yaml:"port"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri" yaml:"uri"`
	User     string `toml:"user" yaml:"user"`
	Password string `toml:"password" yaml:"password"`
}

type StoreConfig struct {
	SQLitePath string `toml:"sqlite_path" yaml:"sqlite_path"`
}

type ConcurrencyConfig struct {
	BulkExport int `toml:"bulk_export" yaml:"bulk_export"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // json, console
}

type Config struct {
	Window      WindowConfig      `toml:"window" yaml:"window"`
	Dataset     DatasetConfig     `toml:"dataset" yaml:"dataset"`
	Evaluation  EvaluationConfig  `toml:"evaluation" yaml:"evaluation"`
	Server      ServerConfig      `toml:"server" yaml:"server"`
	Memgraph    MemgraphConfig    `toml:"memgraph" yaml:"memgraph"`
	Store       StoreConfig       `toml:"store" yaml:"store"`
	Concurrency ConcurrencyConfig `toml:"concurrency" yaml:"concurrency"`
	Logging     LoggingConfig     `toml:"logging" yaml:"logging"`
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Size:        5,
			OpenMarker:  "<ASP>",
			CloseMarker: "</ASP>",
		},
		Evaluation: EvaluationConfig{
			ShowMax: 50,
			Align:   "index",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Concurrency: ConcurrencyConfig{
			BulkExport: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a TOML file, or YAML when the extension is .yaml or .yml, on
// top of Default. Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("ABSA_WINDOW_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ABSA_WINDOW_SIZE %q: %w", v, err)
		}
		c.Window.Size = n
	}
	if v := getenv("ABSA_SHOW_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ABSA_SHOW_MAX %q: %w", v, err)
		}
		c.Evaluation.ShowMax = n
	}
	if v := getenv("ABSA_ALIGN"); v != "" {
		c.Evaluation.Align = v
	}
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := getenv("ABSA_SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Window.Size < 0 {
		errs = append(errs, fmt.Errorf("window.size must be >= 0, got %d", c.Window.Size))
	}
	if c.Window.OpenMarker == "" || c.Window.CloseMarker == "" {
		errs = append(errs, errors.New("window markers must not be empty"))
	}
	if c.Window.OpenMarker == c.Window.CloseMarker {
		errs = append(errs, errors.New("window markers must differ"))
	}
	switch strings.ToLower(c.Evaluation.Align) {
	case "", "index", "id":
	default:
		errs = append(errs, fmt.Errorf("evaluation.align must be index or id, got %q", c.Evaluation.Align))
	}
	if c.Concurrency.BulkExport < 1 {
		errs = append(errs, fmt.Errorf("concurrency.bulk_export must be >= 1, got %d", c.Concurrency.BulkExport))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Resolve loads path when it is set, falling back to CONFIG_PATH and then to
// defaults, applies the environment and validates the result.
func Resolve(path string, getenv func(string) string) (*Config, error) {
	if path == "" {
		path = getenv("CONFIG_PATH")
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
