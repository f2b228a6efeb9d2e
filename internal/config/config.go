package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"inacovid/internal/domain"
)

// DefaultJSONOutputDir is used when the config leaves jsonOutputDir empty.
const DefaultJSONOutputDir = "/tmp/inacovid/json_out/"

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for a collection run.
type Config struct {
	PostgresDSN   string    `yaml:"postgresDsn" json:"postgresDsn"`
	JSONOutputDir string    `yaml:"jsonOutputDir" json:"jsonOutputDir"`
	ParquetDir    string    `yaml:"parquetDir" json:"parquetDir"`
	Logging       Logging   `yaml:"logging" json:"logging"`
	Endpoints     Endpoints `yaml:"endpoints" json:"endpoints"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Endpoints overrides the feature-server query URLs. Empty means the public
// service.
type Endpoints struct {
	Province string `yaml:"province" json:"province"`
	Progress string `yaml:"progress" json:"progress"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the configuration file at path, applies environment variable
// overrides and defaults, and validates the result. JSON files are decoded
// as JSON, anything else as YAML. Every failure wraps domain.ErrConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}

	cfg := &Config{}
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrConfig, path, err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	trimmed := bytes.TrimSpace(data)
	if strings.EqualFold(filepath.Ext(path), ".json") || bytes.HasPrefix(trimmed, []byte("{")) {
		return json.Unmarshal(trimmed, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.PostgresDSN = v
	}
	// Takes precedence over the generic DATABASE_URL.
	if v := os.Getenv("INACOVID_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}

	if v := os.Getenv("INACOVID_JSON_DIR"); v != "" {
		cfg.JSONOutputDir = v
	}

	if v := os.Getenv("INACOVID_PARQUET_DIR"); v != "" {
		cfg.ParquetDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.JSONOutputDir == "" {
		c.JSONOutputDir = DefaultJSONOutputDir
	}
	c.JSONOutputDir = withTrailingSeparator(c.JSONOutputDir)
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func withTrailingSeparator(dir string) string {
	if strings.HasSuffix(dir, "/") || strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate reports every problem in c at once, wrapped as domain.ErrConfig.
func (c *Config) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(c.PostgresDSN) == "" {
		result = multierror.Append(result, errors.New("postgresDsn is required"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("logging.format %q is not text or json", c.Logging.Format))
	}

	for name, raw := range map[string]string{
		"endpoints.province": c.Endpoints.Province,
		"endpoints.progress": c.Endpoints.Progress,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || !u.IsAbs() || u.Host == "" {
			result = multierror.Append(result, fmt.Errorf("%s %q is not an absolute URL", name, raw))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	return nil
}

// EnsureOutputDirs creates the snapshot directory and, when configured, the
// Parquet archive directory, and checks that both accept new files.
func (c *Config) EnsureOutputDirs() error {
	dirs := []string{c.JSONOutputDir}
	if c.ParquetDir != "" {
		dirs = append(dirs, c.ParquetDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating %s: %w", domain.ErrConfig, dir, err)
		}
		if err := checkWritable(dir); err != nil {
			return fmt.Errorf("%w: %s is not writable: %w", domain.ErrConfig, dir, err)
		}
	}
	return nil
}

// checkWritable creates and removes a scratch file in dir.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".inacovid-write-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Remove(name)
}
