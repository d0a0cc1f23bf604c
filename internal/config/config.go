// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported backing store drivers.
const (
	DriverDatabricks = "databricks"
	DriverODBC       = "odbc"
	DriverDuckDB     = "duckdb"
)

// BaseFileName is the required settings file inside the config directory.
const BaseFileName = "settings.yaml"

// DefaultEnv is used when APP_ENV is not set.
const DefaultEnv = "development"

// ConnectionSettings identifies the warehouse and the table the client works on.
type ConnectionSettings struct {
	Host      string `yaml:"host"`
	HTTPPath  string `yaml:"http_path"`
	Token     string `yaml:"token"` // secret; never logged
	Catalog   string `yaml:"catalog"`
	Schema    string `yaml:"schema"`
	TableName string `yaml:"table_name"`
}

// LakeSettings configures a DuckLake catalog for the embedded duckdb driver.
// When MetadataPath is empty no lake is attached.
type LakeSettings struct {
	MetadataPath string     `yaml:"metadata_path"`
	DataPath     string     `yaml:"data_path"`
	S3           S3Settings `yaml:"s3"`
}

// S3Settings holds credentials for a lake whose data path is on
// S3-compatible storage.
type S3Settings struct {
	KeyID    string `yaml:"key_id"`
	Secret   string `yaml:"secret"` // secret; never logged
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	URLStyle string `yaml:"url_style"`
}

// Configured reports whether S3 credentials were supplied.
func (s S3Settings) Configured() bool {
	return s.KeyID != "" && s.Secret != ""
}

// Enabled reports whether a DuckLake catalog should be attached.
func (l LakeSettings) Enabled() bool {
	return l.MetadataPath != ""
}

// Settings is the full application configuration. It is built once by Load
// and passed by value afterwards.
type Settings struct {
	Connection ConnectionSettings `yaml:"databricks"`
	Lake       LakeSettings       `yaml:"lake"`
	Driver     string             `yaml:"driver"`
	Pooled     bool               `yaml:"pooled"`
	BindMode   string             `yaml:"bind_mode"` // "params" (default) or "literal"
	LogLevel   string             `yaml:"log_level"`

	// Env is the environment name used to select the override file.
	Env string `yaml:"-"`

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`
}

// ConfigError reports a configuration problem detected before any store
// interaction.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (s *Settings) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsRemote returns true when the driver talks to a remote warehouse.
func (s *Settings) IsRemote() bool {
	return s.Driver != DriverDuckDB
}

// Validate checks the settings that must be present before a service is built.
// Only the host is required; everything else surfaces as a store error later.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Connection.Host) == "" {
		return &ConfigError{Key: "databricks.host", Message: "host is not configured"}
	}
	switch s.Driver {
	case DriverDatabricks, DriverODBC, DriverDuckDB:
	default:
		return &ConfigError{Key: "driver", Message: fmt.Sprintf("unsupported driver %q", s.Driver)}
	}
	switch s.BindMode {
	case "params", "literal":
	default:
		return &ConfigError{Key: "bind_mode", Message: fmt.Sprintf("unsupported bind mode %q", s.BindMode)}
	}
	if s.Driver == DriverDuckDB && s.Lake.Enabled() && strings.EqualFold(s.Connection.Catalog, FileCatalog(s.Connection.Host)) {
		return &ConfigError{
			Key:     "databricks.catalog",
			Message: fmt.Sprintf("lake catalog %q is already the name of database file %s; rename one of them", s.Connection.Catalog, s.Connection.Host),
		}
	}
	return nil
}

// FileCatalog returns the catalog name duckdb gives a database file: its base
// name without extension.
func FileCatalog(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load builds Settings from dir/settings.yaml, the optional
// dir/settings.<env>.yaml override, and process environment variables, in that
// order of precedence. env defaults to APP_ENV, then DefaultEnv.
func Load(dir, env string) (*Settings, error) {
	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	if env == "" {
		env = DefaultEnv
	}

	s := &Settings{Env: env}

	if err := mergeFile(s, filepath.Join(dir, BaseFileName), false); err != nil {
		return nil, err
	}
	if err := mergeFile(s, filepath.Join(dir, "settings."+env+".yaml"), true); err != nil {
		return nil, err
	}
	applyEnv(s)

	if s.Driver == "" {
		s.Driver = DriverDatabricks
	}
	s.Driver = strings.ToLower(s.Driver)
	if s.BindMode == "" {
		s.BindMode = "params"
	}
	s.BindMode = strings.ToLower(s.BindMode)
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	if s.IsRemote() && s.Connection.Token == "" {
		s.Warnings = append(s.Warnings, "token is empty; the warehouse will reject the connection")
	}
	if !s.IsRemote() && s.Connection.Token != "" {
		s.Warnings = append(s.Warnings, "token is ignored by the duckdb driver")
	}
	if s.Lake.Enabled() && s.IsRemote() {
		s.Warnings = append(s.Warnings, "lake settings only apply to the duckdb driver")
	}
	if s.Lake.Enabled() && strings.HasPrefix(s.Lake.DataPath, "s3://") && !s.Lake.S3.Configured() {
		s.Warnings = append(s.Warnings, "lake data path is on s3 but no s3 credentials are set")
	}

	return s, nil
}

// mergeFile decodes a YAML file on top of s. Keys missing from the file keep
// their current value.
func mergeFile(s *Settings, path string, optional bool) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides file values with any non-empty environment variables.
func applyEnv(s *Settings) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"DATABRICKS_HOST", &s.Connection.Host},
		{"DATABRICKS_HTTP_PATH", &s.Connection.HTTPPath},
		{"DATABRICKS_TOKEN", &s.Connection.Token},
		{"DATABRICKS_CATALOG", &s.Connection.Catalog},
		{"DATABRICKS_SCHEMA", &s.Connection.Schema},
		{"DATABRICKS_TABLE", &s.Connection.TableName},
		{"LAKE_METADATA_PATH", &s.Lake.MetadataPath},
		{"LAKE_DATA_PATH", &s.Lake.DataPath},
		{"LAKE_S3_KEY_ID", &s.Lake.S3.KeyID},
		{"LAKE_S3_SECRET", &s.Lake.S3.Secret},
		{"LAKE_S3_ENDPOINT", &s.Lake.S3.Endpoint},
		{"LAKE_S3_REGION", &s.Lake.S3.Region},
		{"LAKE_S3_URL_STYLE", &s.Lake.S3.URLStyle},
		{"CRUD_DRIVER", &s.Driver},
		{"CRUD_BIND_MODE", &s.BindMode},
		{"LOG_LEVEL", &s.LogLevel},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
	s.Pooled = parseBoolEnvDefault("CRUD_POOLED", s.Pooled)
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
