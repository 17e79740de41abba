// Package config loads envstage settings from a YAML file.
//
// A file only needs the keys it wants to change; everything else keeps its
// default:
//
//	replication: 3
//	plugin_base_folders:
//	  - /opt/pentaho/plugins
//	storage:
//	  type: minio
//	  minio:
//	    endpoint: localhost:9000
//	    bucket: cluster
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmgilman/envstage/archive"
	"github.com/jmgilman/envstage/distcache"
	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/jobconf"
)

// EnvVar names the environment variable consulted for the config path.
const EnvVar = "ENVSTAGE_CONFIG"

// Storage types.
const (
	StorageLocal  = "local"
	StorageMemory = "memory"
	StorageMinIO  = "minio"
)

// Config holds every tunable setting.
type Config struct {
	Replication       int16         `yaml:"replication"`
	PathSeparator     string        `yaml:"path_separator"`
	TempDir           string        `yaml:"temp_dir"`
	PluginBaseFolders []string      `yaml:"plugin_base_folders"`
	ConfigLibDir      string        `yaml:"config_lib_dir"`
	LogLevel          string        `yaml:"log_level"`
	Limits            Limits        `yaml:"limits"`
	Storage           StorageConfig `yaml:"storage"`
}

// Limits bounds archive extraction. Zero means unlimited.
type Limits struct {
	MaxFiles    int   `yaml:"max_files"`
	MaxSize     int64 `yaml:"max_size"`
	MaxFileSize int64 `yaml:"max_file_size"`
}

// StorageConfig selects the distributed filesystem.
type StorageConfig struct {
	Type  string      `yaml:"type"`
	Root  string      `yaml:"root"`
	MinIO MinIOConfig `yaml:"minio"`
}

// MinIOConfig configures the object store backend.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Replication:   distcache.DefaultReplication,
		PathSeparator: jobconf.DefaultSeparator,
		LogLevel:      "info",
		Storage: StorageConfig{
			Type: StorageLocal,
			Root: "/",
		},
	}
}

// Path returns flagValue when set, otherwise the value of EnvVar.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvVar)
}

// Load reads the file at path from fsys. An empty path yields the defaults.
func Load(fsys core.FS, path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.WithContext(
			errors.Wrapf(err, errors.CodeInvalidConfig, "failed to read config file %s", path),
			"path", path,
		)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and required combinations.
func (c *Config) Validate() error {
	if c.Replication < 1 {
		return errors.Newf(errors.CodeInvalidConfig, "replication must be at least 1, got %d", c.Replication)
	}
	if c.PathSeparator == "" {
		return errors.New(errors.CodeInvalidConfig, "path_separator must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Limits.MaxFiles < 0 || c.Limits.MaxSize < 0 || c.Limits.MaxFileSize < 0 {
		return errors.New(errors.CodeInvalidConfig, "limits must not be negative")
	}

	switch c.Storage.Type {
	case StorageLocal, StorageMemory:
	case StorageMinIO:
		if c.Storage.MinIO.Endpoint == "" {
			return errors.New(errors.CodeInvalidConfig, "storage.minio.endpoint is required")
		}
		if c.Storage.MinIO.Bucket == "" {
			return errors.New(errors.CodeInvalidConfig, "storage.minio.bucket is required")
		}
	default:
		return errors.Newf(errors.CodeInvalidConfig, "unknown storage type %q", c.Storage.Type)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Newf(errors.CodeInvalidConfig, "unknown log level %q", level)
	}
}

// Options translates the configuration into distcache options.
func (c *Config) Options() []distcache.Option {
	return []distcache.Option{
		distcache.WithReplication(c.Replication),
		distcache.WithPathSeparator(c.PathSeparator),
		distcache.WithTempDir(c.TempDir),
		distcache.WithPluginBaseFolders(c.PluginBaseFolders...),
		distcache.WithConfigLibDir(c.ConfigLibDir),
		distcache.WithExtractOptions(archive.ExtractOptions{
			MaxFiles:    c.Limits.MaxFiles,
			MaxSize:     c.Limits.MaxSize,
			MaxFileSize: c.Limits.MaxFileSize,
		}),
	}
}
