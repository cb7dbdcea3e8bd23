package config

import (
	stderrors "errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/internal/logging"
)

const (
	// ConfigName is the configuration file name without extension.
	ConfigName = "lumen"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "LUMEN"

	// DefaultManifest is the default compiler output file.
	DefaultManifest = "app.yaml"

	// DefaultAddr is the default preview server address.
	DefaultAddr = "localhost:4200"
)

// Config is the complete lumen configuration.
type Config struct {
	// Manifest is the compiler output to load.
	Manifest string `mapstructure:"manifest"`

	// Root overrides the manifest's root component selector.
	Root string `mapstructure:"root"`

	// Log configures CLI logging.
	Log LogConfig `mapstructure:"log"`

	// Preview configures `lumen serve`.
	Preview PreviewConfig `mapstructure:"preview"`

	// Publish configures where `lumen render --publish` writes.
	Publish PublishConfig `mapstructure:"publish"`

	// Tracing configures render spans.
	Tracing TracingConfig `mapstructure:"tracing"`

	file string
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// PreviewConfig configures the live preview server.
type PreviewConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr"`

	// Watch reloads the manifest when it changes.
	Watch bool `mapstructure:"watch"`

	// MetricsPath serves Prometheus metrics. Empty disables it.
	MetricsPath string `mapstructure:"metrics_path"`
}

// PublishConfig configures snapshot publishing.
type PublishConfig struct {
	// Dest is a file path or s3://bucket/key.
	Dest string `mapstructure:"dest"`

	// Region is the S3 region.
	Region string `mapstructure:"region"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `mapstructure:"endpoint"`

	// ContentType is stored with the published object.
	ContentType string `mapstructure:"content_type"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	// TracerName names the tracer used for render spans.
	TracerName string `mapstructure:"tracer_name"`
}

// New returns a configuration with default values.
func New() *Config {
	return &Config{
		Manifest: DefaultManifest,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Preview: PreviewConfig{
			Addr:        DefaultAddr,
			MetricsPath: "/metrics",
		},
		Publish: PublishConfig{
			Region:      "us-east-1",
			ContentType: "text/html; charset=utf-8",
		},
		Tracing: TracingConfig{
			TracerName: "lumen",
		},
	}
}

// setDefaults registers every key with viper so environment overrides
// reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := New()
	v.SetDefault("manifest", d.Manifest)
	v.SetDefault("root", d.Root)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("preview.addr", d.Preview.Addr)
	v.SetDefault("preview.watch", d.Preview.Watch)
	v.SetDefault("preview.metrics_path", d.Preview.MetricsPath)
	v.SetDefault("publish.dest", d.Publish.Dest)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.endpoint", d.Publish.Endpoint)
	v.SetDefault("publish.content_type", d.Publish.ContentType)
	v.SetDefault("tracing.tracer_name", d.Tracing.TracerName)
}

// Load reads configuration. A non-empty path names the file to read;
// otherwise lumen.yaml or lumen.json is looked up in the working
// directory and is optional.
func Load(path string) (*Config, error) {
	v := viper.New()
	return LoadWith(v, path, ".")
}

// LoadWith reads configuration into v, searching dir when path is empty.
// Flags bound to v with BindPFlag take precedence over every other source.
func LoadWith(v *viper.Viper, path, dir string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.New("L010").WithFile(path).Wrap(err)
		}
	}

	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("L010").WithFile(v.ConfigFileUsed()).Wrap(err)
	}
	cfg.file = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// File returns the configuration file that was read, if any.
func (c *Config) File() string {
	return c.file
}

// ManifestPath resolves Manifest relative to the configuration file.
func (c *Config) ManifestPath() string {
	if c.file == "" || filepath.IsAbs(c.Manifest) {
		return c.Manifest
	}
	return filepath.Join(filepath.Dir(c.file), c.Manifest)
}

// Validate checks values that would fail later in less obvious ways.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.New("L010").WithFile(c.file).WithHint("log.level must be debug, info, warn or error").Wrap(err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("L010").WithFile(c.file).WithHint("log.format must be text or json").
			Wrap(fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if _, _, err := net.SplitHostPort(c.Preview.Addr); err != nil {
		return errors.New("L010").WithFile(c.file).WithHint("preview.addr must be host:port").Wrap(err)
	}
	if c.Preview.MetricsPath != "" && !strings.HasPrefix(c.Preview.MetricsPath, "/") {
		return errors.New("L010").WithFile(c.file).WithHint("preview.metrics_path must start with /").
			Wrap(fmt.Errorf("invalid metrics path %q", c.Preview.MetricsPath))
	}
	return nil
}
