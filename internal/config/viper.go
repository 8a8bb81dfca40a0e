// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/mis-parser/internal/sink"
	"fjacquet/mis-parser/internal/validation"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the application.
const EnvPrefix = "MIS"

// LogConfig controls the logrus adapter.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SourcesConfig points at the YAML file holding the source configurations.
type SourcesConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// StorageConfig configures the object stores.
type StorageConfig struct {
	AWSRegion          string `mapstructure:"aws_region" yaml:"aws_region"`
	S3Endpoint         string `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`
	GCSCredentialsFile string `mapstructure:"gcs_credentials_file" yaml:"gcs_credentials_file"`
	UploadBucket       string `mapstructure:"upload_bucket" yaml:"upload_bucket"`
	DownloadBucket     string `mapstructure:"download_bucket" yaml:"download_bucket"`
}

// InputLocator resolves a bare input key against the download bucket. Inputs
// with a scheme pass through, so local files stay reachable as file:// URLs.
func (s StorageConfig) InputLocator(raw string) string {
	return bucketLocator(s.DownloadBucket, raw)
}

// OutputLocator resolves a bare output key against the upload bucket.
func (s StorageConfig) OutputLocator(raw string) string {
	return bucketLocator(s.UploadBucket, raw)
}

func bucketLocator(bucket, raw string) string {
	if bucket == "" || raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	return "s3://" + bucket + "/" + strings.TrimLeft(raw, "/")
}

// SecretsConfig configures the environment secret store.
type SecretsConfig struct {
	EnvPrefix string `mapstructure:"env_prefix" yaml:"env_prefix"`
}

// StagingConfig sets where temporary files are written.
type StagingConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address"`
}

// OutputConfig selects the output writer of the parse command.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Config represents the complete application configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Sources SourcesConfig `mapstructure:"sources" yaml:"sources"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Secrets SecretsConfig `mapstructure:"secrets" yaml:"secrets"`
	Staging StagingConfig `mapstructure:"staging" yaml:"staging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load is InitializeConfig with an explicit config file. An empty path
// searches the default locations.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.mis-parser")
		v.AddConfigPath(".mis-parser")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("sources.file", "sources.yaml")

	v.SetDefault("storage.aws_region", "ap-south-1")
	v.SetDefault("storage.s3_endpoint", "")
	v.SetDefault("storage.gcs_credentials_file", "")
	v.SetDefault("storage.upload_bucket", "")
	v.SetDefault("storage.download_bucket", "")

	v.SetDefault("secrets.env_prefix", "MIS_SECRET_")

	v.SetDefault("staging.dir", "")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")

	v.SetDefault("output.format", sink.FormatCSV)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if err := validation.IsValidOutputFormat(config.Output.Format); err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}

	if config.Metrics.Enabled && config.Metrics.Address == "" {
		return fmt.Errorf("metrics.address required when metrics are enabled")
	}

	if strings.TrimSpace(config.Sources.File) == "" {
		return fmt.Errorf("sources.file must not be empty")
	}

	return nil
}
