// Package container provides dependency injection for the mis-parser application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"fjacquet/mis-parser/internal/config"
	"fjacquet/mis-parser/internal/dispatcher"
	"fjacquet/mis-parser/internal/fetch"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/metrics"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/mt940"
	"fjacquet/mis-parser/internal/parser"
	"fjacquet/mis-parser/internal/password"
	"fjacquet/mis-parser/internal/pdftable"
	"fjacquet/mis-parser/internal/secrets"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger  logging.Logger
	config  *config.Config
	stores  *fetch.Registry
	secrets secrets.Store
	metrics *metrics.Recorder
	parsers *parser.Set
	closers []func() error
}

// NewContainer creates and wires all application dependencies, loading the
// source configurations from cfg.Sources.File.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	return NewContainerWithSources(ctx, cfg, nil)
}

// NewContainerWithSources is NewContainer with already loaded sources. A nil
// map loads them from cfg.Sources.File.
func NewContainerWithSources(ctx context.Context, cfg *config.Config, sources map[string]models.SourceConfig) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := config.ConfigureLoggingFromConfig(cfg)

	if sources == nil {
		loaded, err := config.LoadSources(cfg, logger)
		if err != nil {
			return nil, err
		}
		sources = loaded
	}

	c := &Container{
		logger:  logger,
		config:  cfg,
		secrets: secrets.NewEnvStore(cfg.Secrets.EnvPrefix),
		metrics: metrics.NewRecorder(),
	}

	stores, err := c.buildStores(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.stores = stores

	pdf := pdftable.NewPdftotextExtractor(cfg.Staging.Dir, logger)
	parsers, err := parser.NewSet(sources, parser.Deps{
		Fetch: fetch.Deps{
			Stores:       stores,
			Materializer: dispatcher.New(pdf, logger),
			Joiner:       mt940.NewJoiner(logger),
			Passwords:    password.NewResolver(c.secrets),
			StagingDir:   cfg.Staging.Dir,
		},
		Metrics: c.metrics,
		Logger:  logger,
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.parsers = parsers

	logger.Info("Container initialized successfully",
		logging.Field{Key: "sources_count", Value: len(sources)},
		logging.Field{Key: "metrics_enabled", Value: cfg.Metrics.Enabled})

	return c, nil
}

// buildStores registers the local store, S3 and, when credentials are
// configured, GCS.
func (c *Container) buildStores(ctx context.Context) (*fetch.Registry, error) {
	stores := fetch.NewRegistry()

	s3Store, err := fetch.NewS3Store(ctx, c.config.Storage.AWSRegion, c.config.Storage.S3Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 store: %w", err)
	}
	stores.Register(fetch.SchemeS3, s3Store)

	if c.config.Storage.GCSCredentialsFile != "" {
		gcsStore, err := fetch.NewGCSStore(ctx, c.config.Storage.GCSCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS store: %w", err)
		}
		stores.Register(fetch.SchemeGCS, gcsStore)
		c.closers = append(c.closers, gcsStore.Close)
	}

	return stores, nil
}

// GetParser returns the parser of the named source.
func (c *Container) GetParser(source string) (*parser.FileParser, error) {
	return c.parsers.GetParser(source)
}

// GetSourceNames lists the configured sources in sorted order.
func (c *Container) GetSourceNames() []string {
	return c.parsers.Names()
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStores returns the object store registry used for input and output.
func (c *Container) GetStores() *fetch.Registry {
	return c.stores
}

// GetMetrics returns the metrics recorder shared by all parsers.
func (c *Container) GetMetrics() *metrics.Recorder {
	return c.metrics
}

// Close releases the object store clients.
func (c *Container) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	c.logger.Debug("Container closed")
	return firstErr
}
