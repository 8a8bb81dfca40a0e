package parser

import (
	"context"
	"time"

	"fjacquet/mis-parser/internal/fetch"
	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/metrics"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/normalizer"

	"github.com/google/uuid"
)

// Deps are the collaborators of a FileParser.
type Deps struct {
	Fetch   fetch.Deps
	Metrics *metrics.Recorder
	Logger  logging.Logger

	// NewRunID overrides the run id generator. Defaults to uuid.NewString.
	NewRunID func() string
}

// FileParser parses the files of one configured source.
type FileParser struct {
	BaseParser
	name     string
	cfg      models.SourceConfig
	fetcher  *fetch.Fetcher
	metrics  *metrics.Recorder
	newRunID func() string
}

// New builds the parser of source name. The source config is copied and
// never changes afterwards.
func New(name string, cfg models.SourceConfig, deps Deps) (*FileParser, error) {
	cfg.Name = name
	logger := logging.OrDefault(deps.Logger).WithField(logging.FieldSource, name)

	fd := deps.Fetch
	if fd.Logger == nil {
		fd.Logger = logger
	}
	if fd.OnSkip == nil && deps.Metrics != nil {
		rec := deps.Metrics
		fd.OnSkip = func(_ string, reason string) { rec.EntrySkipped(name, reason) }
	}

	fetcher, err := fetch.NewFetcher(cfg, fd)
	if err != nil {
		return nil, err
	}

	newRunID := deps.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}

	return &FileParser{
		BaseParser: NewBaseParser(logger),
		name:       name,
		cfg:        cfg,
		fetcher:    fetcher,
		metrics:    deps.Metrics,
		newRunID:   newRunID,
	}, nil
}

// Name returns the source name.
func (p *FileParser) Name() string {
	return p.name
}

// Config returns the source configuration the parser was built with.
func (p *FileParser) Config() models.SourceConfig {
	return p.cfg
}

// ParseFile implements Parser.
func (p *FileParser) ParseFile(ctx context.Context, locator string) (*models.Table, error) {
	start := time.Now()
	logger := p.GetLogger().WithFields(
		logging.Field{Key: logging.FieldRunID, Value: p.newRunID()},
		logging.Field{Key: logging.FieldLocator, Value: locator},
	)
	logger.Info("Parsing MIS file",
		logging.Field{Key: logging.FieldStrategy, Value: string(p.cfg.Strategy())})

	raw, err := p.FetchData(ctx, locator, filetype.Unknown)
	if err != nil {
		return nil, p.fail(logger, err, start)
	}
	logger.Debug("Fetched raw table", logging.Field{Key: logging.FieldRows, Value: raw.Len()})

	out, err := normalizer.New(logger).Normalize(raw, p.cfg)
	if err != nil {
		return nil, p.fail(logger, err, start)
	}

	elapsed := time.Since(start)
	p.metrics.Parsed(p.name, out.Len(), elapsed)
	logger.Info("Parsed MIS file",
		logging.Field{Key: logging.FieldRows, Value: out.Len()},
		logging.Field{Key: logging.FieldDuration, Value: elapsed.Milliseconds()})
	return out, nil
}

// FetchData retrieves the object at locator and materializes it with the
// source's strategy, without normalizing. declared overrides the file type
// when it is not filetype.Unknown.
func (p *FileParser) FetchData(ctx context.Context, locator string, declared filetype.FileType) (*models.Table, error) {
	loc, err := fetch.ParseLocator(locator)
	if err != nil {
		return nil, err
	}
	return p.fetcher.Fetch(ctx, loc, declared)
}

func (p *FileParser) fail(logger logging.Logger, err error, start time.Time) error {
	p.metrics.Failed(p.name, err, time.Since(start))
	logger.WithError(err).Error("Failed to parse MIS file",
		logging.Field{Key: logging.FieldReason, Value: metrics.ErrorKind(err)})
	return err
}
