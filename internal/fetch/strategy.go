package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"fjacquet/mis-parser/internal/archive"
	"fjacquet/mis-parser/internal/dispatcher"
	"fjacquet/mis-parser/internal/fileutils"
	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/password"
)

// Strategy retrieves the object at loc and materializes it as a raw table.
type Strategy func(ctx context.Context, loc Locator, declared filetype.FileType) (*models.Table, error)

// Joiner merges split MT940 statements into one file and returns its path.
type Joiner interface {
	Join(parts [][]byte, dir string) (string, error)
}

// Deps are the collaborators shared by the strategies.
type Deps struct {
	Stores       *Registry
	Materializer archive.Materializer
	Joiner       Joiner
	Passwords    *password.Resolver
	StagingDir   string
	Logger       logging.Logger
	// OnSkip observes archive entries left out of assembly.
	OnSkip func(entryName, reason string)
}

// Fetcher runs the retrieval strategies of one source.
type Fetcher struct {
	cfg       models.SourceConfig
	deps      Deps
	assembler *archive.Assembler
	logger    logging.Logger
	strategy  Strategy
}

// NewFetcher resolves the source's strategy once.
func NewFetcher(cfg models.SourceConfig, deps Deps) (*Fetcher, error) {
	logger := logging.OrDefault(deps.Logger)
	if deps.Stores == nil {
		deps.Stores = NewRegistry()
	}
	if deps.Passwords == nil {
		deps.Passwords = password.NewResolver(nil)
	}
	if deps.Materializer == nil {
		deps.Materializer = dispatcher.New(nil, logger)
	}

	f := &Fetcher{
		cfg:       cfg,
		deps:      deps,
		assembler: archive.NewAssembler(deps.Materializer, logger),
		logger:    logger,
	}
	strategies := map[models.ReadStrategy]Strategy{
		models.ReadFromS3:            f.ReadFromS3,
		models.ReadCompleteExcelFile: f.ReadCompleteExcelFile,
		models.ReadZipFromS3:         f.ReadZipFromS3,
		models.ReadSplitMT940FromS3:  f.ReadSplitMT940FromS3,
	}
	s, ok := strategies[cfg.Strategy()]
	if !ok {
		return nil, fmt.Errorf("unknown read strategy '%s'", cfg.Strategy())
	}
	if cfg.Strategy() == models.ReadSplitMT940FromS3 && deps.Joiner == nil {
		return nil, fmt.Errorf("read strategy '%s' needs a statement joiner", cfg.Strategy())
	}
	f.strategy = s
	return f, nil
}

// Fetch runs the configured strategy.
func (f *Fetcher) Fetch(ctx context.Context, loc Locator, declared filetype.FileType) (*models.Table, error) {
	return f.strategy(ctx, loc, declared)
}

func (f *Fetcher) declaredType(loc Locator, declared filetype.FileType) filetype.FileType {
	if declared != filetype.Unknown {
		return declared
	}
	if f.cfg.FileType != filetype.Unknown {
		return f.cfg.FileType
	}
	return filetype.Detect(loc.Name())
}

// ReadFromS3 reads a single file.
func (f *Fetcher) ReadFromS3(ctx context.Context, loc Locator, declared filetype.FileType) (*models.Table, error) {
	data, err := f.deps.Stores.Get(ctx, loc)
	if err != nil {
		return nil, err
	}
	return f.deps.Materializer.Materialize(bytes.NewReader(data), loc.Name(), f.declaredType(loc, declared), dispatcher.OptionsFromConfig(f.cfg))
}

// ReadCompleteExcelFile reads every sheet of a workbook and concatenates them.
func (f *Fetcher) ReadCompleteExcelFile(ctx context.Context, loc Locator, _ filetype.FileType) (*models.Table, error) {
	data, err := f.deps.Stores.Get(ctx, loc)
	if err != nil {
		return nil, err
	}
	sheets, err := f.deps.Materializer.MaterializeSheets(bytes.NewReader(data), loc.Name(), dispatcher.OptionsFromConfig(f.cfg))
	if err != nil {
		return nil, err
	}
	tables := make([]*models.Table, 0, len(sheets))
	for _, s := range sheets {
		tables = append(tables, s.Table)
	}
	return models.Concat(tables...), nil
}

// ReadZipFromS3 reads a zip archive and assembles its entries.
func (f *Fetcher) ReadZipFromS3(ctx context.Context, loc Locator, declared filetype.FileType) (*models.Table, error) {
	data, err := f.deps.Stores.Get(ctx, loc)
	if err != nil {
		return nil, err
	}
	return f.ZipFileReader(ctx, data, loc.Name(), declared)
}

// ZipFileReader assembles a zip archive held in memory. Sheet groupings
// select name-grouped assembly; otherwise entries are read one by one.
func (f *Fetcher) ZipFileReader(ctx context.Context, data []byte, archiveName string, declared filetype.FileType) (*models.Table, error) {
	if declared == filetype.ZIP {
		declared = filetype.Unknown
	}
	if declared == filetype.Unknown && f.cfg.FileType != filetype.ZIP {
		declared = f.cfg.FileType
	}

	opts := ZipOptions(f.cfg)
	opts.OnSkip = f.deps.OnSkip
	if f.cfg.PasswordProtected {
		cfg, resolver := f.cfg, f.deps.Passwords
		opts.Password = func() (string, bool, error) { return resolver.ForSource(cfg) }
	}

	return f.assembler.Assemble(ctx, lazyZip{data: data}, archiveName, declared, opts)
}

// ZipOptions derives the assembly options of a source. Footer trimming
// defaults to zero rows and no sheet is exempt from row skipping.
func ZipOptions(cfg models.SourceConfig) archive.AssembleOptions {
	p := cfg.Parameters()
	read := dispatcher.OptionsFromConfig(cfg)
	if read.DisableSkipRowsSheets == nil {
		read.DisableSkipRowsSheets = []string{}
	}
	return archive.AssembleOptions{
		Read:             read,
		IgnoreExtensions: p.IgnoredFileTypes(),
		IgnoreNames:      p.IgnoreNames,
		SheetGroups:      p.SheetGroups(),
	}
}

// lazyZip defers opening the archive to Entries so that a corrupt archive
// surfaces as an assembly failure.
type lazyZip struct {
	data []byte
}

func (z lazyZip) Entries() ([]archive.Entry, error) {
	arc, err := archive.OpenZip(z.data)
	if err != nil {
		return nil, err
	}
	return arc.Entries()
}

// ReadSplitMT940FromS3 joins split statements into a staged file, reads it
// and removes the staged file on every path.
func (f *Fetcher) ReadSplitMT940FromS3(ctx context.Context, loc Locator, _ filetype.FileType) (*models.Table, error) {
	data, err := f.deps.Stores.Get(ctx, loc)
	if err != nil {
		return nil, err
	}

	staged, err := f.deps.Joiner.Join([][]byte{data}, f.deps.StagingDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fileutils.DeleteFile(staged); err != nil {
			f.logger.WithError(err).Warn("Failed to delete staged statement",
				logging.Field{Key: logging.FieldFile, Value: staged})
		}
	}()

	file, err := os.Open(staged) // #nosec G304 -- path returned by the joiner
	if err != nil {
		return nil, fmt.Errorf("failed to open joined statement: %w", err)
	}
	defer func() { _ = file.Close() }()

	return f.deps.Materializer.Materialize(file, staged, filetype.Detect(staged), dispatcher.OptionsFromConfig(f.cfg))
}
