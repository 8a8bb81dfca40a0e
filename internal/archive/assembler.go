package archive

import (
	"context"
	"fmt"
	"io"
	"slices"

	"fjacquet/mis-parser/internal/dispatcher"
	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parsererror"
)

// Entry is one member of an archive.
type Entry interface {
	Name() string
	IsDir() bool
	IsEncrypted() bool
	// Open returns the entry content. password is ignored for plain entries.
	Open(password string) (io.ReadCloser, error)
}

// Archive enumerates its entries in archive order.
type Archive interface {
	Entries() ([]Entry, error)
}

// Materializer reads a single file into tables.
type Materializer interface {
	Materialize(r io.Reader, fileName string, declared filetype.FileType, opts dispatcher.ReadOptions) (*models.Table, error)
	MaterializeSheets(r io.Reader, fileName string, opts dispatcher.ReadOptions) ([]dispatcher.Sheet, error)
	Supports(ft filetype.FileType) bool
}

// PasswordFunc resolves the archive password. ok is false when the archive
// has no usable password.
type PasswordFunc func() (password string, ok bool, err error)

// AssembleOptions control entry admission and per-entry reading.
type AssembleOptions struct {
	Read             dispatcher.ReadOptions
	IgnoreExtensions []filetype.FileType
	IgnoreNames      []string
	// SheetGroups selects name-grouped mode when non-empty.
	SheetGroups []models.SheetGroup
	// Password is nil for archives that are not protected.
	Password PasswordFunc
	// OnSkip is called for every excluded entry.
	OnSkip func(entryName, reason string)
}

// Assembler builds a single table from the admitted entries of an archive.
type Assembler struct {
	materializer Materializer
	logger       logging.Logger
}

// NewAssembler creates an Assembler reading entries with m.
func NewAssembler(m Materializer, logger logging.Logger) *Assembler {
	return &Assembler{materializer: m, logger: logging.OrDefault(logger)}
}

// Assemble reads every admitted entry of arc and concatenates the results in
// entry order. Entries are read as their detected type; declared is used for
// entries whose extension has no reader. Zero admitted entries yield an empty
// table. Every failure is returned as a single ArchiveAssemblyError.
func (a *Assembler) Assemble(ctx context.Context, arc Archive, archiveName string, declared filetype.FileType, opts AssembleOptions) (*models.Table, error) {
	table, err := a.assemble(ctx, arc, archiveName, declared, opts)
	if err != nil {
		return nil, &parsererror.ArchiveAssemblyError{Err: err}
	}
	return table, nil
}

func (a *Assembler) assemble(ctx context.Context, arc Archive, archiveName string, declared filetype.FileType, opts AssembleOptions) (*models.Table, error) {
	logger := a.logger.WithFields(logging.Field{Key: logging.FieldArchive, Value: archiveName})

	var (
		password    string
		hasPassword bool
	)
	if opts.Password != nil {
		pw, ok, err := opts.Password()
		if err != nil {
			return nil, err
		}
		password, hasPassword = pw, ok
	}

	entries, err := arc.Entries()
	if err != nil {
		return nil, err
	}

	grouped := len(opts.SheetGroups) > 0
	var tables []*models.Table
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		detected := filetype.Detect(name)
		if entry.IsDir() {
			detected = filetype.Unknown
		}
		var marker *string
		if entry.IsEncrypted() && !hasPassword {
			placeholder := password
			marker = &placeholder
		}

		if reason := SkipReason(name, detected, opts.IgnoreExtensions, opts.IgnoreNames, marker); reason != "" {
			logger.Debug("Skipping archive entry",
				logging.Field{Key: logging.FieldEntry, Value: name},
				logging.Field{Key: logging.FieldReason, Value: reason})
			if opts.OnSkip != nil {
				opts.OnSkip(name, reason)
			}
			continue
		}

		ft := detected
		if !a.materializer.Supports(ft) && declared != filetype.Unknown {
			ft = declared
		}

		var produced []*models.Table
		if grouped {
			produced, err = a.readGrouped(entry, ft, password, opts, logger)
		} else {
			var t *models.Table
			t, err = a.readEntry(entry, ft, password, opts.Read)
			produced = []*models.Table{t}
		}
		if err != nil {
			return nil, err
		}

		for _, t := range produced {
			logger.Debug("Read archive entry",
				logging.Field{Key: logging.FieldEntry, Value: name},
				logging.Field{Key: logging.FieldRows, Value: t.Len()})
		}
		tables = append(tables, produced...)
	}

	out := models.Concat(tables...)
	logger.Info("Assembled archive",
		logging.Field{Key: logging.FieldCount, Value: len(tables)},
		logging.Field{Key: logging.FieldRows, Value: out.Len()})
	return out, nil
}

func (a *Assembler) readEntry(entry Entry, ft filetype.FileType, password string, opts dispatcher.ReadOptions) (*models.Table, error) {
	rc, err := entry.Open(password)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry '%s': %w", entry.Name(), err)
	}
	defer func() { _ = rc.Close() }()
	return a.materializer.Materialize(rc, entry.Name(), ft, opts)
}

// readGrouped reads a workbook entry sheet by sheet and keeps the sheets
// named in a group, labelling their rows with the group label. Other entry
// types are read once and labelled with the first group.
func (a *Assembler) readGrouped(entry Entry, ft filetype.FileType, password string, opts AssembleOptions, logger logging.Logger) ([]*models.Table, error) {
	if !ft.IsWorkbook() {
		t, err := a.readEntry(entry, ft, password, opts.Read)
		if err != nil {
			return nil, err
		}
		labelled, err := withLabel(t, opts.SheetGroups[0].Label)
		if err != nil {
			return nil, err
		}
		return []*models.Table{labelled}, nil
	}

	rc, err := entry.Open(password)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry '%s': %w", entry.Name(), err)
	}
	defer func() { _ = rc.Close() }()

	sheets, err := a.materializer.MaterializeSheets(rc, entry.Name(), opts.Read)
	if err != nil {
		return nil, err
	}

	var out []*models.Table
	for _, sheet := range sheets {
		label, ok := groupLabel(opts.SheetGroups, sheet.Name)
		if !ok {
			logger.Debug("Skipping ungrouped sheet",
				logging.Field{Key: logging.FieldEntry, Value: entry.Name()},
				logging.Field{Key: logging.FieldSheet, Value: sheet.Name})
			continue
		}
		labelled, err := withLabel(sheet.Table, label)
		if err != nil {
			return nil, err
		}
		out = append(out, labelled)
	}
	return out, nil
}

func groupLabel(groups []models.SheetGroup, sheet string) (string, bool) {
	for _, g := range groups {
		if slices.Contains(g.Sheets, sheet) {
			return g.Label, true
		}
	}
	return "", false
}

func withLabel(t *models.Table, label string) (*models.Table, error) {
	values := make([]string, t.Len())
	for i := range values {
		values[i] = label
	}
	return t.WithColumn(models.SheetLabelColumn, values)
}
