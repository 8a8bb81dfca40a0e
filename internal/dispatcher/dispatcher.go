// Package dispatcher materializes a single file into a table, choosing the
// reader from the declared or detected file type.
package dispatcher

import (
	"bytes"
	"fmt"
	"io"

	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parsererror"
	"fjacquet/mis-parser/internal/pdftable"
)

// ReadOptions are the per-type options threaded through to a reader.
type ReadOptions struct {
	HeaderInfo *models.HeaderInfo
	// SheetName selects a workbook sheet; empty means the first sheet.
	SheetName string
	DTypes    map[string]models.DType
	// Delimiter overrides the separator of delimited text. Zero means
	// comma for csv and sniffed for txt.
	Delimiter rune
	Encoding  string
	SkipRows  int
	// DisableSkipRowsSheets lists sheets that keep their leading rows.
	DisableSkipRowsSheets []string
	SkipFooter            int
}

// OptionsFromConfig builds the read options declared by a source.
func OptionsFromConfig(cfg models.SourceConfig) ReadOptions {
	p := cfg.Parameters()
	opts := ReadOptions{
		HeaderInfo:            p.HeaderInfo,
		SheetName:             p.SheetName,
		DTypes:                cfg.FileDType,
		Encoding:              p.Encoding,
		SkipRows:              p.SkipRows,
		DisableSkipRowsSheets: p.DisableSkipRowsSheets,
		SkipFooter:            p.SkipFooter,
	}
	if r := []rune(p.Delimiter); len(r) > 0 {
		opts.Delimiter = r[0]
	}
	if p.Delimiter == `\t` {
		opts.Delimiter = '\t'
	}
	return opts
}

// Sheet is one materialized workbook sheet.
type Sheet struct {
	Name  string
	Table *models.Table
}

// Dispatcher reads csv, txt, workbook and pdf inputs.
type Dispatcher struct {
	pdf    pdftable.Extractor
	logger logging.Logger
}

// New creates a Dispatcher. pdf may be nil when no source reads PDF input.
func New(pdf pdftable.Extractor, logger logging.Logger) *Dispatcher {
	return &Dispatcher{pdf: pdf, logger: logging.OrDefault(logger)}
}

// Materialize reads r as a file of type declared (detected from fileName when
// declared is empty). It never writes.
func (d *Dispatcher) Materialize(r io.Reader, fileName string, declared filetype.FileType, opts ReadOptions) (*models.Table, error) {
	ft := declared
	if ft == filetype.Unknown {
		ft = filetype.Detect(fileName)
	}
	if !d.Supports(ft) {
		return nil, &parsererror.UnsupportedFormatError{FileType: string(ft), FileName: fileName}
	}

	d.logger.Debug("Materializing file",
		logging.Field{Key: logging.FieldFile, Value: fileName},
		logging.Field{Key: logging.FieldFileType, Value: string(ft)})

	var (
		table *models.Table
		err   error
	)
	switch {
	case ft.IsDelimited():
		table, err = readDelimited(r, ft, opts)
	case ft.IsWorkbook():
		table, err = readSheet(r, opts)
	case ft == filetype.PDF:
		table, err = d.readPDF(r)
	}
	if err != nil {
		return nil, &parsererror.FormatReadError{FileName: fileName, Err: err}
	}

	table.TrimFooter(opts.SkipFooter)
	if err := applyDTypes(table, opts.DTypes); err != nil {
		return nil, &parsererror.FormatReadError{FileName: fileName, Err: err}
	}
	return table, nil
}

// MaterializeSheets reads every sheet of a workbook in workbook order.
func (d *Dispatcher) MaterializeSheets(r io.Reader, fileName string, opts ReadOptions) ([]Sheet, error) {
	if ft := filetype.Detect(fileName); ft != filetype.Unknown && !ft.IsWorkbook() {
		return nil, &parsererror.UnsupportedFormatError{FileType: string(ft), FileName: fileName}
	}
	sheets, err := readAllSheets(r, opts)
	if err != nil {
		return nil, &parsererror.FormatReadError{FileName: fileName, Err: err}
	}
	for _, s := range sheets {
		s.Table.TrimFooter(opts.SkipFooter)
		if err := applyDTypes(s.Table, opts.DTypes); err != nil {
			return nil, &parsererror.FormatReadError{FileName: fileName, Err: err}
		}
	}
	d.logger.Debug("Materialized workbook sheets",
		logging.Field{Key: logging.FieldFile, Value: fileName},
		logging.Field{Key: logging.FieldCount, Value: len(sheets)})
	return sheets, nil
}

// Supports reports whether a reader exists for ft.
func (d *Dispatcher) Supports(ft filetype.FileType) bool {
	switch {
	case ft.IsDelimited(), ft.IsWorkbook():
		return true
	case ft == filetype.PDF:
		return d.pdf != nil
	default:
		return false
	}
}

func (d *Dispatcher) readPDF(r io.Reader) (*models.Table, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to read PDF bytes: %w", err)
	}
	return d.pdf.ExtractTable(buf.Bytes())
}
