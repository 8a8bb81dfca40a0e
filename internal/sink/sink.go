// Package sink writes normalized tables to local files or object stores.
package sink

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/mis-parser/internal/fetch"
	"fjacquet/mis-parser/internal/models"
)

// Output formats.
const (
	FormatCSV          = "csv"
	FormatCanonicalCSV = "canonical-csv"
	FormatParquet      = "parquet"
)

// Formats lists the supported output formats.
var Formats = []string{FormatCSV, FormatCanonicalCSV, FormatParquet}

// Writer encodes a table.
type Writer interface {
	Encode(t *models.Table) ([]byte, error)
	Extension() string
}

// New returns the writer for format.
func New(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV, "":
		return CSVWriter{Delimiter: ','}, nil
	case FormatCanonicalCSV:
		return CanonicalCSVWriter{}, nil
	case FormatParquet:
		return ParquetWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format '%s'", format)
	}
}

// Write encodes t and stores it at loc.
func Write(ctx context.Context, w Writer, t *models.Table, stores *fetch.Registry, loc fetch.Locator) error {
	data, err := w.Encode(t)
	if err != nil {
		return err
	}
	if err := stores.Put(ctx, loc, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", loc, err)
	}
	return nil
}
