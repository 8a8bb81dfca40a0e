// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fjacquet/mis-parser/internal/fetch"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/parser"
	"fjacquet/mis-parser/internal/sink"
)

// ProcessFile parses locator with p and writes the encoded table to output,
// which may be a local path or an object store locator. An empty output
// writes to stdout. It returns the number of rows written.
func ProcessFile(ctx context.Context, p parser.Parser, locator, output string, w sink.Writer, stores *fetch.Registry, stdout io.Writer, log logging.Logger) (int, error) {
	log = logging.OrDefault(log)

	table, err := p.ParseFile(ctx, locator)
	if err != nil {
		return 0, err
	}

	if output == "" {
		data, err := w.Encode(table)
		if err != nil {
			return 0, err
		}
		if _, err := stdout.Write(data); err != nil {
			return 0, fmt.Errorf("failed to write output: %w", err)
		}
		return table.Len(), nil
	}

	loc, err := fetch.ParseLocator(output)
	if err != nil {
		return 0, err
	}
	if stores == nil {
		stores = fetch.NewRegistry()
	}
	if err := sink.Write(ctx, w, table, stores, loc); err != nil {
		return 0, err
	}

	log.Info("Conversion completed successfully",
		logging.Field{Key: logging.FieldSource, Value: p.Name()},
		logging.Field{Key: logging.FieldOutput, Value: loc.String()},
		logging.Field{Key: logging.FieldRows, Value: table.Len()})
	return table.Len(), nil
}

// OutputPath names the output of inputFile inside outputDir, replacing the
// input extension with the writer's.
func OutputPath(inputFile, outputDir string, w sink.Writer) string {
	base := filepath.Base(inputFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+w.Extension())
}
