// Package batch handles batch processing of files
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fjacquet/mis-parser/cmd/common"
	"fjacquet/mis-parser/cmd/root"
	"fjacquet/mis-parser/internal/fetch"
	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/parser"
	"fjacquet/mis-parser/internal/sink"
	"fjacquet/mis-parser/internal/validation"

	"github.com/spf13/cobra"
)

// Flags of the batch command.
type Flags struct {
	Source    string
	InputDir  string
	OutputDir string
	Type      string
}

var flags = Flags{}

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process MIS files from a directory",
	Long: `Batch process every MIS file of an input directory with one source configuration
and write one canonical table per input file to another directory.

A file that fails to parse is logged and skipped; the command fails when no file
could be processed.

Example:
  mis-parser batch --source payu -i inbox/ -o out/`,
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&flags.Source, "source", "s", "", "Source name as configured in the sources file")
	Cmd.Flags().StringVarP(&flags.InputDir, "input-dir", "i", "", "Input directory")
	Cmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", "", "Output directory")
	Cmd.Flags().StringVarP(&flags.Type, "type", "t", "", "Output format: csv, canonical-csv or parquet (default from config)")
	_ = Cmd.MarkFlagRequired("source")
	_ = Cmd.MarkFlagRequired("input-dir")
	_ = Cmd.MarkFlagRequired("output-dir")
}

func batchFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := root.GetContainer(ctx)
	if err != nil {
		return err
	}

	format := flags.Type
	if format == "" {
		format = c.GetConfig().Output.Format
	}
	w, err := sink.New(format)
	if err != nil {
		return err
	}
	p, err := c.GetParser(flags.Source)
	if err != nil {
		return err
	}

	if err := validation.IsValidDirectory(flags.InputDir); err != nil {
		return err
	}
	if err := os.MkdirAll(flags.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	processed, failed, err := BatchConvert(ctx, p, flags.InputDir, flags.OutputDir, w, c.GetStores(), root.Log)
	if err != nil {
		return err
	}
	if processed == 0 && failed > 0 {
		return fmt.Errorf("all %d files failed to parse", failed)
	}
	root.Log.Info(fmt.Sprintf("Batch processing completed. %d files converted, %d failed.", processed, failed))
	return nil
}

// BatchConvert parses every regular file of inputDir whose type can be
// detected and writes the results to outputDir. It returns the number of
// converted and failed files.
func BatchConvert(ctx context.Context, p parser.Parser, inputDir, outputDir string, w sink.Writer, stores *fetch.Registry, logger logging.Logger) (int, int, error) {
	logger = logging.OrDefault(logger)

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read input directory: %w", err)
	}

	var inputFiles []string
	for _, entry := range entries {
		if entry.IsDir() || filetype.Detect(entry.Name()) == filetype.Unknown {
			continue
		}
		inputFiles = append(inputFiles, filepath.Join(inputDir, entry.Name()))
	}
	sort.Strings(inputFiles)

	if len(inputFiles) == 0 {
		logger.Warn("No supported files found in input directory")
		return 0, 0, nil
	}
	logger.Info("Found files for processing",
		logging.Field{Key: logging.FieldCount, Value: len(inputFiles)})

	processed, failed := 0, 0
	for _, inputFile := range inputFiles {
		if err := ctx.Err(); err != nil {
			return processed, failed, err
		}
		output := common.OutputPath(inputFile, outputDir, w)
		if _, err := common.ProcessFile(ctx, p, inputFile, output, w, stores, nil, logger); err != nil {
			logger.WithError(err).Error("Failed to process file",
				logging.Field{Key: logging.FieldFile, Value: filepath.Base(inputFile)})
			failed++
			continue
		}
		processed++
	}
	return processed, failed, nil
}
