// Package parse handles the parsing of a single MIS file
package parse

import (
	"context"
	"fmt"

	"fjacquet/mis-parser/cmd/common"
	"fjacquet/mis-parser/cmd/root"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/sink"

	"github.com/spf13/cobra"
)

// Flags of the parse command.
type Flags struct {
	Source string
	Input  string
	Output string
	Type   string
}

var flags = Flags{}

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse one MIS file into the canonical schema",
	Long: `Parse one MIS file with the configuration of a source and write the canonical table.

The input is a local path or an s3:// or gs:// locator. Without --output the table
is written to stdout. When storage.download_bucket or storage.upload_bucket is set,
bare input or output keys resolve against that S3 bucket.

Example:
  mis-parser parse --source payu --input s3://mis-inbox/payu/2024-05-01.zip -o out.csv`,
	RunE: parseFunc,
}

func init() {
	Cmd.Flags().StringVarP(&flags.Source, "source", "s", "", "Source name as configured in the sources file")
	Cmd.Flags().StringVarP(&flags.Input, "input", "i", "", "Input locator (path, s3://bucket/key or gs://bucket/key)")
	Cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Output locator (stdout when empty)")
	Cmd.Flags().StringVarP(&flags.Type, "type", "t", "", "Output format: csv, canonical-csv or parquet (default from config)")
	_ = Cmd.MarkFlagRequired("source")
	_ = Cmd.MarkFlagRequired("input")
}

func parseFunc(cmd *cobra.Command, args []string) error {
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

	storage := c.GetConfig().Storage
	input := storage.InputLocator(flags.Input)
	output := storage.OutputLocator(flags.Output)

	root.Log.Info("Parse command called",
		logging.Field{Key: logging.FieldSource, Value: flags.Source},
		logging.Field{Key: logging.FieldLocator, Value: input})

	rows, err := common.ProcessFile(ctx, p, input, output, w, c.GetStores(), cmd.OutOrStdout(), root.Log)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", input, err)
	}
	root.Log.Debug("Parse command finished", logging.Field{Key: logging.FieldRows, Value: rows})
	return nil
}
