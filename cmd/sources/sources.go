// Package sources lists and validates the configured MIS sources
package sources

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"fjacquet/mis-parser/cmd/root"
	"fjacquet/mis-parser/internal/config"
	"fjacquet/mis-parser/internal/models"

	"github.com/spf13/cobra"
)

var sourcesFile string

// Cmd represents the sources command
var Cmd = &cobra.Command{
	Use:   "sources",
	Short: "List and validate source configurations",
	Long: `Load the sources file, validate every source configuration and list them.

Unknown identifiers (read strategy, file type, password type, filter type) and
mapping errors are reported with the source and field at fault.`,
	RunE: sourcesFunc,
}

func init() {
	Cmd.Flags().StringVarP(&sourcesFile, "file", "f", "", "Sources file (default from config)")
}

func sourcesFunc(cmd *cobra.Command, args []string) error {
	cfg := root.GetConfig()
	if cfg == nil {
		return errors.New("configuration not loaded")
	}
	if sourcesFile != "" {
		override := *cfg
		override.Sources.File = sourcesFile
		cfg = &override
	}

	loaded, err := config.LoadSources(cfg, root.Log)
	if err != nil {
		return err
	}
	return List(cmd.OutOrStdout(), loaded)
}

// List writes one line per source, sorted by name.
func List(out io.Writer, sources map[string]models.SourceConfig) error {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSTRATEGY\tFILE TYPE\tPASSWORD\tFILTER")
	for _, name := range names {
		cfg := sources[name]
		fileType := string(cfg.FileType)
		if fileType == "" {
			fileType = "auto"
		}
		pw := "no"
		if cfg.PasswordProtected {
			pw = string(cfg.PasswordType)
			if pw == "" {
				pw = "static"
			}
		}
		filter := "none"
		if f := cfg.TransactionTypeFilter; f != nil && f.Type != models.FilterNone {
			filter = fmt.Sprintf("%s %s", f.Column, f.Type)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, cfg.Strategy(), fileType, pw, filter)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write source list: %w", err)
	}
	return nil
}
