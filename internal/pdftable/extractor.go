// Package pdftable turns PDF reports into tables.
package pdftable

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"fjacquet/mis-parser/internal/fileutils"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"
)

// Extractor extracts the tabular content of a PDF document.
type Extractor interface {
	ExtractTable(data []byte) (*models.Table, error)
}

// PdftotextExtractor extracts tables with the pdftotext command. Lines are
// split into cells on runs of two or more spaces; the first non-empty line is
// the header.
type PdftotextExtractor struct {
	StagingDir string
	logger     logging.Logger
	run        func(pdfPath string) (string, error)
}

// NewPdftotextExtractor creates an extractor that stages bytes under stagingDir.
func NewPdftotextExtractor(stagingDir string, logger logging.Logger) *PdftotextExtractor {
	return &PdftotextExtractor{
		StagingDir: stagingDir,
		logger:     logging.OrDefault(logger),
		run:        runPdftotext,
	}
}

var runPdftotext = func(pdfPath string) (string, error) {
	// #nosec G204 -- the only argument is a staging file we created
	out, err := exec.Command("pdftotext", "-layout", pdfPath, "-").Output()
	if err != nil {
		return "", fmt.Errorf("error running pdftotext: %w", err)
	}
	return string(out), nil
}

// ExtractTable implements Extractor.
func (e *PdftotextExtractor) ExtractTable(data []byte) (*models.Table, error) {
	path, err := fileutils.StageBytes(e.StagingDir, "statement.pdf", data)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fileutils.DeleteFile(path); err != nil {
			e.logger.WithError(err).Warn("Failed to remove staged PDF",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	run := e.run
	if run == nil {
		run = runPdftotext
	}
	text, err := run(path)
	if err != nil {
		return nil, err
	}
	return TableFromText(text)
}

var cellSeparator = regexp.MustCompile(`\s{2,}`)

// TableFromText splits layout-preserved text into a table. Lines with more
// cells than the header are rejected; shorter ones are padded.
func TableFromText(text string) (*models.Table, error) {
	var table *models.Table
	for n, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(strings.Trim(line, "\f"))
		if line == "" {
			continue
		}
		cells := cellSeparator.Split(line, -1)
		if table == nil {
			table = models.NewTable(cells...)
			continue
		}
		if err := table.AppendRow(cells); err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
	}
	if table == nil {
		return nil, fmt.Errorf("no table found in PDF text")
	}
	return table, nil
}

// MockExtractor returns a predefined table or error.
type MockExtractor struct {
	Table *models.Table
	Err   error
	Calls int
}

// ExtractTable implements Extractor.
func (m *MockExtractor) ExtractTable(data []byte) (*models.Table, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Table.Clone(), nil
}
