package sink

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"fjacquet/mis-parser/internal/models"

	"github.com/gocarina/gocsv"
)

// CSVWriter writes the table as is, header first.
type CSVWriter struct {
	Delimiter rune
}

// Extension implements Writer.
func (CSVWriter) Extension() string { return ".csv" }

// Encode implements Writer.
func (w CSVWriter) Encode(t *models.Table) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if w.Delimiter != 0 {
		cw.Comma = w.Delimiter
	}
	if err := cw.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("error writing CSV header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("error writing CSV data: %w", err)
	}
	return buf.Bytes(), nil
}

// CanonicalCSVWriter writes every canonical column, empty when unpopulated.
type CanonicalCSVWriter struct{}

// Extension implements Writer.
func (CanonicalCSVWriter) Extension() string { return ".csv" }

// Encode implements Writer.
func (CanonicalCSVWriter) Encode(t *models.Table) ([]byte, error) {
	records := models.RecordsFromTable(t)
	data, err := gocsv.MarshalBytes(&records)
	if err != nil {
		return nil, fmt.Errorf("error writing CSV data: %w", err)
	}
	return data, nil
}
