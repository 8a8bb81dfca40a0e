package sink

import (
	"bytes"
	"fmt"

	"fjacquet/mis-parser/internal/models"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// ParquetWriter writes canonical records as snappy-compressed Parquet.
type ParquetWriter struct{}

// Extension implements Writer.
func (ParquetWriter) Extension() string { return ".parquet" }

// Encode implements Writer.
func (ParquetWriter) Encode(t *models.Table) ([]byte, error) {
	var buf bytes.Buffer
	fw := writerfile.NewWriterFile(&buf)
	pw, err := writer.NewParquetWriter(fw, new(models.CanonicalRecord), 1)
	if err != nil {
		return nil, fmt.Errorf("parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range models.RecordsFromTable(t) {
		if err := pw.Write(rec); err != nil {
			return nil, fmt.Errorf("parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("parquet finalize: %w", err)
	}
	return buf.Bytes(), nil
}
