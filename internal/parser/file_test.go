package parser_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/mis-parser/internal/fetch"
	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/metrics"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parser"
	"fjacquet/mis-parser/internal/parsererror"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settlementCSV = `Order_Number,Amount,Merchant_Name,Internal_Note
961326679,123,Acme Stores,keep out
961326680,45.50,Acme Stores,
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func flatSource() models.SourceConfig {
	return models.SourceConfig{
		ColumnsMapping: map[string]string{
			"Order_Number":  models.MisTxRef,
			"Amount":        models.MisAmount,
			"Merchant_Name": models.MisMerchantName,
		},
	}
}

func newParser(t *testing.T, cfg models.SourceConfig, logger logging.Logger, rec *metrics.Recorder) *parser.FileParser {
	t.Helper()
	p, err := parser.New("payu", cfg, parser.Deps{
		Logger:   logger,
		Metrics:  rec,
		NewRunID: func() string { return "run-1" },
	})
	require.NoError(t, err)
	return p
}

func TestFileParser_ParseFile_FlatCSV(t *testing.T) {
	path := writeFixture(t, "payu_settlement.csv", settlementCSV)
	logger := logging.NewMockLogger()
	rec := metrics.NewRecorder()

	out, err := newParser(t, flatSource(), logger, rec).ParseFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{models.MisTxRef, models.MisAmount, models.MisMerchantName}, out.Columns)
	assert.Equal(t, [][]string{
		{"961326679", "123", "Acme Stores"},
		{"961326680", "45.50", "Acme Stores"},
	}, out.Rows)

	infos := logger.GetEntriesByLevel("INFO")
	require.NotEmpty(t, infos)
	for _, e := range infos {
		runID, ok := e.FieldValue(logging.FieldRunID)
		require.True(t, ok, "entry %q has no run id", e.Message)
		assert.Equal(t, "run-1", runID)
		source, _ := e.FieldValue(logging.FieldSource)
		assert.Equal(t, "payu", source)
	}
	assert.True(t, logger.HasEntry("INFO", "Parsed MIS file"))

	n, err := testutil.GatherAndCount(rec.Registry(), "mis_parser_files_parsed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileParser_ParseFile_ThresholdViolation(t *testing.T) {
	path := writeFixture(t, "payu_settlement.csv", settlementCSV)
	cfg := flatSource()
	cfg.Threshold = &models.Threshold{Min: 5}
	logger := logging.NewMockLogger()
	rec := metrics.NewRecorder()

	out, err := newParser(t, cfg, logger, rec).ParseFile(context.Background(), path)
	assert.Nil(t, out)

	var sanitizeErr *parsererror.SanitizationError
	require.True(t, errors.As(err, &sanitizeErr))
	var thresholdErr *parsererror.ThresholdViolationError
	require.True(t, errors.As(err, &thresholdErr))
	assert.Equal(t, 2, thresholdErr.Rows)

	assert.True(t, logger.HasEntry("ERROR", "Failed to parse MIS file"))
	n, err := testutil.GatherAndCount(rec.Registry(), "mis_parser_files_failed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileParser_ParseFile_RetrievalErrorUnwrapped(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.csv")

	_, err := newParser(t, flatSource(), logging.NewMockLogger(), nil).ParseFile(context.Background(), missing)
	require.Error(t, err)

	var sanitizeErr *parsererror.SanitizationError
	assert.False(t, errors.As(err, &sanitizeErr))
	var assemblyErr *parsererror.ArchiveAssemblyError
	assert.False(t, errors.As(err, &assemblyErr))
}

func TestFileParser_ParseFile_BadLocator(t *testing.T) {
	_, err := newParser(t, flatSource(), logging.NewMockLogger(), nil).ParseFile(context.Background(), "ftp://host/file.csv")
	assert.Error(t, err)
}

type zipEntry struct {
	name    string
	content string
}

// writeZip stores entries in the given order and returns the archive path.
func writeZip(t *testing.T, entries ...zipEntry) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := w.Create(e.name)
		require.NoError(t, err)
		if e.content != "" {
			_, err = fw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	path := filepath.Join(t.TempDir(), "settlement.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestFileParser_ParseFile_ZipArchive(t *testing.T) {
	path := writeZip(t,
		zipEntry{"2024/", ""},
		zipEntry{"a.csv", "Order_Number,Amount\n1,10\n"},
		zipEntry{"summary.pdf", "%PDF-1.4"},
		zipEntry{"b.csv", "Order_Number,Amount\n2,20\n"},
	)

	cfg := models.SourceConfig{
		CompressionType:     models.CompressionZip,
		FileType:            filetype.CSV,
		ParametersForReadS3: &models.ReadParameters{IgnoreExtensions: []string{"pdf"}},
		ColumnsMapping: map[string]string{
			"Order_Number": models.MisTxRef,
			"Amount":       models.MisAmount,
		},
	}
	rec := metrics.NewRecorder()

	out, err := newParser(t, cfg, logging.NewMockLogger(), rec).ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{models.MisTxRef, models.MisAmount}, out.Columns)
	assert.Equal(t, [][]string{{"1", "10"}, {"2", "20"}}, out.Rows, "entries concatenate in archive order")

	n, err := testutil.GatherAndCount(rec.Registry(), "mis_parser_archive_entries_skipped_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per skip reason")
}

func TestFileParser_ParseFile_ZipArchiveAllEntriesSkipped(t *testing.T) {
	path := writeZip(t,
		zipEntry{"__MACOSX/", ""},
		zipEntry{"readme.pdf", "%PDF-1.4"},
	)

	cfg := models.SourceConfig{
		CompressionType:     models.CompressionZip,
		FileType:            filetype.CSV,
		ParametersForReadS3: &models.ReadParameters{IgnoreExtensions: []string{"pdf"}},
		ColumnsMapping: map[string]string{
			"Transaction_Type": models.MisTransactionType,
			"Order_Number":     models.MisTxRef,
		},
		EdgeCase: &models.EdgeCases{ReversalTxRef: &models.ReversalTxRefRule{
			Target:           "reversal_txRef",
			SourceColumn:     models.MisTxRef,
			TransactionTypes: models.DefaultReversalTransactionTypes,
		}},
		TransactionTypeFilter: &models.TransactionTypeFilter{
			Column: models.MisTransactionType,
			Values: []string{"SALE"},
			Type:   models.FilterEquals,
		},
	}

	out, err := newParser(t, cfg, logging.NewMockLogger(), nil).ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.True(t, out.HasColumn("reversal_txRef"))
}

func TestFileParser_FetchData_SkipsNormalization(t *testing.T) {
	path := writeFixture(t, "payu_settlement.txt", "Order_Number|Amount\n1|10\n")

	raw, err := newParser(t, flatSource(), logging.NewMockLogger(), nil).FetchData(context.Background(), path, filetype.TXT)
	require.NoError(t, err)
	assert.Equal(t, []string{"Order_Number", "Amount"}, raw.Columns)
	assert.Equal(t, 1, raw.Len())
}

type memStore map[string][]byte

func (m memStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := m[bucket+"/"+key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m memStore) Put(_ context.Context, bucket, key string, data []byte) error {
	m[bucket+"/"+key] = data
	return nil
}

func TestFileParser_UsesRegisteredStore(t *testing.T) {
	stores := fetch.NewRegistry()
	stores.Register(fetch.SchemeS3, memStore{"mis-bucket/payu/day.csv": []byte(settlementCSV)})

	p, err := parser.New("payu", flatSource(), parser.Deps{
		Fetch:  fetch.Deps{Stores: stores},
		Logger: logging.NewMockLogger(),
	})
	require.NoError(t, err)

	out, err := p.ParseFile(context.Background(), "s3://mis-bucket/payu/day.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	_, err = p.ParseFile(context.Background(), "s3://mis-bucket/payu/other.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
