package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourcesDoc = `
sources:
  payu:
    read_from_s3_func: readFromS3
    file_dtype:
      Order_Number: str
    columns_mapping:
      Order_Number: MisTxRef
      Amount: MisAmount
    threshold: 2000
  cashfree:
    compression_type: zip
    file_type: xlsx
    password_protected: true
    password_type: password_changes_wrt_time
    parameters_for_read_s3:
      sale_sheet_names: [Sales]
      refund_sheet_names: [Refunds]
      ignore_file_based_on_extension: [pdf]
    columns_mapping:
      Txn_Id: MisTxRef
`

func writeSources(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseSources(t *testing.T) {
	sources, err := ParseSources([]byte(sourcesDoc))
	require.NoError(t, err)
	require.Len(t, sources, 2)

	payu := sources["payu"]
	assert.Equal(t, "payu", payu.Name)
	assert.Equal(t, models.ReadFromS3, payu.Strategy())
	assert.Equal(t, models.MisTxRef, payu.ColumnsMapping["Order_Number"])
	assert.Equal(t, models.Threshold{Max: 2000}, *payu.Threshold)

	cashfree := sources["cashfree"]
	assert.Equal(t, "cashfree", cashfree.Name)
	assert.Equal(t, models.ReadZipFromS3, cashfree.Strategy())
	assert.Equal(t, filetype.XLSX, cashfree.FileType)
	assert.Len(t, cashfree.Parameters().SheetGroups(), 2)
}

func TestParseSources_UnknownIdentifierIsConfigError(t *testing.T) {
	doc := `
sources:
  payu:
    read_from_s3_func: readFromFTP
`
	_, err := ParseSources([]byte(doc))

	var cfgErr *parsererror.ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
	assert.Equal(t, "payu", cfgErr.Source)
	assert.Contains(t, cfgErr.Reason, "readFromFTP")
}

func TestParseSources_ValidationRuns(t *testing.T) {
	doc := `
sources:
  payu:
    columns_mapping:
      Amount: NotCanonical
`
	_, err := ParseSources([]byte(doc))

	var cfgErr *parsererror.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "columns_mapping", cfgErr.Field)
}

func TestParseSources_MalformedYAML(t *testing.T) {
	_, err := ParseSources([]byte("sources: [unterminated"))
	assert.Error(t, err)
}

func TestSourcesLoader_LoadSourceFiles(t *testing.T) {
	logger := logging.NewMockLogger()
	loader := NewSourcesLoader(logger)

	first := writeSources(t, "first.yaml", sourcesDoc)
	second := writeSources(t, "second.yaml", "sources:\n  razorpay:\n    columns_mapping: {Amount: MisAmount}\n")

	sources, err := loader.LoadSourceFiles([]string{first, second})
	require.NoError(t, err)
	assert.Len(t, sources, 3)
	assert.True(t, logger.HasEntry("INFO", "Loaded source configurations"))

	_, err = loader.LoadSourceFiles([]string{first, first})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate source found: cashfree")

	_, err = loader.LoadSourceFiles([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoadSources(t *testing.T) {
	path := writeSources(t, "sources.yaml", sourcesDoc)

	sources, err := LoadSources(&Config{Sources: SourcesConfig{File: path}}, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Contains(t, sources, "payu")
}

func TestSourcesLoader_WarnsOnOpenPermissions(t *testing.T) {
	path := writeSources(t, "sources.yaml", sourcesDoc)
	require.NoError(t, os.Chmod(path, 0644))
	logger := logging.NewMockLogger()

	_, err := NewSourcesLoader(logger).LoadSourceFiles([]string{path})
	require.NoError(t, err)
	assert.True(t, logger.HasEntry("WARN", "Source file is readable by others"))
}
