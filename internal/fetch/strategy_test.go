package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/mis-parser/internal/dispatcher"
	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parsererror"
	"fjacquet/mis-parser/internal/password"
	"fjacquet/mis-parser/internal/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMaterializer struct {
	names  []string
	types  []filetype.FileType
	opts   []dispatcher.ReadOptions
	sheets []dispatcher.Sheet
	err    error
}

func (m *recordingMaterializer) Materialize(r io.Reader, name string, ft filetype.FileType, opts dispatcher.ReadOptions) (*models.Table, error) {
	m.names = append(m.names, name)
	m.types = append(m.types, ft)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	_, _ = io.ReadAll(r)
	t := models.NewTable("A")
	_ = t.AppendRow([]string{name})
	return t, nil
}

func (m *recordingMaterializer) MaterializeSheets(_ io.Reader, name string, opts dispatcher.ReadOptions) ([]dispatcher.Sheet, error) {
	m.names = append(m.names, name)
	m.opts = append(m.opts, opts)
	return m.sheets, m.err
}

func (m *recordingMaterializer) Supports(ft filetype.FileType) bool {
	return ft.IsDelimited() || ft.IsWorkbook()
}

type stubJoiner struct {
	dir  string
	path string
	err  error
}

func (j *stubJoiner) Join(_ [][]byte, dir string) (string, error) {
	j.dir = dir
	if j.err != nil {
		return "", j.err
	}
	j.path = filepath.Join(dir, "file_name.csv")
	return j.path, os.WriteFile(j.path, []byte("A\n1\n"), 0600)
}

func writeInput(t *testing.T, name string, data []byte) Locator {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0600))
	return Locator{Scheme: SchemeFile, Key: p}
}

func plainZip(t *testing.T, files ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		if strings.HasSuffix(name, "/") {
			continue
		}
		_, err = fw.Write([]byte("A\n1\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestNewFetcher_SelectsStrategy(t *testing.T) {
	_, err := NewFetcher(models.SourceConfig{ReadFromS3Func: models.ReadSplitMT940FromS3}, Deps{})
	assert.Error(t, err, "mt940 needs a joiner")

	_, err = NewFetcher(models.SourceConfig{ReadFromS3Func: "readFromFTP"}, Deps{})
	assert.Error(t, err)

	f, err := NewFetcher(models.SourceConfig{CompressionType: models.CompressionZip}, Deps{Logger: logging.NewMockLogger()})
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestReadFromS3_UsesDeclaredThenConfiguredType(t *testing.T) {
	m := &recordingMaterializer{}
	loc := writeInput(t, "mis.dat", []byte("A\n1\n"))

	f, err := NewFetcher(models.SourceConfig{FileType: filetype.CSV}, Deps{Materializer: m})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), loc, filetype.TXT)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), loc, filetype.Unknown)
	require.NoError(t, err)
	assert.Equal(t, []filetype.FileType{filetype.TXT, filetype.CSV}, m.types)
	assert.Equal(t, []string{"mis.dat", "mis.dat"}, m.names)
}

func TestReadFromS3_PropagatesFetchErrors(t *testing.T) {
	f, err := NewFetcher(models.SourceConfig{}, Deps{Materializer: &recordingMaterializer{}})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), Locator{Scheme: SchemeFile, Key: "/does/not/exist.csv"}, filetype.CSV)
	assert.ErrorContains(t, err, "failed to read")
}

func TestReadCompleteExcelFile_ConcatenatesSheets(t *testing.T) {
	s1 := models.NewTable("A")
	_ = s1.AppendRow([]string{"1"})
	s2 := models.NewTable("A")
	_ = s2.AppendRow([]string{"2"})
	m := &recordingMaterializer{sheets: []dispatcher.Sheet{{Name: "Sheet1", Table: s1}, {Name: "Sheet2", Table: s2}}}

	f, err := NewFetcher(models.SourceConfig{ReadFromS3Func: models.ReadCompleteExcelFile}, Deps{Materializer: m})
	require.NoError(t, err)

	out, err := f.Fetch(context.Background(), writeInput(t, "mis.xlsx", []byte("wb")), filetype.Unknown)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1"}, {"2"}}, out.Rows)
}

func TestZipOptions_Defaults(t *testing.T) {
	opts := ZipOptions(models.SourceConfig{})
	assert.Equal(t, 0, opts.Read.SkipFooter)
	assert.NotNil(t, opts.Read.DisableSkipRowsSheets)
	assert.Empty(t, opts.Read.DisableSkipRowsSheets)
	assert.Empty(t, opts.SheetGroups)

	grouped := ZipOptions(models.SourceConfig{ParametersForReadS3: &models.ReadParameters{
		SaleSheetNames:   []string{"Sales"},
		RefundSheetNames: []string{"Refunds"},
		IgnoreNames:      []string{"readme.txt"},
		IgnoreExtensions: []string{"pdf"},
		SkipFooter:       2,
	}})
	assert.Len(t, grouped.SheetGroups, 2)
	assert.Equal(t, 2, grouped.Read.SkipFooter)
	assert.Equal(t, []string{}, grouped.Read.DisableSkipRowsSheets)
	assert.Equal(t, []filetype.FileType{filetype.PDF}, grouped.IgnoreExtensions)
	assert.Equal(t, []string{"readme.txt"}, grouped.IgnoreNames)
}

func TestReadZipFromS3_FlatAssembly(t *testing.T) {
	m := &recordingMaterializer{}
	var skipped []string
	cfg := models.SourceConfig{
		CompressionType:     models.CompressionZip,
		ParametersForReadS3: &models.ReadParameters{IgnoreExtensions: []string{"pdf"}},
	}
	f, err := NewFetcher(cfg, Deps{Materializer: m, OnSkip: func(name, reason string) { skipped = append(skipped, name) }})
	require.NoError(t, err)

	loc := writeInput(t, "mis.zip", plainZip(t, "folder1/", "folder1/file1.csv", "folder1/file2.pdf", "folder1/file3.txt"))
	out, err := f.Fetch(context.Background(), loc, filetype.ZIP)
	require.NoError(t, err)

	assert.Equal(t, []string{"folder1/file1.csv", "folder1/file3.txt"}, m.names)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"folder1/", "folder1/file2.pdf"}, skipped)
	for _, opts := range m.opts {
		assert.Equal(t, 0, opts.SkipFooter)
		assert.Equal(t, []string{}, opts.DisableSkipRowsSheets)
	}
}

func TestReadZipFromS3_CorruptArchive(t *testing.T) {
	f, err := NewFetcher(models.SourceConfig{CompressionType: models.CompressionZip}, Deps{Materializer: &recordingMaterializer{}})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), writeInput(t, "mis.zip", []byte("not a zip")), filetype.ZIP)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), parsererror.ArchiveAssemblyPrefix))
}

func TestReadZipFromS3_PasswordFailurePropagates(t *testing.T) {
	cfg := models.SourceConfig{
		CompressionType:   models.CompressionZip,
		PasswordProtected: true,
		PasswordSecretKey: "missing",
	}
	f, err := NewFetcher(cfg, Deps{
		Materializer: &recordingMaterializer{},
		Passwords:    password.NewResolver(secrets.MapStore{}),
	})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), writeInput(t, "mis.zip", plainZip(t, "a.csv")), filetype.ZIP)
	var pre *parsererror.PasswordResolutionError
	assert.True(t, errors.As(err, &pre))
}

func TestReadZipFromS3_DynamicPasswordIsResolvedPerCall(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	resolver := &password.Resolver{Now: func() time.Time { return day }}
	cfg := models.SourceConfig{
		CompressionType:   models.CompressionZip,
		PasswordProtected: true,
		PasswordType:      models.PasswordChangesWithTime,
	}
	f, err := NewFetcher(cfg, Deps{Materializer: &recordingMaterializer{}, Passwords: resolver})
	require.NoError(t, err)

	out, err := f.Fetch(context.Background(), writeInput(t, "mis.zip", plainZip(t, "a.csv")), filetype.ZIP)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len(), "plain entries open without the password")
}

func TestReadSplitMT940FromS3(t *testing.T) {
	staging := t.TempDir()
	j := &stubJoiner{}
	m := &recordingMaterializer{}
	f, err := NewFetcher(models.SourceConfig{ReadFromS3Func: models.ReadSplitMT940FromS3},
		Deps{Materializer: m, Joiner: j, StagingDir: staging})
	require.NoError(t, err)

	out, err := f.Fetch(context.Background(), writeInput(t, "statement.sta", []byte(":20:X")), filetype.Unknown)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
	assert.Equal(t, staging, j.dir)
	assert.Equal(t, []filetype.FileType{filetype.CSV}, m.types)
	_, statErr := os.Stat(j.path)
	assert.True(t, os.IsNotExist(statErr), "staged statement is deleted")
}

func TestReadSplitMT940FromS3_DeletesOnFailure(t *testing.T) {
	j := &stubJoiner{}
	m := &recordingMaterializer{err: errors.New("bad statement")}
	f, err := NewFetcher(models.SourceConfig{ReadFromS3Func: models.ReadSplitMT940FromS3},
		Deps{Materializer: m, Joiner: j, StagingDir: t.TempDir()})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), writeInput(t, "statement.sta", []byte(":20:X")), filetype.Unknown)
	assert.EqualError(t, err, "bad statement")
	_, statErr := os.Stat(j.path)
	assert.True(t, os.IsNotExist(statErr))

	j.err = errors.New("join failed")
	_, err = f.Fetch(context.Background(), writeInput(t, "statement.sta", []byte(":20:X")), filetype.Unknown)
	assert.EqualError(t, err, "join failed")
}
