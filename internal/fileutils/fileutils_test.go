package fileutils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/mis-parser/internal/fileutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()
	assert.True(t, fileutils.DirectoryExists(tmpDir))
	assert.False(t, fileutils.DirectoryExists(filepath.Join(tmpDir, "missing")))
}

func TestStageBytes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")

	path, err := fileutils.StageBytes(dir, "statement.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".pdf"))
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, fileutils.DeleteFile(path))
	assert.NoFileExists(t, path)
}

func TestDeleteFile(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "test_file.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("Test content"), 0600))

	assert.NoError(t, fileutils.DeleteFile(filepath.Join(tmpDir, "non_existing_file.txt")))
	assert.NoError(t, fileutils.DeleteFile(filePath))
	assert.NoFileExists(t, filePath)
	assert.NoError(t, fileutils.DeleteFile(""))
}

func TestWriteFile_CreatesParents(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "a", "b", "out.csv")
	require.NoError(t, fileutils.WriteFile(nested, []byte("x"), 0600))
	assert.FileExists(t, nested)

	data, err := os.ReadFile(nested)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
