package pdftable

import (
	"errors"
	"os"
	"testing"

	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutText = `Order Number    Amount     Transaction Date
961326679       123.00     2024-01-02

961326680       45.50      2024-01-03
` + "\f"

func TestTableFromText(t *testing.T) {
	tbl, err := TableFromText(layoutText)
	require.NoError(t, err)
	assert.Equal(t, []string{"Order Number", "Amount", "Transaction Date"}, tbl.Columns)
	assert.Equal(t, [][]string{
		{"961326679", "123.00", "2024-01-02"},
		{"961326680", "45.50", "2024-01-03"},
	}, tbl.Rows)
}

func TestTableFromText_Errors(t *testing.T) {
	_, err := TableFromText("\n\n")
	assert.Error(t, err)

	_, err = TableFromText("A  B\n1  2  3\n")
	assert.Error(t, err)
}

func TestPdftotextExtractor_StagesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	var staged string

	e := NewPdftotextExtractor(dir, logging.NewMockLogger())
	e.run = func(path string) (string, error) {
		staged = path
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(data))
		return "A  B\n1  2\n", nil
	}

	tbl, err := e.ExtractTable([]byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr), "staged file must be removed")
}

func TestPdftotextExtractor_RunFailure(t *testing.T) {
	e := NewPdftotextExtractor(t.TempDir(), nil)
	e.run = func(string) (string, error) { return "", errors.New("pdftotext missing") }

	_, err := e.ExtractTable([]byte("%PDF"))
	assert.EqualError(t, err, "pdftotext missing")
}

func TestMockExtractor(t *testing.T) {
	m := &MockExtractor{Table: &models.Table{Columns: []string{"A"}, Rows: [][]string{{"1"}}}}
	tbl, err := m.ExtractTable(nil)
	require.NoError(t, err)
	assert.Equal(t, "1", tbl.Value(0, "A"))
	assert.Equal(t, 1, m.Calls)

	m.Err = errors.New("boom")
	_, err = m.ExtractTable(nil)
	assert.Error(t, err)
}
