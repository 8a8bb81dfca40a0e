package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/mis-parser/cmd/batch"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parser"
	"fjacquet/mis-parser/internal/sink"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCommand_CommandMetadata(t *testing.T) {
	assert.Equal(t, "batch", batch.Cmd.Use)
	assert.Contains(t, batch.Cmd.Short, "Batch process")
	assert.NotNil(t, batch.Cmd.RunE)
	assert.Contains(t, batch.Cmd.Long, "Example")
}

func TestBatchConvert(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	files := map[string]string{
		"day1.csv":   "Order_Number,Amount\n1,10\n",
		"day2.csv":   "Order_Number,Amount\n2,20\n3,30\n",
		"broken.csv": "Order_Number,Amount\n4,not-a-number\n",
		"README":     "no extension",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(inputDir, "archive.csv"), 0750))

	p, err := parser.New("payu", models.SourceConfig{
		FileDType:      map[string]models.DType{"Amount": models.DTypeFloat},
		ColumnsMapping: map[string]string{"Order_Number": models.MisTxRef, "Amount": models.MisAmount},
	}, parser.Deps{Logger: logging.NewMockLogger()})
	require.NoError(t, err)

	logger := logging.NewMockLogger()
	processed, failed, err := batch.BatchConvert(context.Background(), p, inputDir, outputDir, sink.CSVWriter{}, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Equal(t, 1, failed)

	data, err := os.ReadFile(filepath.Join(outputDir, "day2.csv"))
	require.NoError(t, err)
	assert.Equal(t, "MisTxRef,MisAmount\n2,20\n3,30\n", string(data))
	assert.NoFileExists(t, filepath.Join(outputDir, "broken.csv"))
	assert.Len(t, logger.GetEntriesByLevel("ERROR"), 1)
}

func TestBatchConvert_EmptyAndMissingDir(t *testing.T) {
	p, err := parser.New("payu", models.SourceConfig{}, parser.Deps{Logger: logging.NewMockLogger()})
	require.NoError(t, err)

	processed, failed, err := batch.BatchConvert(context.Background(), p, t.TempDir(), t.TempDir(), sink.CSVWriter{}, nil, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, failed)

	_, _, err = batch.BatchConvert(context.Background(), p, filepath.Join(t.TempDir(), "absent"), t.TempDir(), sink.CSVWriter{}, nil, nil)
	assert.Error(t, err)
}
