package batch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"xmlsheet/internal/convert"
)

const sampleXML = `<DataList>
  <TN_DT><CODE>A</CODE><PERIOD>2023</PERIOD><DTVAL>1</DTVAL></TN_DT>
  <TN_DT><CODE>A</CODE><PERIOD>2024</PERIOD><DTVAL>2</DTVAL></TN_DT>
</DataList>`

func newTestRunner(workers int) *Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(convert.NewConverter(convert.DefaultOptions(), logger), logger, workers)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunConvertsDirectory(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, inputDir, "one.xml", sampleXML)
	writeFile(t, inputDir, "two.XML", sampleXML)
	writeFile(t, inputDir, "skipped.txt", "not xml")

	summary, err := newTestRunner(2).Run(context.Background(), inputDir, outputDir)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Results, 2)

	for _, res := range summary.Results {
		require.NoError(t, res.Err)
		assert.Equal(t, 2, res.Records)
		assert.Equal(t, ".xlsx", filepath.Ext(res.Output))

		wb, err := excelize.OpenFile(res.Output)
		require.NoError(t, err)
		assert.Contains(t, wb.GetSheetList(), "Data")
		require.NoError(t, wb.Close())
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeFile(t, inputDir, "good.xml", sampleXML)
	writeFile(t, inputDir, "bad.xml", "<broken")

	summary, err := newTestRunner(1).Run(context.Background(), inputDir, outputDir)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	for _, res := range summary.Results {
		if filepath.Base(res.Input) == "bad.xml" {
			assert.ErrorIs(t, res.Err, convert.ErrParse)
		} else {
			assert.NoError(t, res.Err)
		}
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	summary, err := newTestRunner(1).Run(context.Background(), t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
}

func TestRunMissingInputDir(t *testing.T) {
	_, err := newTestRunner(1).Run(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read input directory")
}

func TestRunCancelledContext(t *testing.T) {
	inputDir := t.TempDir()
	writeFile(t, inputDir, "one.xml", sampleXML)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestRunner(1).Run(ctx, inputDir, t.TempDir())
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.ErrorIs(t, summary.Results[0].Err, context.Canceled)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "data.xlsx", outputName("/tmp/in/data.xml"))
	assert.Equal(t, "Report.xlsx", outputName("Report.XML"))
}
