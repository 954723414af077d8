// Package batch converts directories of XML files to XLSX workbooks.
// It drives the same pipeline as the HTTP service, one workbook per
// input file.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"xmlsheet/internal/convert"
)

// FileResult records the outcome of one file conversion.
type FileResult struct {
	Input   string
	Output  string
	Records int
	Err     error
}

// Summary aggregates a directory run.
type Summary struct {
	Results   []FileResult
	Succeeded int
	Failed    int
}

// Runner converts every XML file in a directory.
type Runner struct {
	converter *convert.Converter
	logger    *slog.Logger
	workers   int
}

// NewRunner creates a batch runner. workers caps concurrent
// conversions; values below 1 mean sequential.
func NewRunner(converter *convert.Converter, logger *slog.Logger, workers int) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		converter: converter,
		logger:    logger.With(slog.String("component", "batch")),
		workers:   workers,
	}
}

// Run converts every .xml file directly under inputDir, writing one
// .xlsx per input into outputDir. Failures in one file do not stop the
// others. The returned error covers setup problems only; per-file
// failures live in the Summary.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	inputs, err := discoverXMLFiles(inputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	results := make([]FileResult, len(inputs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)
	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.convertFile(ctx, input, outputDir)
		}(i, input)
	}
	wg.Wait()

	summary := &Summary{Results: results}
	for _, res := range results {
		if res.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	r.logger.InfoContext(ctx, "batch run complete",
		slog.Int("files", len(inputs)),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (r *Runner) convertFile(ctx context.Context, input, outputDir string) FileResult {
	res := FileResult{Input: input}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	data, err := os.ReadFile(input)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", input, err)
		return res
	}

	result, err := r.converter.Convert(ctx, string(data))
	if err != nil {
		res.Err = fmt.Errorf("convert %s: %w", filepath.Base(input), err)
		return res
	}
	res.Records = result.RecordCount

	res.Output = filepath.Join(outputDir, outputName(input))
	if err := os.WriteFile(res.Output, result.Workbook, 0o644); err != nil {
		res.Err = fmt.Errorf("write %s: %w", res.Output, err)
		return res
	}

	r.logger.InfoContext(ctx, "converted file",
		slog.String("input", filepath.Base(input)),
		slog.String("output", filepath.Base(res.Output)),
		slog.Int("records", res.Records),
	)
	return res
}

// outputName swaps the .xml extension for .xlsx.
func outputName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".xlsx"
}

func discoverXMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
