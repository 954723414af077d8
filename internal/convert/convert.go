package convert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Converter runs the full pipeline: extract, infer, plan, pivot,
// assemble. It holds only immutable options and a logger, so a single
// instance is safe for concurrent use; every conversion builds its
// state fresh from its own input.
type Converter struct {
	opts   Options
	logger *slog.Logger
}

// NewConverter creates a converter with the given options. A nil logger
// falls back to slog.Default.
func NewConverter(opts Options, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		opts:   opts.normalized(),
		logger: logger.With(slog.String("component", "converter")),
	}
}

// Convert transforms one XML document into a Result. Only malformed XML
// (ErrParse) and workbook assembly failures (ErrAssembly) fail the
// conversion; in those cases the returned Result carries Success=false
// and a descriptive message alongside the error. Everything else,
// including a document with no matching records, succeeds with
// explanatory processing notes.
func (c *Converter) Convert(ctx context.Context, xmlText string) (*Result, error) {
	records, notes, err := ExtractRecords(xmlText, c.opts.RecordElement)
	if err != nil {
		c.logger.WarnContext(ctx, "xml parse failed", slog.String("error", err.Error()))
		return &Result{
			Success: false,
			Message: fmt.Sprintf("Error parsing XML: %v", err),
		}, err
	}

	schema := InferSchema(records, c.opts)
	plan := PlanPivot(records, schema, c.opts.MinRecords)

	var (
		table   *PivotTable
		quality []string
	)
	if plan.Pivot {
		table, quality = BuildPivot(records, plan, schema, c.opts.Collision)
		notes = append(notes, fmt.Sprintf("Pivoted data: %d categories across %d periods",
			len(table.Categories), len(table.Periods)))
	} else {
		notes = append(notes, "no pivot: "+plan.Reason)
	}
	if n := len(quality); n > 0 {
		notes = append(notes, fmt.Sprintf("%d records skipped during pivot", n))
	}

	processingNotes := strings.Join(notes, "; ")

	workbook, err := BuildWorkbook(records, schema, plan, table, quality, processingNotes, c.opts)
	if err != nil {
		c.logger.ErrorContext(ctx, "workbook assembly failed", slog.String("error", err.Error()))
		return &Result{
			Success:     false,
			Message:     fmt.Sprintf("Error building workbook: %v", err),
			RecordCount: len(records),
		}, err
	}

	c.logger.InfoContext(ctx, "conversion complete",
		slog.Int("records", len(records)),
		slog.Bool("pivoted", plan.Pivot),
		slog.String("notes", processingNotes),
	)

	return &Result{
		Success:         true,
		Message:         fmt.Sprintf("Successfully parsed %d records", len(records)),
		ProcessingNotes: processingNotes,
		RecordCount:     len(records),
		Workbook:        workbook,
	}, nil
}
