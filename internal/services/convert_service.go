package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"xmlsheet/internal/config"
	"xmlsheet/internal/convert"
	"xmlsheet/internal/infrastructure"
)

// OutputFilename is the workbook filename suggested to clients.
const OutputFilename = "converted_data.xlsx"

// ConvertResponse is the JSON payload returned for a conversion request.
// ExcelFile carries the workbook as standard base64 so the response stays
// a plain JSON document.
type ConvertResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ProcessingNotes string `json:"processing_notes,omitempty"`
	RecordsCount    int    `json:"records_count"`
	ExcelFile       string `json:"excel_file,omitempty"`
	Filename        string `json:"filename,omitempty"`
}

// ConvertService runs the XML to XLSX pipeline for transport handlers.
type ConvertService struct {
	converter *convert.Converter
	logger    *slog.Logger
}

// NewConvertService builds a service from conversion settings. The settings
// are assumed to be validated by config.Load.
func NewConvertService(cfg config.ConversionConfig, logger *slog.Logger) (*ConvertService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &ConvertService{
		converter: convert.NewConverter(opts, logger),
		logger:    logger.With(slog.String("component", "convert_service")),
	}, nil
}

func optionsFromConfig(cfg config.ConversionConfig) (convert.Options, error) {
	policy, err := convert.ParseCollisionPolicy(cfg.CollisionPolicy)
	if err != nil {
		return convert.Options{}, fmt.Errorf("conversion config: %w", err)
	}
	opts := convert.Options{
		RecordElement:   cfg.RecordElement,
		CategoryPattern: cfg.CategoryPattern,
		PeriodPattern:   cfg.PeriodPattern,
		ValuePattern:    cfg.ValuePattern,
		MinRecords:      cfg.MinRecords,
		Collision:       policy,
		MaxRows:         cfg.MaxRows,
		MaxColumns:      cfg.MaxColumns,
	}
	return opts, nil
}

// Convert runs the pipeline on xmlText and shapes the API response.
// Parse failures come back as a non-success response rather than an error;
// only assembly and context failures surface as errors.
func (s *ConvertService) Convert(ctx context.Context, xmlText string) (*ConvertResponse, error) {
	if strings.TrimSpace(xmlText) == "" {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.converter.Convert(ctx, xmlText)
	infrastructure.ConversionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, convert.ErrParse) {
			infrastructure.ConversionsTotal.WithLabelValues("parse_error").Inc()
			// Parse failures still carry a client-facing response; the
			// handler pairs it with the error to pick the status code.
			return &ConvertResponse{
				Success:         false,
				Message:         result.Message,
				ProcessingNotes: result.ProcessingNotes,
				RecordsCount:    result.RecordCount,
			}, err
		}
		infrastructure.ConversionsTotal.WithLabelValues("assembly_error").Inc()
		return nil, err
	}

	infrastructure.ConversionsTotal.WithLabelValues("success").Inc()
	infrastructure.RecordsProcessed.Add(float64(result.RecordCount))
	if strings.Contains(result.ProcessingNotes, "Pivoted data") {
		infrastructure.PivotsTotal.WithLabelValues("pivoted").Inc()
	} else {
		infrastructure.PivotsTotal.WithLabelValues("flat").Inc()
	}

	s.logger.InfoContext(ctx, "conversion completed",
		slog.Int("records", result.RecordCount),
		slog.Int("workbook_bytes", len(result.Workbook)),
	)

	return &ConvertResponse{
		Success:         true,
		Message:         result.Message,
		ProcessingNotes: result.ProcessingNotes,
		RecordsCount:    result.RecordCount,
		ExcelFile:       base64.StdEncoding.EncodeToString(result.Workbook),
		Filename:        OutputFilename,
	}, nil
}
