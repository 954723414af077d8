package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"xmlsheet/internal/batch"
	"xmlsheet/internal/config"
	"xmlsheet/internal/convert"
	"xmlsheet/internal/infrastructure"
)

var (
	convertOutputDir string
	convertWorkers   int
)

var convertCmd = &cobra.Command{
	Use:   "convert <input-dir>",
	Short: "Convert a directory of XML files to XLSX workbooks",
	Long: `Convert every .xml file in the input directory into an .xlsx
workbook. Each output file keeps the input's base name. Failures in one
file do not stop the others; the command exits non-zero if any file
failed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer infrastructure.CloseLogFile()

		policy, err := convert.ParseCollisionPolicy(cfg.Conversion.CollisionPolicy)
		if err != nil {
			return err
		}
		converter := convert.NewConverter(convert.Options{
			RecordElement:   cfg.Conversion.RecordElement,
			CategoryPattern: cfg.Conversion.CategoryPattern,
			PeriodPattern:   cfg.Conversion.PeriodPattern,
			ValuePattern:    cfg.Conversion.ValuePattern,
			MinRecords:      cfg.Conversion.MinRecords,
			Collision:       policy,
			MaxRows:         cfg.Conversion.MaxRows,
			MaxColumns:      cfg.Conversion.MaxColumns,
		}, logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		inputDir := args[0]
		outputDir := convertOutputDir
		if outputDir == "" {
			outputDir = inputDir
		}

		runner := batch.NewRunner(converter, logger, convertWorkers)
		summary, err := runner.Run(ctx, inputDir, outputDir)
		if err != nil {
			return err
		}

		for _, res := range summary.Results {
			if res.Err != nil {
				fmt.Printf("  FAIL %s: %v\n", filepath.Base(res.Input), res.Err)
			} else {
				fmt.Printf("  ok   %s -> %s (%d records)\n",
					filepath.Base(res.Input), filepath.Base(res.Output), res.Records)
			}
		}
		fmt.Printf("Converted %d of %d file(s)\n", summary.Succeeded, len(summary.Results))

		if summary.Failed > 0 {
			return fmt.Errorf("%d file(s) failed", summary.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutputDir, "output", "o", "",
		"Output directory (default: alongside the input files)")
	convertCmd.Flags().IntVar(&convertWorkers, "workers", 4,
		"Number of files to convert concurrently")
}
