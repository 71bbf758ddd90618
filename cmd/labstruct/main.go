// Package main provides the CLI entry point for labstruct-go.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukaji3/labstruct-go/internal/config"
	"github.com/ukaji3/labstruct-go/internal/logger"
	"github.com/ukaji3/labstruct-go/pkg/labstruct"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/output"
)

type flags struct {
	configPath  string
	outputPath  string
	format      string
	pretty      bool
	engine      string
	layout      string
	concurrency int
	logLevel    string
	logFormat   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	rootCmd := &cobra.Command{
		Use:   "labstruct [input.pdf]...",
		Short: "Extract lab exam results from PDF reports",
		Long: `labstruct-go finds the result tables of PDF lab exam reports and
outputs one row per analyte and visit, with parsed results, reference
ranges and units.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	rootCmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Configuration file (YAML)")
	rootCmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "Output file, or directory for several inputs (default: stdout)")
	rootCmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format: records, columns, csv, xlsx")
	rootCmd.Flags().BoolVarP(&f.pretty, "pretty", "p", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&f.engine, "engine", "", "Layout engine: tabula, rows")
	rootCmd.Flags().StringVar(&f.layout, "layout", "", "Table layout heuristics: vendor, plain")
	rootCmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Files processed at once (default: number of CPUs)")
	rootCmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format: text, json")

	return rootCmd
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if err := logger.Init(cmd.ErrOrStderr(), level, logger.Format(cfg.Log.Format)); err != nil {
		return err
	}

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	opts := cfg.Options()

	if len(args) == 1 {
		report, err := labstruct.ExtractFile(args[0], opts)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}
		return writeSingle(cmd, report.Table, format, cfg.Pretty, f.outputPath)
	}

	results, err := labstruct.ExtractFiles(cmd.Context(), args, opts)
	if err != nil {
		return err
	}
	return writeBatch(cmd, results, format, cfg.Pretty, f.outputPath)
}

// loadConfig reads the configuration file, if any, and applies the flags
// that were set on the command line.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("format") {
		cfg.Format = f.format
	}
	if changed("pretty") {
		cfg.Pretty = f.pretty
	}
	if changed("engine") {
		cfg.Engine = f.engine
	}
	if changed("layout") {
		cfg.Layout = f.layout
	}
	if changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	return cfg, cfg.Validate()
}

func writeSingle(cmd *cobra.Command, table *models.ExamTable, format output.Format, pretty bool, path string) error {
	if path == "" {
		if format.Binary() {
			return fmt.Errorf("format %s requires --output", format)
		}
		return output.Write(cmd.OutOrStdout(), table, format, pretty)
	}
	return writeFile(path, table, format, pretty)
}

func writeBatch(cmd *cobra.Command, results []labstruct.FileResult, format output.Format, pretty bool, path string) error {
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", r.Path, r.Err))
		}
	}

	switch {
	case format == output.FormatRecords || format == output.FormatColumns:
		tables := make(map[string]*models.ExamTable, len(results))
		for _, r := range results {
			if r.Err == nil {
				tables[r.Path] = r.Report.Table
			}
		}
		data, err := output.ReportsToJSON(tables, format, pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	default:
		if path == "" {
			return fmt.Errorf("format %s with several inputs requires --output directory", format)
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path)) + format.Extension()
			if err := writeFile(filepath.Join(path, name), r.Report.Table, format, pretty); err != nil {
				return err
			}
		}
	}

	if len(failed) > 0 {
		return errors.New("extraction failed:\n  " + strings.Join(failed, "\n  "))
	}
	return nil
}

func writeFile(path string, table *models.ExamTable, format output.Format, pretty bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := output.Write(file, table, format, pretty); err != nil {
		file.Close()
		return fmt.Errorf("serialization failed: %w", err)
	}
	return file.Close()
}
