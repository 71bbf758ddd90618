// Package config loads the labstruct command configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/labstruct-go/internal/logger"
	"github.com/ukaji3/labstruct-go/pkg/labstruct"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/locator"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/output"
)

// Config is the command configuration.
type Config struct {
	Engine      string         `yaml:"engine"`
	Layout      string         `yaml:"layout"`
	Format      string         `yaml:"format"`
	Pretty      bool           `yaml:"pretty"`
	Concurrency int            `yaml:"concurrency"`
	MaxFileSize Size           `yaml:"max_file_size"`
	Log         LogConfig      `yaml:"log"`
	Detector    DetectorConfig `yaml:"detector"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DetectorConfig struct {
	MinRows            int     `yaml:"min_rows"`
	MinCols            int     `yaml:"min_cols"`
	MinConfidence      float64 `yaml:"min_confidence"`
	MaxCellGap         float64 `yaml:"max_cell_gap"`
	AlignmentTolerance float64 `yaml:"alignment_tolerance"`
	MergedCells        bool    `yaml:"merged_cells"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := labstruct.DefaultOptions()
	return &Config{
		Engine:      opts.Engine,
		Layout:      opts.Layout,
		Format:      string(output.FormatRecords),
		MaxFileSize: Size(opts.MaxFileSize),
		Log: LogConfig{
			Level:  "info",
			Format: string(logger.FormatText),
		},
		Detector: DetectorConfig{
			MinRows:            opts.Detection.MinRows,
			MinCols:            opts.Detection.MinCols,
			MinConfidence:      opts.Detection.MinConfidence,
			MaxCellGap:         opts.Detection.MaxCellGap,
			AlignmentTolerance: opts.Detection.AlignmentTolerance,
			MergedCells:        opts.Detection.DetectMergedCells,
		},
	}
}

// Load reads path over the defaults. Environment variables in the file are
// expanded and unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != string(logger.FormatText) && c.Log.Format != string(logger.FormatJSON) {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("invalid concurrency: %d", c.Concurrency)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("invalid max_file_size: %d", c.MaxFileSize)
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	return logger.ParseLevel(c.Log.Level)
}

// Options converts the configuration into extraction options.
func (c *Config) Options() labstruct.Options {
	opts := labstruct.DefaultOptions()
	opts.Engine = c.Engine
	opts.Layout = c.Layout
	opts.Concurrency = c.Concurrency
	opts.MaxFileSize = int64(c.MaxFileSize)
	opts.Detection = locator.Config{
		MinRows:            c.Detector.MinRows,
		MinCols:            c.Detector.MinCols,
		MinConfidence:      c.Detector.MinConfidence,
		MaxCellGap:         c.Detector.MaxCellGap,
		AlignmentTolerance: c.Detector.AlignmentTolerance,
		DetectMergedCells:  c.Detector.MergedCells,
	}
	return opts
}

// Size is a byte count written as a plain number or with a KB, MB or GB suffix.
type Size int64

var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses strings such as "10MB", "512KB" or "1048576".
func ParseSize(s string) (Size, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	factor := int64(1)
	for _, unit := range sizeUnits {
		if strings.HasSuffix(s, unit.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			factor = unit.factor
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n > math.MaxInt64/factor || n < math.MinInt64/factor {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return Size(n * factor), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	size, err := ParseSize(node.Value)
	if err != nil {
		return err
	}
	*s = size
	return nil
}
