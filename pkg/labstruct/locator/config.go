package locator

import (
	"github.com/tsawler/tabula/tables"
)

// Engine names.
const (
	EngineTabula = "tabula"
	EngineRows   = "rows"
)

// Config holds table detection settings shared by the engines.
type Config struct {
	// MinRows is the minimum number of rows for a table, header included.
	MinRows int
	// MinCols is the minimum number of columns for a table.
	MinCols int
	// MinConfidence is the geometric detector's acceptance threshold (0-1).
	MinConfidence float64
	// MaxCellGap is the horizontal gap, in points, that separates two cells.
	MaxCellGap float64
	// AlignmentTolerance is the slack, in points, for row and column alignment.
	AlignmentTolerance float64
	// DetectMergedCells enables merged-cell detection.
	DetectMergedCells bool
}

// DefaultConfig returns the default detection settings.
func DefaultConfig() Config {
	d := tables.DefaultConfig()
	return Config{
		MinRows:            d.MinRows,
		MinCols:            d.MinCols,
		MinConfidence:      d.MinConfidence,
		MaxCellGap:         d.MaxCellGap,
		AlignmentTolerance: d.AlignmentTolerance,
		DetectMergedCells:  d.DetectMergedCells,
	}
}

// detectorConfig maps the settings onto the geometric detector configuration.
func (c Config) detectorConfig() tables.Config {
	d := tables.DefaultConfig()
	d.MinRows = c.MinRows
	d.MinCols = c.MinCols
	d.MinConfidence = c.MinConfidence
	d.MaxCellGap = c.MaxCellGap
	d.AlignmentTolerance = c.AlignmentTolerance
	d.DetectMergedCells = c.DetectMergedCells
	return d
}
