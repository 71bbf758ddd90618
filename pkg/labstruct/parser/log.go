// Package parser turns detected table grids into exam records: grid
// normalization, header reconciliation, visit unpivoting, row pruning and
// the numeric and reference-range cell parsers.
package parser

import "github.com/ukaji3/labstruct-go/internal/logger"

var log = logger.GetLogger("parser")
