// Package output serializes exam tables.
package output

import (
	"fmt"
	"io"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// Format names a serialization.
type Format string

const (
	// FormatRecords is a JSON array with one object per row.
	FormatRecords Format = "records"
	// FormatColumns is a JSON object with one array per column.
	FormatColumns Format = "columns"
	// FormatCSV is comma-separated values with a header row.
	FormatCSV Format = "csv"
	// FormatXLSX is an Excel workbook with one sheet.
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatRecords, FormatColumns, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be records, columns, csv, or xlsx)", s)
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatXLSX:
		return ".xlsx"
	default:
		return ".json"
	}
}

// Binary reports whether the format cannot be written to a terminal.
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// Write serializes table to w in the given format.
func Write(w io.Writer, table *models.ExamTable, format Format, pretty bool) error {
	switch format {
	case FormatRecords, FormatColumns:
		data, err := ToJSON(table, format, pretty)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatXLSX:
		return WriteXLSX(w, table, DefaultSheetName)
	default:
		return fmt.Errorf("invalid format: %s", format)
	}
}
