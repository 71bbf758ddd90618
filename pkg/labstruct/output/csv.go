package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// WriteCSV writes table as CSV with a header row. Missing values are empty.
func WriteCSV(w io.Writer, table *models.ExamTable) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(models.ExamColumns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		values := row.Values()
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = csvValue(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
