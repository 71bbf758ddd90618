package output

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// DefaultSheetName is the sheet WriteXLSX fills.
const DefaultSheetName = "Exames"

// WriteXLSX writes table as a workbook with a header row and one row per
// exam row. Numbers and booleans keep their types; missing values are blank.
func WriteXLSX(w io.Writer, table *models.ExamTable, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]any, len(models.ExamColumns))
	for i, name := range models.ExamColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row.Values()
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}
