package parser

import (
	"strings"
	"time"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// VisitDateLayout is the day/month/year form of visit dates in header labels.
const VisitDateLayout = "2/1/2006"

// Visit is a sample identifier and collection date read from a header label.
type Visit struct {
	Ficha string
	Date  time.Time
}

// ParseVisitLabel reads a "ficha\ndd/mm/yyyy" header label. Labels that do
// not split into exactly two lines, or whose second line is not a date, are
// not visit labels.
func ParseVisitLabel(label models.Cell) (Visit, bool) {
	if !label.Contains("\n") {
		return Visit{}, false
	}
	parts := strings.Split(label.Text, "\n")
	if len(parts) != 2 {
		return Visit{}, false
	}
	date, err := time.Parse(VisitDateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return Visit{}, false
	}
	return Visit{Ficha: parts[0], Date: date}, true
}

// Unpivot reshapes a reconciled frame into long format. The first visit
// column tags the base rows with its ficha and date; every further visit
// column adds a block of rows carrying the base analytes and reference texts
// with that column's results. Visit columns other than RESULTADOS are
// dropped from the output.
func Unpivot(f models.Frame) models.LongTable {
	base := make([]models.Record, len(f.Rows))
	for r, row := range f.Rows {
		fields := make(map[string]models.Cell, len(f.Columns))
		for c, name := range f.Columns {
			fields[name] = row[c]
		}
		base[r] = models.Record{Fields: fields}
	}

	batches := [][]models.Record{base}
	dropped := make(map[string]bool)
	found := false
	for c, label := range f.Header {
		visit, ok := ParseVisitLabel(label)
		if !ok {
			continue
		}
		if !found {
			for r := range base {
				base[r].Ficha = models.Text(visit.Ficha)
				base[r].Date = dateRef(visit.Date)
			}
			found = true
		} else {
			batches = append(batches, visitBlock(f, base, c, visit))
		}
		if f.Columns[c] != models.ColumnResults {
			dropped[f.Columns[c]] = true
		}
		log.Debug("visit column", "column", f.Columns[c], "ficha", visit.Ficha, "date", visit.Date.Format(models.DateLayout))
	}

	var out models.LongTable
	for _, name := range f.Columns {
		if !dropped[name] {
			out.Columns = append(out.Columns, name)
		}
	}
	if found {
		out.Columns = append(out.Columns, models.ColumnFicha, models.ColumnDate)
	}

	total := 0
	for _, batch := range batches {
		total += len(batch)
	}
	out.Records = make([]models.Record, 0, total)
	for _, batch := range batches {
		for _, rec := range batch {
			for name := range dropped {
				delete(rec.Fields, name)
			}
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

func visitBlock(f models.Frame, base []models.Record, col int, visit Visit) []models.Record {
	block := make([]models.Record, len(base))
	for r, rec := range base {
		block[r] = models.Record{
			Ficha: models.Text(visit.Ficha),
			Date:  dateRef(visit.Date),
			Fields: map[string]models.Cell{
				models.ColumnAnalytes:  rec.Get(models.ColumnAnalytes),
				models.ColumnResults:   f.Rows[r][col],
				models.ColumnReference: rec.Get(models.ColumnReference),
			},
		}
	}
	return block
}

func dateRef(t time.Time) *time.Time {
	return &t
}
