package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

func TestParseVisitLabel(t *testing.T) {
	tests := []struct {
		name  string
		label models.Cell
		ok    bool
		ficha string
		date  string
	}{
		{"visit", models.Text("F001\n01/02/2023"), true, "F001", "2023-02-01"},
		{"single digits", models.Text("123\n5/3/2024"), true, "123", "2024-03-05"},
		{"missing", models.Missing, false, "", ""},
		{"single line", models.Text("RESULTADOS"), false, "", ""},
		{"three lines", models.Text("F1\n01/02/2023\nextra"), false, "", ""},
		{"not a date", models.Text("Valores\nde referência"), false, "", ""},
		{"month out of range", models.Text("F1\n01/13/2023"), false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visit, ok := ParseVisitLabel(tt.label)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			require.Equal(t, tt.ficha, visit.Ficha)
			require.Equal(t, tt.date, visit.Date.Format(models.DateLayout))
		})
	}
}

func TestUnpivotSingleVisit(t *testing.T) {
	f := models.Frame{
		Columns: []string{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA"},
		Header:  row(nil, "F001\n01/02/2023", nil),
		Rows: [][]models.Cell{
			row("Glicose", "90", "70 a 99 mg/dL"),
			row("Ureia", "30", "10 a 50 mg/dL"),
		},
	}

	got := Unpivot(f)
	require.Equal(t, []string{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA", "Ficha", "Data"}, got.Columns)
	require.Len(t, got.Records, 2)
	for _, rec := range got.Records {
		require.Equal(t, "F001", rec.Ficha.Text)
		require.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), *rec.Date)
	}
	require.Equal(t, "90", got.Records[0].Get(models.ColumnResults).Text)
}

func TestUnpivotMultipleVisits(t *testing.T) {
	f := models.Frame{
		Columns: []string{"ANALITOS", "RESULTADOS", "Col2", "Col3", "VALORES DE REFERÊNCIA"},
		Header:  row("", "F1\n10/01/2023", "F2\n15/03/2023", "F3\n20/06/2023", ""),
		Rows: [][]models.Cell{
			row("Glicose", "90", "95", "101", "70 a 99 mg/dL"),
			row("Ureia", "30", nil, "28", "10 a 50 mg/dL"),
		},
	}

	got := Unpivot(f)
	require.Equal(t, []string{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA", "Ficha", "Data"}, got.Columns)
	require.Len(t, got.Records, 6)

	type flat struct {
		ficha, analyte, result, reference any
	}
	var rows []flat
	for _, rec := range got.Records {
		cells := texts([]models.Cell{rec.Ficha, rec.Get(models.ColumnAnalytes), rec.Get(models.ColumnResults), rec.Get(models.ColumnReference)})
		rows = append(rows, flat{cells[0], cells[1], cells[2], cells[3]})
		_, hasCol2 := rec.Fields["Col2"]
		require.False(t, hasCol2)
	}
	require.Equal(t, []flat{
		{"F1", "Glicose", "90", "70 a 99 mg/dL"},
		{"F1", "Ureia", "30", "10 a 50 mg/dL"},
		{"F2", "Glicose", "95", "70 a 99 mg/dL"},
		{"F2", "Ureia", nil, "10 a 50 mg/dL"},
		{"F3", "Glicose", "101", "70 a 99 mg/dL"},
		{"F3", "Ureia", "28", "10 a 50 mg/dL"},
	}, rows)
	require.Equal(t, "2023-06-20", got.Records[5].Date.Format(models.DateLayout))
}

func TestUnpivotWithoutVisits(t *testing.T) {
	f := models.Frame{
		Columns: []string{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA"},
		Header:  row("Exame", "Resultado", "Referência"),
		Rows:    [][]models.Cell{row("Glicose", "90", "70 a 99 mg/dL")},
	}

	got := Unpivot(f)
	require.Equal(t, f.Columns, got.Columns)
	require.Len(t, got.Records, 1)
	require.Nil(t, got.Records[0].Date)
	require.True(t, got.Records[0].Ficha.IsMissing())
}
