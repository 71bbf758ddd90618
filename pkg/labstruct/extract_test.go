package labstruct

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ukaji3/labstruct-go/internal/testutil"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/locator"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// fakeEngine serves fixed tables per page.
type fakeEngine struct {
	pages    [][]models.RawTable
	openErr  error
	pageErrs map[int]error
	opened   atomic.Int32
	closed   atomic.Int32
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Open(content []byte) (locator.Document, error) {
	e.opened.Add(1)
	if e.openErr != nil {
		return nil, e.openErr
	}
	return &fakeDocument{engine: e}, nil
}

type fakeDocument struct {
	engine *fakeEngine
}

func (d *fakeDocument) PageCount() int { return len(d.engine.pages) }

func (d *fakeDocument) FindTables(page int) ([]models.RawTable, error) {
	if err := d.engine.pageErrs[page]; err != nil {
		return nil, err
	}
	return d.engine.pages[page], nil
}

func (d *fakeDocument) Close() error {
	d.engine.closed.Add(1)
	return nil
}

// grid builds a raw table; nil entries are missing cells.
func grid(page, index int, rows ...[]any) models.RawTable {
	raw := models.RawTable{Page: page, Index: index}
	for _, values := range rows {
		row := make([]models.Cell, len(values))
		for i, v := range values {
			if s, ok := v.(string); ok {
				row[i] = models.Text(s)
			}
		}
		raw.Rows = append(raw.Rows, row)
	}
	return raw
}

func withEngine(e locator.Engine) Options {
	opts := DefaultOptions()
	opts.Locator = e
	return opts
}

func singleVisitTable() models.RawTable {
	return grid(0, 0,
		[]any{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA"},
		[]any{nil, "F001\n01/02/2023", nil},
		[]any{"Glicose", "90", "70 a 99 mg/dL"},
		[]any{"Colesterol total", "1.234,5(*)", "menor que 190 mg/dL"},
		[]any{"Hemácias", "positivo", "Ver resultado tradicional"},
	)
}

func TestExtractSingleVisit(t *testing.T) {
	engine := &fakeEngine{pages: [][]models.RawTable{{singleVisitTable()}}}

	table, err := Extract([]byte("%PDF"), withEngine(engine))
	require.NoError(t, err)
	require.EqualValues(t, 1, engine.closed.Load())
	require.Equal(t, 3, table.Len())

	for _, row := range table.Rows {
		require.Equal(t, "F001", *row.Ficha)
		require.Equal(t, "2023-02-01", row.Data.String())
	}

	glicose := table.Rows[0]
	require.Equal(t, "Glicose", glicose.Analito)
	require.InDelta(t, 90.0, *glicose.Resultado, 1e-9)
	require.False(t, glicose.ReferenciaVariaComIdade)
	require.Equal(t, "70 a 99 mg/dL", glicose.ValoresDeReferencia)
	require.InDelta(t, 70.0, *glicose.LimiteInferior, 1e-9)
	require.InDelta(t, 99.0, *glicose.LimiteSuperior, 1e-9)
	require.Equal(t, "mg/dL", *glicose.Unidade)

	colesterol := table.Rows[1]
	require.InDelta(t, 1234.5, *colesterol.Resultado, 1e-9)
	require.True(t, colesterol.ReferenciaVariaComIdade)
	require.InDelta(t, 190.0, *colesterol.LimiteInferior, 1e-9)
	require.Nil(t, colesterol.LimiteSuperior)

	hemacias := table.Rows[2]
	require.Nil(t, hemacias.Resultado)
	require.Nil(t, hemacias.LimiteInferior)
	require.Equal(t, "Ver resultado tradicional", *hemacias.Unidade)
}

func TestExtractMergesPagesAndSortsVisits(t *testing.T) {
	later := grid(0, 0,
		[]any{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA"},
		[]any{nil, "F2\n01/03/2023", nil},
		[]any{"Glicose", "95", "70 a 99 mg/dL"},
		[]any{"Ureia", nil, "10 a 50 mg/dL"},
	)
	// Detected header is really the visit row; the layout synthesizes names.
	earlier := grid(1, 0,
		[]any{nil, "F1\n10/01/2023", nil},
		[]any{"Ureia", "30", "10 a 50 mg/dL"},
		[]any{"Sódio", "140", "136 a 145 mEq/L"},
	)
	engine := &fakeEngine{pages: [][]models.RawTable{{later}, {earlier}}}

	report, err := ExtractReport([]byte("%PDF"), withEngine(engine))
	require.NoError(t, err)
	require.Equal(t, 2, report.Pages)
	require.Equal(t, 2, report.Tables)
	require.Empty(t, report.Warnings)

	var got [][2]string
	for _, row := range report.Table.Rows {
		got = append(got, [2]string{*row.Ficha, row.Analito})
	}
	require.Equal(t, [][2]string{
		{"F1", "Ureia"},
		{"F1", "Sódio"},
		{"F2", "Glicose"},
	}, got)
}

func TestExtractMultiVisitTable(t *testing.T) {
	table := grid(0, 0,
		[]any{"ANALITOS", "RESULTADOS", nil, nil, "VALORES DE REFERÊNCIA"},
		[]any{nil, "F3\n20/06/2023", "F1\n10/01/2023", "F2\n15/03/2023", nil},
		[]any{"Glicose", "101", "90", "95", "70 a 99 mg/dL"},
	)
	engine := &fakeEngine{pages: [][]models.RawTable{{table}}}

	got, err := Extract([]byte("%PDF"), withEngine(engine))
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())

	var results []float64
	var dates []string
	for _, row := range got.Rows {
		results = append(results, *row.Resultado)
		dates = append(dates, row.Data.String())
	}
	require.Equal(t, []string{"2023-01-10", "2023-03-15", "2023-06-20"}, dates)
	require.Equal(t, []float64{90, 95, 101}, results)
}

func TestExtractAmbiguousReferenceColumn(t *testing.T) {
	table := grid(0, 0,
		[]any{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA", "Valores de referência anteriores"},
		[]any{nil, "F1\n01/02/2023", nil, nil},
		[]any{"Glicose", "90", "70 a 99 mg/dL", "70 a 110 mg/dL"},
	)
	engine := &fakeEngine{pages: [][]models.RawTable{{table}}}

	_, err := Extract([]byte("%PDF"), withEngine(engine))
	require.True(t, errors.Is(err, ErrAmbiguousReferenceColumn))

	var refErr *ReferenceColumnError
	require.True(t, errors.As(err, &refErr))
	require.Equal(t, []string{"VALORES DE REFERÊNCIA", "Valores de referência anteriores"}, refErr.Candidates)
}

func TestExtractStructuralErrors(t *testing.T) {
	tests := []struct {
		name     string
		pages    [][]models.RawTable
		expected error
	}{
		{
			name:     "no tables",
			pages:    [][]models.RawTable{{}},
			expected: ErrMissingResultsColumn,
		},
		{
			name: "no results column",
			pages: [][]models.RawTable{{grid(0, 0,
				[]any{"ANALITOS", "VALOR", "VALORES DE REFERÊNCIA"},
				[]any{"Exame", "Valor", "Referência"},
				[]any{"Glicose", "90", "70 a 99 mg/dL"},
			)}},
			expected: ErrMissingResultsColumn,
		},
		{
			name: "no reference column",
			pages: [][]models.RawTable{{grid(0, 0,
				[]any{"ANALITOS", "RESULTADOS", "REFERÊNCIA"},
				[]any{"Exame", "Resultado", "Referência"},
				[]any{"Glicose", "90", "70 a 99 mg/dL"},
			)}},
			expected: ErrMissingReferenceColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte("%PDF"), withEngine(&fakeEngine{pages: tt.pages}))
			require.True(t, errors.Is(err, tt.expected), "got %v", err)
		})
	}
}

func TestExtractDocumentOpenError(t *testing.T) {
	cause := errors.New("failed to parse header")
	_, err := Extract([]byte("garbage"), withEngine(&fakeEngine{openErr: cause}))
	require.True(t, errors.Is(err, ErrDocumentOpen))
	require.True(t, errors.Is(err, cause))
}

func TestExtractEmptyContent(t *testing.T) {
	engine := &fakeEngine{pages: [][]models.RawTable{{singleVisitTable()}}}
	for _, content := range [][]byte{nil, {}} {
		_, err := Extract(content, withEngine(engine))
		require.True(t, errors.Is(err, ErrDocumentOpen))
		require.True(t, errors.Is(err, locator.ErrEmptyDocument))
	}
	require.Zero(t, engine.opened.Load())
}

func TestExtractRealEngineRejectsGarbage(t *testing.T) {
	_, err := Extract([]byte("garbage"), DefaultOptions())
	require.True(t, errors.Is(err, ErrDocumentOpen))
}

func TestExtractSkipsUnreadablePagesAndNarrowTables(t *testing.T) {
	narrow := grid(1, 0,
		[]any{"Exame", "Valor"},
		[]any{"Glicose", "90"},
	)
	engine := &fakeEngine{
		pages:    [][]models.RawTable{{singleVisitTable()}, {narrow}, nil},
		pageErrs: map[int]error{2: errors.New("bad content stream")},
	}

	report, err := ExtractReport([]byte("%PDF"), withEngine(engine))
	require.NoError(t, err)
	require.Equal(t, 3, report.Table.Len())
	require.Len(t, report.Warnings, 2)

	require.Equal(t, 2, report.Warnings[0].Page)
	require.Equal(t, 1, report.Warnings[0].Table)
	require.Equal(t, "reconcile", report.Warnings[0].Component)

	require.Equal(t, 3, report.Warnings[1].Page)
	require.Equal(t, 0, report.Warnings[1].Table)
	require.Equal(t, "locate", report.Warnings[1].Component)
	require.Contains(t, report.Warnings[1].Error(), "bad content stream")
}

func TestExtractIsIdempotent(t *testing.T) {
	engine := &fakeEngine{pages: [][]models.RawTable{{singleVisitTable()}}}

	first, err := Extract([]byte("%PDF"), withEngine(engine))
	require.NoError(t, err)
	second, err := Extract([]byte("%PDF"), withEngine(engine))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestExtractRowInvariant(t *testing.T) {
	table := grid(0, 0,
		[]any{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA"},
		[]any{nil, "F1\n01/02/2023", nil},
		[]any{"Glicose", "90", "70 a 99 mg/dL"},
		[]any{nil, "5", "1 a 2 mg/dL"},
		[]any{"Ureia", nil, "10 a 50 mg/dL"},
		[]any{"Sódio", "140", nil},
		[]any{"Potássio", "----", "3,5 a 5,1 mEq/L"},
	)
	engine := &fakeEngine{pages: [][]models.RawTable{{table}}}

	got, err := Extract([]byte("%PDF"), withEngine(engine))
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	require.Equal(t, "Glicose", got.Rows[0].Analito)
	require.Equal(t, "Potássio", got.Rows[1].Analito)
	require.Nil(t, got.Rows[1].Resultado)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exame.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))

	engine := &fakeEngine{pages: [][]models.RawTable{{singleVisitTable()}}}
	report, err := ExtractFile(path, withEngine(engine))
	require.NoError(t, err)
	require.Equal(t, 3, report.Table.Len())
	require.Equal(t, "fake", report.Engine)
	require.NotEmpty(t, report.ID)

	_, err = ExtractFile(filepath.Join(dir, "missing.pdf"), withEngine(engine))
	require.True(t, errors.Is(err, ErrFileNotFound))

	opts := withEngine(engine)
	opts.MaxFileSize = 4
	_, err = ExtractFile(path, opts)
	require.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestUnknownEngineAndLayout(t *testing.T) {
	opts := DefaultOptions()
	opts.Engine = "ocr"
	_, err := Extract([]byte("%PDF"), opts)
	require.True(t, errors.Is(err, locator.ErrUnknownEngine))

	opts = withEngine(&fakeEngine{})
	opts.Layout = "other"
	_, err = Extract([]byte("%PDF"), opts)
	require.Error(t, err)
}

func TestExtractRuledDocument(t *testing.T) {
	page := testutil.NewPage().Text(50, 800, 12, "Laudo de exames laboratoriais")
	page.Table(50, 750, 10, []float64{150, 90, 220}, [][]string{
		{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA"},
		{"", "F001\n01/02/2023", ""},
		{"Glicose", "90", "70 a 99 mg/dL"},
		{"Colesterol total", "1.234,5(*)", "menor que 190 mg/dL"},
		{"Hemácias", "positivo", "Ver resultado tradicional"},
	})

	report, err := ExtractReport(testutil.PDF(page), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, locator.EngineTabula, report.Engine)
	require.Equal(t, 1, report.Pages)
	require.Equal(t, 1, report.Tables)
	require.Empty(t, report.Warnings)

	table := report.Table
	require.Equal(t, 3, table.Len())
	for _, row := range table.Rows {
		require.Equal(t, "F001", *row.Ficha)
		require.Equal(t, "2023-02-01", row.Data.String())
	}
	require.Equal(t, "Glicose", table.Rows[0].Analito)
	require.InDelta(t, 90.0, *table.Rows[0].Resultado, 1e-9)
	require.Equal(t, "mg/dL", *table.Rows[0].Unidade)
	require.InDelta(t, 1234.5, *table.Rows[1].Resultado, 1e-9)
	require.True(t, table.Rows[1].ReferenciaVariaComIdade)
	require.Equal(t, "Hemácias", table.Rows[2].Analito)
}

func TestExtractRuledMultiVisitDocument(t *testing.T) {
	first := testutil.NewPage()
	first.Table(30, 750, 10, []float64{120, 80, 80, 80, 180}, [][]string{
		{"ANALITOS", "RESULTADOS", "", "", "VALORES DE REFERÊNCIA"},
		{"", "F3\n20/06/2023", "F1\n10/01/2023", "F2\n15/03/2023", ""},
		{"Glicose", "101", "90", "95", "70 a 99 mg/dL"},
	})
	second := testutil.NewPage()
	second.Table(30, 750, 10, []float64{120, 80, 180}, [][]string{
		{"ANALITOS", "RESULTADOS", "VALORES DE REFERÊNCIA"},
		{"", "F4\n01/08/2023", ""},
		{"Ureia", "30", "10 a 50 mg/dL"},
	})

	report, err := ExtractReport(testutil.PDF(first, second), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2, report.Pages)
	require.Equal(t, 2, report.Tables)

	var fichas, dates []string
	for _, row := range report.Table.Rows {
		fichas = append(fichas, *row.Ficha)
		dates = append(dates, row.Data.String())
	}
	require.Equal(t, []string{"F1", "F2", "F3", "F4"}, fichas)
	require.Equal(t, []string{"2023-01-10", "2023-03-15", "2023-06-20", "2023-08-01"}, dates)
}
