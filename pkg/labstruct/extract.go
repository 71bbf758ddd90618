package labstruct

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/ukaji3/labstruct-go/internal/logger"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/locator"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/parser"
)

var log = logger.GetLogger("labstruct")

// Report is the outcome of one extraction.
type Report struct {
	// ID identifies the extraction in log lines.
	ID string `json:"id"`
	// Engine is the layout engine that read the document.
	Engine string `json:"engine"`
	// Pages is the document page count.
	Pages int `json:"pages"`
	// Tables is the number of tables detected, skipped ones included.
	Tables int `json:"tables"`
	// Table is the normalized exam table.
	Table *models.ExamTable `json:"table"`
	// Warnings lists the pages and tables that were skipped.
	Warnings []*ExtractionError `json:"-"`
}

// Extract reads a PDF exam report and returns its exam table.
func Extract(content []byte, opts Options) (*models.ExamTable, error) {
	report, err := ExtractReport(content, opts)
	if err != nil {
		return nil, err
	}
	return report.Table, nil
}

// ExtractFile reads the PDF at path and extracts its exam table.
func ExtractFile(path string, opts Options) (*Report, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), opts.MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ExtractReport(content, opts)
}

// ExtractReport runs the whole pipeline over one document: tables are
// located page by page, normalized and unpivoted one at a time, merged, and
// then pruned, sorted and parsed into exam rows.
//
// Pages and tables that cannot be read are skipped and listed in
// Report.Warnings. A document that cannot be opened fails with
// ErrDocumentOpen; a merged table without a RESULTADOS column or without
// exactly one reference-range column fails with the corresponding
// structural error.
func ExtractReport(content []byte, opts Options) (*Report, error) {
	engine, err := opts.engine()
	if err != nil {
		return nil, err
	}
	layout, err := opts.layout()
	if err != nil {
		return nil, err
	}

	if len(content) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDocumentOpen, locator.ErrEmptyDocument)
	}

	report := &Report{ID: uuid.NewString(), Engine: engine.Name()}
	log := log.With("extraction", report.ID)

	doc, err := engine.Open(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentOpen, err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			log.Warn("closing document", "error", err)
		}
	}()
	report.Pages = doc.PageCount()

	var batches []models.LongTable
	for page := 0; page < report.Pages; page++ {
		raws, err := doc.FindTables(page)
		if err != nil {
			report.warn(log, NewExtractionError(page+1, 0, "locate", err))
			continue
		}
		for _, raw := range raws {
			report.Tables++
			long, err := unpivotTable(raw, layout)
			if err != nil {
				report.warn(log, NewExtractionError(raw.Page+1, raw.Index+1, "reconcile", err))
				continue
			}
			if len(long.Columns) == 0 {
				log.Debug("table skipped", "page", raw.Page+1, "table", raw.Index+1)
				continue
			}
			batches = append(batches, long)
		}
	}

	table, err := buildExamTable(models.Concat(batches...))
	if err != nil {
		return nil, err
	}
	report.Table = table

	log.Info("extraction finished",
		"engine", report.Engine,
		"pages", report.Pages,
		"tables", report.Tables,
		"rows", table.Len(),
		"warnings", len(report.Warnings))
	return report, nil
}

func (r *Report) warn(log *slog.Logger, err *ExtractionError) {
	log.Warn("skipped", "page", err.Page, "table", err.Table, "component", err.Component, "error", err.Err)
	r.Warnings = append(r.Warnings, err)
}

// unpivotTable runs one detected table through the layout heuristics and
// the visit unpivot. An empty table means there was nothing to keep.
func unpivotTable(raw models.RawTable, layout parser.Layout) (models.LongTable, error) {
	frame := layout.Normalize(raw.Frame())
	if frame.Empty() {
		return models.LongTable{}, nil
	}
	frame, err := layout.Reconcile(frame)
	if err != nil {
		return models.LongTable{}, err
	}
	if frame.Empty() {
		return models.LongTable{}, nil
	}
	return parser.Unpivot(frame), nil
}

// buildExamTable checks the merged columns, prunes and sorts the records
// and parses their result and reference cells.
func buildExamTable(merged models.LongTable) (*models.ExamTable, error) {
	if !merged.HasColumn(models.ColumnResults) {
		return nil, ErrMissingResultsColumn
	}
	referenceColumn, err := parser.ResolveReferenceColumn(merged.Columns)
	if err != nil {
		return nil, err
	}

	records := parser.Prune(merged.Records, referenceColumn)
	parser.SortByVisit(records)

	rows := make([]models.ExamRow, len(records))
	for i, rec := range records {
		value, ageVariant := parser.ParseResult(rec.Get(models.ColumnResults))
		ref := parser.ParseReference(rec.Get(referenceColumn))
		row := models.ExamRow{
			Ficha:                   rec.Ficha.Ptr(),
			Analito:                 rec.Get(models.ColumnAnalytes).Text,
			Resultado:               value,
			ReferenciaVariaComIdade: ageVariant,
			ValoresDeReferencia:     rec.Get(referenceColumn).Text,
			LimiteInferior:          ref.Lower,
			LimiteSuperior:          ref.Upper,
			Unidade:                 ref.Unit,
		}
		if rec.Date != nil {
			row.Data = &models.Date{Time: *rec.Date}
		}
		rows[i] = row
	}
	return &models.ExamTable{Rows: rows}, nil
}
