package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the serialized form of visit dates.
const DateLayout = "2006-01-02"

// Date is a visit date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// ExamRow is one analyte's result for one visit.
type ExamRow struct {
	// Ficha is the visit identifier, nil when the table carried no visit header.
	Ficha *string `json:"Ficha"`
	// Data is the visit date, nil when the table carried no visit header.
	Data *Date `json:"Data"`
	// Analito is the name of the measured quantity.
	Analito string `json:"ANALITOS"`
	// Resultado is the parsed result, nil when the text was not numeric.
	Resultado *float64 `json:"RESULTADOS"`
	// ReferenciaVariaComIdade is set when the result carried the (*) marker.
	ReferenciaVariaComIdade bool `json:"Referência varia com idade"`
	// ValoresDeReferencia is the original reference-range text.
	ValoresDeReferencia string `json:"VALORES DE REFERÊNCIA"`
	// LimiteInferior is the parsed lower bound.
	LimiteInferior *float64 `json:"Limite inferior"`
	// LimiteSuperior is the parsed upper bound.
	LimiteSuperior *float64 `json:"Limite superior"`
	// Unidade is the unit text, or the not-found sentinel.
	Unidade *string `json:"Unidade"`
}

// ExamColumns lists ExamRow column names in output order.
var ExamColumns = []string{
	ColumnFicha,
	ColumnDate,
	ColumnAnalytes,
	ColumnResults,
	ColumnAgeVariant,
	ColumnReference,
	ColumnLower,
	ColumnUpper,
	ColumnUnit,
}

// Values returns the row's values in ExamColumns order. Missing values are nil.
func (r ExamRow) Values() []any {
	return []any{
		derefString(r.Ficha),
		dateValue(r.Data),
		r.Analito,
		derefFloat(r.Resultado),
		r.ReferenciaVariaComIdade,
		r.ValoresDeReferencia,
		derefFloat(r.LimiteInferior),
		derefFloat(r.LimiteSuperior),
		derefString(r.Unidade),
	}
}

// ExamTable is the ordered result of one extraction, indexed 0..N-1.
type ExamTable struct {
	Rows []ExamRow `json:"rows"`
}

// Len returns the number of rows.
func (t *ExamTable) Len() int {
	return len(t.Rows)
}

// Records returns one map per row keyed by column name.
func (t *ExamTable) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		values := row.Values()
		rec := make(map[string]any, len(ExamColumns))
		for j, name := range ExamColumns {
			rec[name] = values[j]
		}
		out[i] = rec
	}
	return out
}

// Columns returns the table in columnar form keyed by column name.
func (t *ExamTable) Columns() map[string][]any {
	out := make(map[string][]any, len(ExamColumns))
	for _, name := range ExamColumns {
		out[name] = make([]any, 0, len(t.Rows))
	}
	for _, row := range t.Rows {
		for j, v := range row.Values() {
			name := ExamColumns[j]
			out[name] = append(out[name], v)
		}
	}
	return out
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func dateValue(d *Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}
