package models

import (
	"time"
)

// Canonical column names of an exam table.
const (
	ColumnAnalytes   = "ANALITOS"
	ColumnResults    = "RESULTADOS"
	ColumnReference  = "VALORES DE REFERÊNCIA"
	ColumnFicha      = "Ficha"
	ColumnDate       = "Data"
	ColumnAgeVariant = "Referência varia com idade"
	ColumnLower      = "Limite inferior"
	ColumnUpper      = "Limite superior"
	ColumnUnit       = "Unidade"
)

// Record is one long-format row: the visit it belongs to plus its cells by
// column name.
type Record struct {
	Ficha  Cell
	Date   *time.Time
	Fields map[string]Cell
}

// Get returns the named cell, or Missing.
func (r Record) Get(column string) Cell {
	return r.Fields[column]
}

// LongTable is an ordered accumulation of records. Columns lists every
// column name carried by any record, in first-seen order.
type LongTable struct {
	Columns []string
	Records []Record
}

// HasColumn reports whether name is one of the table's columns.
func (t LongTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Concat merges tables in order. Columns are the union of all column sets in
// first-seen order; records are appended batch by batch.
func Concat(tables ...LongTable) LongTable {
	var out LongTable
	seen := make(map[string]bool)
	total := 0
	for _, t := range tables {
		total += len(t.Records)
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				out.Columns = append(out.Columns, c)
			}
		}
	}
	out.Records = make([]Record, 0, total)
	for _, t := range tables {
		out.Records = append(out.Records, t.Records...)
	}
	return out
}
