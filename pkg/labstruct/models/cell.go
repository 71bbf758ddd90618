// Package models defines data structures for lab exam table extraction.
package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Cell is an optional text value read from a detected table.
type Cell struct {
	// Text is the cell content. Meaningful only when Valid is true.
	Text string
	// Valid is false for missing cells.
	Valid bool
}

// Missing is the zero Cell.
var Missing = Cell{}

// Text returns a present cell holding s in NFC form.
func Text(s string) Cell {
	return Cell{Text: norm.NFC.String(s), Valid: true}
}

// IsMissing reports whether the cell carries no value.
func (c Cell) IsMissing() bool {
	return !c.Valid
}

// Contains reports whether the cell is present and contains substr.
func (c Cell) Contains(substr string) bool {
	return c.Valid && strings.Contains(c.Text, substr)
}

// Ptr returns a pointer to the text, or nil when missing.
func (c Cell) Ptr() *string {
	if !c.Valid {
		return nil
	}
	s := c.Text
	return &s
}

func (c Cell) String() string {
	if !c.Valid {
		return "<missing>"
	}
	return c.Text
}
