package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Format spreadsheet encoding detected for an upload
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

// CellKind cell variant tag
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
)

// Cell one spreadsheet cell: empty, number or text
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
}

// Empty returns an empty cell
func Empty() Cell { return Cell{Kind: CellEmpty} }

// Number returns a numeric cell
func Number(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

// Text returns a textual cell
func Text(s string) Cell { return Cell{Kind: CellText, Text: s} }

// IsBlank reports whether the cell has no visible content
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// String renders the cell as text
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellText:
		return c.Text
	}
	return ""
}

// Trimmed textual content without surrounding whitespace
func (c Cell) Trimmed() string {
	return strings.TrimSpace(c.String())
}

// RawRow header → cell mapping of one data row
type RawRow map[string]Cell

// Get returns the cell under header, or an empty cell
func (r RawRow) Get(header string) Cell {
	if c, ok := r[header]; ok {
		return c
	}
	return Empty()
}

// IsBlank reports whether every cell of the row is blank
func (r RawRow) IsBlank() bool {
	for _, c := range r {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// Sheet first worksheet of an upload, header row plus data rows in file order
type Sheet struct {
	Name    string   `json:"name"`
	Format  Format   `json:"format"`
	Headers []string `json:"headers"`
	Rows    []RawRow `json:"-"`
}

// ParseError the upload is not a readable spreadsheet or holds no data rows
type ParseError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Filename, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Filename, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
