// Package roster turns a vacation roster spreadsheet into vacation records.
//
// Layout detection and extraction work on an abstract Grid, so they can be tested
// against fixture grids without any spreadsheet file.
package roster

import (
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellBlank CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is an untyped spreadsheet value.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

func Blank() Cell {
	return Cell{Kind: CellBlank}
}

func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Blank()
	}

	return Cell{Kind: CellText, Text: s}
}

func Number(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

func DateValue(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t, Text: t.Format("2006-01-02 15:04:05")}
}

func (c Cell) String() string {
	if c.Kind == CellBlank {
		return ""
	}

	return c.Text
}

func (c Cell) IsBlank() bool {
	return c.Kind == CellBlank || strings.TrimSpace(c.Text) == ""
}

// Grid is rows × columns. Rows may have different widths.
type Grid [][]Cell

// At returns a blank cell for coordinates outside the grid.
func (g Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return Blank()
	}

	return g[row][col]
}

// missing reports whether a trimmed value is one of the placeholders used for absent data.
func missing(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "-", "—":
		return true
	default:
		return false
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// numericName filters index columns and header echoes out of the name column.
func numericName(c Cell, trimmed string) bool {
	return c.Kind == CellNumber || isDigits(trimmed)
}
