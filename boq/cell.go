// Package boq extracts classified, cost- and duration-annotated line items
// from Bill of Quantities worksheets.
package boq

import (
	"strings"

	"github.com/spf13/cast"
)

// CellKind is the type a raw spreadsheet cell normalizes to.
type CellKind int

const (
	CellBlank CellKind = iota
	CellNumber
	CellText
)

// Cell is a normalized spreadsheet cell. Text always holds the trimmed
// source text, so a numeric-looking cell can still be read as a string.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
}

// IsBlank reports whether the cell carries no value.
func (c Cell) IsBlank() bool { return c.Kind == CellBlank }

// Float returns the numeric value of the cell. Text that does not parse
// yields 0.
func (c Cell) Float() float64 {
	switch c.Kind {
	case CellNumber:
		return c.Num
	case CellText:
		v, _ := parseNumber(c.Text)
		return v
	}
	return 0
}

// String returns the trimmed text of the cell, or "" when blank.
func (c Cell) String() string { return c.Text }

// NormalizeCell coerces one raw cell value into a typed Cell. It never
// panics and never fails: unknown types are rendered through cast and
// treated as text.
func NormalizeCell(v any) Cell {
	switch t := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return t
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f := cast.ToFloat64(t)
		return Cell{Kind: CellNumber, Num: f, Text: cast.ToString(t)}
	case bool:
		return Cell{Kind: CellText, Text: cast.ToString(t)}
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return Cell{}
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if s == "" {
		return Cell{}
	}
	if f, ok := parseNumber(s); ok {
		return Cell{Kind: CellNumber, Num: f, Text: s}
	}
	return Cell{Kind: CellText, Text: s}
}

// NormalizeRow normalizes every cell of a raw row.
func NormalizeRow(raw []any) []Cell {
	cells := make([]Cell, len(raw))
	for i, v := range raw {
		cells[i] = NormalizeCell(v)
	}
	return cells
}

// rowIsBlank reports whether every cell in the row is blank.
func rowIsBlank(cells []Cell) bool {
	for _, c := range cells {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

var digitReplacer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٫", ".", // arabic decimal separator
	"٬", "", // arabic thousands separator
	",", "",
	"\u00a0", "",
	"\u202f", "",
	" ", "",
	"'", "",
)

// parseNumber parses s leniently: thousands separators, whitespace and
// Arabic digits are accepted. A trailing percent sign or currency code is not.
func parseNumber(s string) (float64, bool) {
	s = digitReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	// Accounting negatives: (1234.50)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if !looksNumeric(s) {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// looksNumeric guards cast, which accepts forms like "0x1f" and "1_000".
func looksNumeric(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
		case (r == '-' || r == '+') && i == 0:
		case r == 'e' || r == 'E':
			if digits == 0 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}
