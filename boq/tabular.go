package boq

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
)

// DefaultDelimiter separates fields when no delimiter is configured.
const DefaultDelimiter = ','

// TabularHeader is the column order of the delimited projection.
var TabularHeader = []string{
	"index", "itemCode", "description", "quantity", "unit", "unitPrice",
	"total", "workType", "productivityRate", "estimatedDurationDays",
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TabularRecord projects one item onto the TabularHeader columns. Missing
// estimates are rendered as empty cells.
func TabularRecord(it LineItem) []string {
	rate, days := "", ""
	if it.ProductivityRate != nil {
		rate = formatNumber(*it.ProductivityRate)
	}
	if it.EstimatedDurationDays != nil {
		days = strconv.Itoa(*it.EstimatedDurationDays)
	}
	return []string{
		strconv.Itoa(it.ID),
		it.ItemCode,
		it.Description,
		formatNumber(it.Quantity),
		it.Unit,
		formatNumber(it.UnitPrice),
		formatNumber(it.Total),
		string(it.WorkType),
		rate,
		days,
	}
}

// WriteDelimited writes a header line and one record per item using
// delimiter as the field separator. Fields containing the delimiter,
// quotes or newlines are quoted.
func WriteDelimited(w io.Writer, items []LineItem, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := cw.Write(TabularHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, it := range items {
		if err := cw.Write(TabularRecord(it)); err != nil {
			return fmt.Errorf("write item %d: %w", it.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseDelimiter reads a delimiter setting: a single character, or "tab".
// An empty setting yields DefaultDelimiter.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return DefaultDelimiter, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}
