package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	itemsSheet   = "Items"
	summarySheet = "Work Types"
)

type excelStyles struct {
	title, subtitle, header, body, amount, share, label, value int
}

// GenerateExcel renders a run as a workbook with an "Items" sheet listing
// every line item and a "Work Types" sheet with per-type totals and the
// schedule estimate.
func GenerateExcel(data ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), itemsSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	st, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}
	if err := writeItemsSheet(f, st, data); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, st, data); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var st excelStyles
	defs := []struct {
		dst   *int
		name  string
		style *excelize.Style
	}{
		{&st.title, "title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&st.subtitle, "subtitle", &excelize.Style{Font: &excelize.Font{Size: 11}}},
		{&st.header, "header", &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thinBorders(),
		}},
		{&st.body, "body", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}},
		// 4 is the built-in "#,##0.00" format.
		{&st.amount, "amount", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), NumFmt: 4}},
		// 10 is the built-in "0.00%" format.
		{&st.share, "share", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), NumFmt: 10}},
		{&st.label, "summary label", &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "right"},
		}},
		{&st.value, "summary value", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, fmt.Errorf("create %s style: %w", d.name, err)
		}
		*d.dst = id
	}
	return st, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// writeTitle fills rows 1-3 with the title, source and date, merged across
// width columns.
func writeTitle(f *excelize.File, st excelStyles, sheet string, width int, data ReportData) error {
	lines := []struct {
		text  string
		style int
	}{
		{data.Title, st.title},
		{"Source: " + data.SourceName, st.subtitle},
		{"Date: " + data.CreatedDate, st.subtitle},
	}
	for i, l := range lines {
		row := i + 1
		if err := f.MergeCell(sheet, cellName(1, row), cellName(width, row)); err != nil {
			return fmt.Errorf("merge title row %d: %w", row, err)
		}
		f.SetCellValue(sheet, cellName(1, row), sanitizeExcelCell(l.text))
		f.SetCellStyle(sheet, cellName(1, row), cellName(width, row), l.style)
	}
	return nil
}

func writeHeaderRow(f *excelize.File, st excelStyles, sheet string, row int, headers []string, widths []float64) error {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
		f.SetCellValue(sheet, cellName(i+1, row), h)
	}
	f.SetCellStyle(sheet, cellName(1, row), cellName(len(headers), row), st.header)
	return nil
}

func writeItemsSheet(f *excelize.File, st excelStyles, data ReportData) error {
	headers := []string{"#", "Sheet", "Row", "Code", "Description", "Qty", "Unit", "Unit Price", "Total", "Work Type", "Rate/day", "Days"}
	widths := []float64{6, 14, 6, 10, 50, 10, 8, 14, 16, 14, 10, 8}

	if err := writeTitle(f, st, itemsSheet, len(headers), data); err != nil {
		return err
	}
	if err := writeHeaderRow(f, st, itemsSheet, 5, headers, widths); err != nil {
		return err
	}

	row := 6
	for _, it := range data.Items {
		values := []any{
			it.ID,
			sanitizeExcelCell(it.Sheet),
			it.RowIndex,
			sanitizeExcelCell(it.ItemCode),
			sanitizeExcelCell(it.Description),
			it.Quantity,
			it.Unit,
			it.UnitPrice,
			it.Total,
			string(it.WorkType),
		}
		if it.Estimated() {
			values = append(values, *it.ProductivityRate, *it.EstimatedDurationDays)
		}
		for i, v := range values {
			f.SetCellValue(itemsSheet, cellName(i+1, row), v)
		}
		f.SetCellStyle(itemsSheet, cellName(1, row), cellName(len(headers), row), st.body)
		f.SetCellStyle(itemsSheet, cellName(8, row), cellName(9, row), st.amount)
		row++
	}

	// Skip a blank row.
	row++
	f.SetCellValue(itemsSheet, cellName(8, row), "Total Cost:")
	f.SetCellStyle(itemsSheet, cellName(8, row), cellName(8, row), st.label)
	f.SetCellValue(itemsSheet, cellName(9, row), data.Totals.TotalCost)
	f.SetCellStyle(itemsSheet, cellName(9, row), cellName(9, row), st.amount)

	return f.SetPanes(itemsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      5,
		TopLeftCell: "A6",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, st excelStyles, data ReportData) error {
	headers := []string{"Work Type", "Items", "Cost", "Share", "Serial Days", "Unestimated"}
	widths := []float64{18, 8, 18, 10, 12, 12}

	if err := writeTitle(f, st, summarySheet, len(headers), data); err != nil {
		return err
	}
	if err := writeHeaderRow(f, st, summarySheet, 5, headers, widths); err != nil {
		return err
	}

	row := 6
	for _, b := range data.Totals.Buckets {
		values := []any{string(b.WorkType), b.Count, b.CostTotal, b.CostShare, b.SerialDurationDays, b.UnestimatedItems}
		for i, v := range values {
			f.SetCellValue(summarySheet, cellName(i+1, row), v)
		}
		f.SetCellStyle(summarySheet, cellName(1, row), cellName(len(headers), row), st.body)
		f.SetCellStyle(summarySheet, cellName(3, row), cellName(3, row), st.amount)
		f.SetCellStyle(summarySheet, cellName(4, row), cellName(4, row), st.share)
		row++
	}

	row++
	t := data.Totals
	summary := []struct {
		label string
		value any
	}{
		{"Total Cost:", t.TotalCost},
		{"Line Items:", t.TotalItems},
		{"Serial Duration (days):", t.SerialDurationDays},
		{"Crews:", t.CrewCount},
		{"Parallel Duration (days):", t.ParallelDurationDays},
		{"Unestimated Items:", t.UnestimatedItems},
	}
	for _, s := range summary {
		f.SetCellValue(summarySheet, cellName(2, row), s.label)
		f.SetCellStyle(summarySheet, cellName(2, row), cellName(2, row), st.label)
		f.SetCellValue(summarySheet, cellName(3, row), s.value)
		f.SetCellStyle(summarySheet, cellName(3, row), cellName(3, row), st.value)
		row++
	}

	if len(data.Skipped) > 0 {
		row++
		f.SetCellValue(summarySheet, cellName(1, row), "Skipped sheets")
		f.SetCellStyle(summarySheet, cellName(1, row), cellName(1, row), st.value)
		for _, s := range data.Skipped {
			row++
			f.SetCellValue(summarySheet, cellName(1, row), sanitizeExcelCell(s.Sheet))
			f.SetCellValue(summarySheet, cellName(2, row), s.Reason)
		}
	}
	return nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
