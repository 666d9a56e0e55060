package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"boqengine/boq"
)

// ErrUnsupportedFormat is returned for uploads that are neither a workbook
// nor a delimited text file.
var ErrUnsupportedFormat = errors.New("unsupported file format: must be .xlsx, .xlsm or .csv")

// ReadUpload decodes an uploaded file into sheets, choosing the decoder by
// file extension.
func ReadUpload(file io.Reader, fileName string) ([]boq.Sheet, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(file)
	case ".csv", ".txt":
		name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
		return ReadCSV(file, name, ',')
	}
	return nil, ErrUnsupportedFormat
}

// ReadWorkbook decodes every sheet of an xlsx workbook in workbook order.
// Cells are returned as raw values so that numbers are not reformatted by
// the sheet's number formats.
func ReadWorkbook(r io.Reader) ([]boq.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	var sheets []boq.Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		sheets = append(sheets, boq.Sheet{Name: name, Rows: stringRows(rows)})
	}
	return sheets, nil
}

// ReadCSV decodes a delimited text file as a single sheet. A UTF-8 or UTF-16
// byte order mark is honored and stripped.
func ReadCSV(r io.Reader, sheetName string, delimiter rune) ([]boq.Sheet, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return []boq.Sheet{{Name: sheetName, Rows: stringRows(rows)}}, nil
}

func stringRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
