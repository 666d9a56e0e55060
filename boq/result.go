package boq

// SheetStatus tells whether a sheet contributed line items.
type SheetStatus string

const (
	SheetExtracted SheetStatus = "extracted"
	SheetSkipped   SheetStatus = "skipped"
)

// SheetReport describes how one sheet was read.
type SheetReport struct {
	Name       string      `json:"name"`
	Status     SheetStatus `json:"status"`
	SkipReason string      `json:"skipReason,omitempty"`
	Confidence Confidence  `json:"confidence,omitempty"`
	// HeaderRow is the 1-based source row of the header, 0 when none.
	HeaderRow     int       `json:"headerRow"`
	Columns       ColumnMap `json:"columns,omitempty"`
	// RowsAboveData counts the rows up to and including the header, which
	// are not scanned for items. RowsAboveData + RowsScanned is the row
	// count of an extracted sheet.
	RowsAboveData int `json:"rowsAboveData"`
	RowsScanned   int `json:"rowsScanned"`
	ItemsAccepted int `json:"itemsAccepted"`
	RowsRejected  int `json:"rowsRejected"`
}

// SkippedSheet is the diagnostic recorded for an unusable sheet.
type SkippedSheet struct {
	Sheet  string `json:"sheet"`
	Reason string `json:"reason"`
}

// Summary holds the run-level statistics of an extraction.
type Summary struct {
	Totals

	RowsAboveData    int                  `json:"rowsAboveData"`
	RowsScanned      int                  `json:"rowsScanned"`
	ItemsAccepted    int                  `json:"itemsAccepted"`
	RowsRejected     int                  `json:"rowsRejected"`
	RejectedByReason map[RejectReason]int `json:"rejectedByReason"`
	SkippedSheets    []SkippedSheet       `json:"skippedSheets"`
	Sheets           []SheetReport        `json:"sheets"`
}

// ExtractionResult is the output of one extraction run. Items are in sheet
// order, then row order, and TotalCost is the sum of their totals.
type ExtractionResult struct {
	Items   []LineItem `json:"items"`
	Summary Summary    `json:"summary"`
}
