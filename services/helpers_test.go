package services

import (
	"bytes"
	"testing"

	"boqengine/boq"
)

// bytesReader wraps a byte slice in a bytes.Reader for use with excelize.OpenReader.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

// sampleResult runs the engine over a small two-sheet BOQ.
func sampleResult(t *testing.T) *boq.ExtractionResult {
	t.Helper()
	opts := boq.DefaultOptions()
	opts.CrewCount = 2
	x, err := boq.NewExtractor(opts)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	res, err := x.Run([]boq.Sheet{
		{Name: "Civil", Rows: [][]any{
			{"Item", "Description", "Unit", "Qty", "Rate", "Amount"},
			{"1", "Excavation for foundations", "m3", 250, 30, 7500},
			{"2", "=HYPERLINK(\"x\") reinforced concrete", "m3", 40, 400, 16000},
			{"3", "Mobilization", "LS", 1, 5000, 5000},
		}},
		{Name: "Notes", Rows: [][]any{{"General notes only"}}},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return res
}
