// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"

	"boqengine/boq"
	"boqengine/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// SampleSheets returns a small BOQ: a header-matched civil sheet, an
// unusable cover sheet and a headerless finishes sheet.
func SampleSheets() []boq.Sheet {
	return []boq.Sheet{
		{Name: "Civil", Rows: [][]any{
			{"Bill of Quantities"},
			{"Item", "Description", "Unit", "Qty", "Rate", "Amount"},
			{"1.1", "Excavation for foundations", "m3", 250, 30, 7500},
			{"1.2", "Reinforced concrete for footings", "m3", 40, 400, 16000},
			{"", "Section subtotal", "", "", "", 23500},
			{"1.3", "Mobilization", "LS", 1, 5000, 5000},
		}},
		{Name: "Cover", Rows: [][]any{
			{"Tender No.", "T-17"},
		}},
		{Name: "Finishes", Rows: [][]any{
			{1, "Porcelain floor tiles 60x60 cm", "Sqm", 100, 55, 5500},
			{2, "Emulsion paint to internal walls", "m2", 400, 12, 4800},
		}},
	}
}

// Extract runs the default engine over sheets with the given crew count.
func Extract(t *testing.T, sheets []boq.Sheet, crews int) *boq.ExtractionResult {
	t.Helper()

	opts := boq.DefaultOptions()
	opts.CrewCount = crews
	x, err := boq.NewExtractor(opts)
	if err != nil {
		t.Fatalf("failed to build extractor: %v", err)
	}
	res, err := x.Run(sheets)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	return res
}

// CreateTestRun extracts SampleSheets and stores the result, returning the
// run record and the in-memory result it was saved from.
func CreateTestRun(t *testing.T, app core.App, sourceName string, crews int) (*core.Record, *boq.ExtractionResult) {
	t.Helper()

	res := Extract(t, SampleSheets(), crews)
	run, err := collections.SaveRun(app, res, sourceName)
	if err != nil {
		t.Fatalf("failed to save test run: %v", err)
	}
	return run, res
}

// BuildWorkbook writes sheets into an in-memory xlsx file.
func BuildWorkbook(t *testing.T, sheets []boq.Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("failed to add sheet %q: %v", s.Name, err)
		}
		for r, row := range s.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				t.Fatalf("failed to write row %d of %q: %v", r+1, s.Name, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

// AssertBodyContains checks that body contains all specified fragments.
func AssertBodyContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
