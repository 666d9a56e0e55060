package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"boqengine/boq"
	"boqengine/collections"
	"boqengine/testhelpers"
)

func decodeRun(t *testing.T, rec *httptest.ResponseRecorder) RunResponse {
	t.Helper()
	var resp RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestHandleExtract_Workbook(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	xlsx := testhelpers.BuildWorkbook(t, testhelpers.SampleSheets())

	handler := HandleExtract(app, boq.DefaultOptions())
	req := newUploadRequest(t, "/api/boq/extract", "tower.xlsx", xlsx, map[string]string{"crew_count": "2"})
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeRun(t, rec)
	if resp.RunID != "" {
		t.Errorf("run should not be persisted without persist=true, got id %q", resp.RunID)
	}
	if resp.SourceName != "tower.xlsx" {
		t.Errorf("sourceName = %q", resp.SourceName)
	}
	if len(resp.Items) != 5 {
		t.Fatalf("got %d items, want 5", len(resp.Items))
	}
	s := resp.Summary
	if s.TotalCost != 38800 {
		t.Errorf("totalCost = %v, want 38800", s.TotalCost)
	}
	if s.CrewCount != 2 || s.SerialDurationDays != 27 || s.ParallelDurationDays != 14 {
		t.Errorf("durations = crews %d serial %d parallel %d, want 2/27/14", s.CrewCount, s.SerialDurationDays, s.ParallelDurationDays)
	}
	if len(s.SkippedSheets) != 1 || s.SkippedSheets[0].Sheet != "Cover" {
		t.Errorf("skippedSheets = %+v", s.SkippedSheets)
	}
	testhelpers.AssertBodyContains(t, rec.Body.String(), `"workType":"earthworks"`, `"estimatedDurationDays":3`)
}

func TestHandleExtract_Persist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	csv := []byte("Description,Unit,Qty,Rate\nExcavation,m3,100,25\nPaint,m2,50,10\n")

	handler := HandleExtract(app, boq.DefaultOptions())
	req := newUploadRequest(t, "/api/boq/extract", "site.csv", csv, map[string]string{"persist": "true"})
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeRun(t, rec)
	if resp.RunID == "" || resp.RunKey == "" {
		t.Fatalf("run not persisted: %+v", resp)
	}
	stored, err := collections.LoadRun(app, resp.RunID)
	if err != nil {
		t.Fatalf("LoadRun error: %v", err)
	}
	if len(stored.Result.Items) != 2 || stored.Result.Summary.TotalCost != 3000 {
		t.Errorf("stored run = %+v", stored.Result.Summary)
	}
}

func TestHandleExtract_BadRequests(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	csv := []byte("Description,Qty\nPaint,10\n")

	tests := []struct {
		name     string
		fileName string
		content  []byte
		fields   map[string]string
		want     int
	}{
		{"missing file", "", nil, nil, http.StatusBadRequest},
		{"zero crews", "a.csv", csv, map[string]string{"crew_count": "0"}, http.StatusBadRequest},
		{"negative crews", "a.csv", csv, map[string]string{"crew_count": "-2"}, http.StatusBadRequest},
		{"non-numeric crews", "a.csv", csv, map[string]string{"crew_count": "many"}, http.StatusBadRequest},
		{"bad persist flag", "a.csv", csv, map[string]string{"persist": "maybe"}, http.StatusBadRequest},
		{"unsupported format", "a.pdf", []byte("%PDF-1.4"), nil, http.StatusUnsupportedMediaType},
		{"corrupt workbook", "a.xlsx", []byte("not a zip"), nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := HandleExtract(app, boq.DefaultOptions())
			req := newUploadRequest(t, "/api/boq/extract", tt.fileName, tt.content, tt.fields)
			rec := httptest.NewRecorder()
			if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleExtract_UnusableWorkbookIsNotAnError(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	xlsx := testhelpers.BuildWorkbook(t, []boq.Sheet{{Name: "Notes", Rows: [][]any{{"General notes"}}}})

	handler := HandleExtract(app, boq.DefaultOptions())
	req := newUploadRequest(t, "/api/boq/extract", "notes.xlsx", xlsx, nil)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeRun(t, rec)
	if len(resp.Items) != 0 || len(resp.Summary.SkippedSheets) != 1 {
		t.Errorf("response = %+v", resp.Summary)
	}
}
