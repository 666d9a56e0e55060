package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"boqengine/testhelpers"
)

func listRuns(t *testing.T, target string) (*httptest.ResponseRecorder, []RunListEntry) {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestRun(t, app, "first.xlsx", 1)
	testhelpers.CreateTestRun(t, app, "second.xlsx", 3)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	if err := HandleRunList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var entries []RunListEntry
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
	}
	return rec, entries
}

func TestHandleRunList(t *testing.T) {
	rec, entries := listRuns(t, "/api/boq/runs")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d runs, want 2", len(entries))
	}
	for _, e := range entries {
		if e.ID == "" || e.RunKey == "" || e.Items != 5 || e.TotalCost != 38800 {
			t.Errorf("entry = %+v", e)
		}
	}
}

func TestHandleRunList_Limit(t *testing.T) {
	rec, entries := listRuns(t, "/api/boq/runs?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(entries) != 1 {
		t.Errorf("got %d runs, want 1", len(entries))
	}

	for _, bad := range []string{"0", "-1", "ten"} {
		rec, _ := listRuns(t, "/api/boq/runs?limit="+bad)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", bad, rec.Code)
		}
	}
}

func TestHandleRunView(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	run, res := testhelpers.CreateTestRun(t, app, "view.xlsx", 2)

	req := httptest.NewRequest(http.MethodGet, "/api/boq/runs/"+run.Id, nil)
	req.SetPathValue("id", run.Id)
	rec := httptest.NewRecorder()
	if err := HandleRunView(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeRun(t, rec)
	if resp.RunID != run.Id || resp.SourceName != "view.xlsx" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Items) != len(res.Items) {
		t.Errorf("got %d items, want %d", len(resp.Items), len(res.Items))
	}
	if resp.Summary.ParallelDurationDays != res.Summary.ParallelDurationDays {
		t.Errorf("parallel days = %d, want %d", resp.Summary.ParallelDurationDays, res.Summary.ParallelDurationDays)
	}
}

func TestHandleRunView_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	for _, id := range []string{"", "nonexistent"} {
		req := httptest.NewRequest(http.MethodGet, "/api/boq/runs/x", nil)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		if err := HandleRunView(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusBadRequest && rec.Code != http.StatusNotFound {
			t.Errorf("id %q: got %d", id, rec.Code)
		}
	}
}
