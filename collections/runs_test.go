package collections_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"boqengine/boq"
	"boqengine/collections"
	"boqengine/testhelpers"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestSaveRun_LoadRunRoundTrip(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	run, res := testhelpers.CreateTestRun(t, app, "tower-a.xlsx", 3)

	if run.GetString("run_key") == "" {
		t.Fatal("run_key not set")
	}
	if got := run.GetFloat("total_cost"); got != res.Summary.TotalCost {
		t.Errorf("stored total_cost = %v, want %v", got, res.Summary.TotalCost)
	}

	for _, key := range []string{run.Id, run.GetString("run_key")} {
		stored, err := collections.LoadRun(app, key)
		if err != nil {
			t.Fatalf("LoadRun(%q) error: %v", key, err)
		}
		if stored.ID != run.Id || stored.SourceName != "tower-a.xlsx" {
			t.Errorf("stored run = %+v", stored)
		}
		if stored.Created.IsZero() {
			t.Error("created time not loaded")
		}

		got := stored.Result
		if mustJSON(t, got.Items) != mustJSON(t, res.Items) {
			t.Errorf("items differ after round trip\n got: %s\nwant: %s", mustJSON(t, got.Items), mustJSON(t, res.Items))
		}
		if !reflect.DeepEqual(got.Summary.Totals, res.Summary.Totals) {
			t.Errorf("totals = %+v, want %+v", got.Summary.Totals, res.Summary.Totals)
		}
		if got.Summary.RowsScanned != res.Summary.RowsScanned || got.Summary.RowsRejected != res.Summary.RowsRejected {
			t.Errorf("row counts = %d/%d, want %d/%d", got.Summary.RowsScanned, got.Summary.RowsRejected,
				res.Summary.RowsScanned, res.Summary.RowsRejected)
		}
		if got.Summary.RowsAboveData != res.Summary.RowsAboveData || got.Summary.RowsAboveData == 0 {
			t.Errorf("rows above data = %d, want %d", got.Summary.RowsAboveData, res.Summary.RowsAboveData)
		}
		if got.Summary.RejectedByReason[boq.RejectNonPositiveQuantity] != 1 {
			t.Errorf("rejected by reason = %v", got.Summary.RejectedByReason)
		}
		if len(got.Summary.SkippedSheets) != 1 || got.Summary.SkippedSheets[0].Sheet != "Cover" {
			t.Errorf("skipped sheets = %+v", got.Summary.SkippedSheets)
		}
		if len(got.Summary.Sheets) != 3 || got.Summary.Sheets[0].Confidence != boq.HeaderMatched {
			t.Errorf("sheet reports = %+v", got.Summary.Sheets)
		}
	}
}

func TestLoadRun_RecomputesWithStoredCrewCount(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	run, res := testhelpers.CreateTestRun(t, app, "crews.xlsx", 4)

	stored, err := collections.LoadRun(app, run.Id)
	if err != nil {
		t.Fatal(err)
	}
	s := stored.Result.Summary
	if s.CrewCount != 4 {
		t.Errorf("CrewCount = %d, want 4", s.CrewCount)
	}
	if want := boq.ParallelDays(res.Summary.SerialDurationDays, 4); s.ParallelDurationDays != want {
		t.Errorf("ParallelDurationDays = %d, want %d", s.ParallelDurationDays, want)
	}
}

func TestSaveRun_KeepsFullDescription(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	long := strings.Repeat("very long specification text ", 40) + "reinforced concrete"
	res := testhelpers.Extract(t, []boq.Sheet{{Name: "S", Rows: [][]any{
		{"Description", "Unit", "Qty"},
		{long, "m3", 12},
	}}}, 1)

	run, err := collections.SaveRun(app, res, "long.csv")
	if err != nil {
		t.Fatal(err)
	}
	stored, err := collections.LoadRun(app, run.Id)
	if err != nil {
		t.Fatal(err)
	}
	it := stored.Result.Items[0]
	if it.FullDescription() != long {
		t.Error("full description lost in storage")
	}
	if n := len([]rune(it.Description)); n != boq.MaxDescriptionLen+1 {
		t.Errorf("display description has %d runes", n)
	}
	if it.WorkType != boq.Structural {
		t.Errorf("WorkType = %q, want structural", it.WorkType)
	}
}

func TestSaveRun_RollsBackOnItemFailure(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	res := testhelpers.Extract(t, testhelpers.SampleSheets(), 1)
	// An item without description violates the collection schema.
	res.Items[len(res.Items)-1].Description = ""

	if _, err := collections.SaveRun(app, res, "broken.xlsx"); err == nil {
		t.Fatal("expected SaveRun to fail")
	}

	runs, err := collections.RecentRuns(app, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("found %d runs after rollback, want 0", len(runs))
	}
	items, err := app.FindRecordsByFilter(collections.ItemsCollection, "id != ''", "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("found %d items after rollback, want 0", len(items))
	}
}

func TestSaveRun_EmptyResult(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	res := testhelpers.Extract(t, []boq.Sheet{{Name: "Blank"}}, 2)

	run, err := collections.SaveRun(app, res, "blank.xlsx")
	if err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}
	stored, err := collections.LoadRun(app, run.Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Result.Items) != 0 || stored.Result.Summary.TotalCost != 0 {
		t.Errorf("stored = %+v", stored.Result)
	}
	if stored.Result.Summary.Buckets == nil {
		t.Error("buckets should be empty, not nil")
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := collections.LoadRun(app, "missing"); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestDeleteRun_CascadesToItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	run, _ := testhelpers.CreateTestRun(t, app, "cascade.xlsx", 1)

	if err := app.Delete(run); err != nil {
		t.Fatal(err)
	}
	items, err := app.FindRecordsByFilter(collections.ItemsCollection, "run = {:runId}", "", 0, 0,
		map[string]any{"runId": run.Id})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("found %d orphan items", len(items))
	}
}

func TestRecentRuns(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestRun(t, app, "a.xlsx", 1)
	testhelpers.CreateTestRun(t, app, "b.xlsx", 1)
	testhelpers.CreateTestRun(t, app, "c.xlsx", 1)

	runs, err := collections.RecentRuns(app, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}
