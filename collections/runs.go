package collections

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"

	"boqengine/boq"
)

// StoredRun is an extraction run read back from the database.
type StoredRun struct {
	ID         string
	Key        string
	SourceName string
	Created    time.Time
	Result     *boq.ExtractionResult
}

// SaveRun stores a run and all of its line items in one transaction and
// returns the run record. Either everything is written or nothing is.
func SaveRun(app core.App, res *boq.ExtractionResult, sourceName string) (*core.Record, error) {
	runsCol, err := app.FindCollectionByNameOrId(RunsCollection)
	if err != nil {
		return nil, fmt.Errorf("runs: could not find %s collection: %w", RunsCollection, err)
	}
	itemsCol, err := app.FindCollectionByNameOrId(ItemsCollection)
	if err != nil {
		return nil, fmt.Errorf("runs: could not find %s collection: %w", ItemsCollection, err)
	}

	s := res.Summary
	run := core.NewRecord(runsCol)
	run.Set("run_key", uuid.NewString())
	run.Set("source_name", sourceName)
	run.Set("crew_count", s.CrewCount)
	run.Set("rows_scanned", s.RowsScanned)
	run.Set("items_accepted", s.ItemsAccepted)
	run.Set("rows_rejected", s.RowsRejected)
	run.Set("total_cost", s.TotalCost)
	run.Set("serial_days", s.SerialDurationDays)
	run.Set("parallel_days", s.ParallelDurationDays)
	run.Set("rejected_by_reason", s.RejectedByReason)
	run.Set("skipped_sheets", s.SkippedSheets)
	run.Set("sheets", s.Sheets)

	err = app.RunInTransaction(func(txApp core.App) error {
		if err := txApp.Save(run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		for _, it := range res.Items {
			record := core.NewRecord(itemsCol)
			record.Set("run", run.Id)
			setItemFields(record, it)
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("save item %d (%s row %d): %w", it.ID, it.Sheet, it.RowIndex, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("runs: save of %q rolled back: %v", sourceName, err)
		return nil, err
	}

	log.Printf("runs: saved run %s (%s) with %d items", run.Id, run.GetString("run_key"), len(res.Items))
	return run, nil
}

func setItemFields(record *core.Record, it boq.LineItem) {
	record.Set("position", it.ID)
	record.Set("sheet_name", it.Sheet)
	record.Set("row_index", it.RowIndex)
	record.Set("item_code", it.ItemCode)
	record.Set("category", it.Category)
	record.Set("description", it.Description)
	record.Set("full_description", it.FullDescription())
	record.Set("specifications", it.Specifications)
	record.Set("full_specifications", it.FullSpecifications())
	record.Set("language", it.Language)
	record.Set("unit", it.Unit)
	record.Set("quantity", it.Quantity)
	record.Set("unit_price", it.UnitPrice)
	record.Set("total", it.Total)
	record.Set("work_type", string(it.WorkType))
	record.Set("estimated", it.Estimated())
	if it.Estimated() {
		record.Set("productivity_rate", *it.ProductivityRate)
		record.Set("duration_days", *it.EstimatedDurationDays)
	}
}

func itemFromRecord(record *core.Record) boq.LineItem {
	it := boq.LineItem{
		ID:             record.GetInt("position"),
		Sheet:          record.GetString("sheet_name"),
		RowIndex:       record.GetInt("row_index"),
		ItemCode:       record.GetString("item_code"),
		Category:       record.GetString("category"),
		Description:    record.GetString("description"),
		Specifications: record.GetString("specifications"),
		Language:       record.GetString("language"),
		Unit:           record.GetString("unit"),
		Quantity:       record.GetFloat("quantity"),
		UnitPrice:      record.GetFloat("unit_price"),
		Total:          record.GetFloat("total"),
		WorkType:       boq.WorkType(record.GetString("work_type")),
	}
	if record.GetBool("estimated") {
		rate := record.GetFloat("productivity_rate")
		days := record.GetInt("duration_days")
		it.ProductivityRate = &rate
		it.EstimatedDurationDays = &days
	}
	return boq.RestoreLineItem(it, record.GetString("full_description"), record.GetString("full_specifications"))
}

// FindRun looks a run up by record id, then by run key.
func FindRun(app core.App, idOrKey string) (*core.Record, error) {
	if run, err := app.FindRecordById(RunsCollection, idOrKey); err == nil {
		return run, nil
	}
	run, err := app.FindFirstRecordByData(RunsCollection, "run_key", idOrKey)
	if err != nil {
		return nil, fmt.Errorf("runs: run %q not found: %w", idOrKey, err)
	}
	return run, nil
}

// LoadRun rebuilds a stored run. Totals and buckets are recomputed from the
// stored items with the stored crew count, so they always agree with the
// items.
func LoadRun(app core.App, idOrKey string) (*StoredRun, error) {
	run, err := FindRun(app, idOrKey)
	if err != nil {
		return nil, err
	}

	records, err := app.FindRecordsByFilter(
		ItemsCollection,
		"run = {:runId}",
		"position",
		0,
		0,
		map[string]any{"runId": run.Id},
	)
	if err != nil {
		return nil, fmt.Errorf("runs: could not fetch items for run %s: %w", run.Id, err)
	}

	items := make([]boq.LineItem, 0, len(records))
	for _, r := range records {
		items = append(items, itemFromRecord(r))
	}

	totals, err := boq.Aggregate(items, run.GetInt("crew_count"))
	if err != nil {
		return nil, fmt.Errorf("runs: run %s: %w", run.Id, err)
	}

	summary := boq.Summary{
		Totals:           totals,
		RowsScanned:      run.GetInt("rows_scanned"),
		ItemsAccepted:    run.GetInt("items_accepted"),
		RowsRejected:     run.GetInt("rows_rejected"),
		RejectedByReason: map[boq.RejectReason]int{},
		SkippedSheets:    []boq.SkippedSheet{},
		Sheets:           []boq.SheetReport{},
	}
	jsonFields := []struct {
		name string
		dst  any
	}{
		{"rejected_by_reason", &summary.RejectedByReason},
		{"skipped_sheets", &summary.SkippedSheets},
		{"sheets", &summary.Sheets},
	}
	for _, f := range jsonFields {
		if err := run.UnmarshalJSONField(f.name, f.dst); err != nil {
			log.Printf("runs: run %s has unreadable %s: %v", run.Id, f.name, err)
		}
	}
	if summary.RejectedByReason == nil {
		summary.RejectedByReason = map[boq.RejectReason]int{}
	}
	if summary.SkippedSheets == nil {
		summary.SkippedSheets = []boq.SkippedSheet{}
	}
	for _, sh := range summary.Sheets {
		summary.RowsAboveData += sh.RowsAboveData
	}

	return &StoredRun{
		ID:         run.Id,
		Key:        run.GetString("run_key"),
		SourceName: run.GetString("source_name"),
		Created:    run.GetDateTime("created").Time(),
		Result:     &boq.ExtractionResult{Items: items, Summary: summary},
	}, nil
}

// RecentRuns returns up to limit runs, newest first.
func RecentRuns(app core.App, limit int) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(RunsCollection, "id != ''", "-created", limit, 0)
	if err != nil {
		return nil, fmt.Errorf("runs: could not list runs: %w", err)
	}
	return records, nil
}
