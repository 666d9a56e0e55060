package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// Collection names.
const (
	RunsCollection  = "extraction_runs"
	ItemsCollection = "boq_line_items"
)

// longTextMax lifts the default 5000 character cap on untruncated source
// text.
const longTextMax = 100000

// Setup programmatically creates/ensures the extraction_runs and
// boq_line_items collections exist.
func Setup(app core.App) {
	runs := ensureCollection(app, RunsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "run_key", Required: true})
		c.Fields.Add(&core.TextField{Name: "source_name", Required: false})
		c.Fields.Add(&core.NumberField{Name: "crew_count", Required: true, OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "rows_scanned", OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "items_accepted", OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "rows_rejected", OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "total_cost"})
		c.Fields.Add(&core.NumberField{Name: "serial_days", OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "parallel_days", OnlyInt: true})
		c.Fields.Add(&core.JSONField{Name: "rejected_by_reason"})
		c.Fields.Add(&core.JSONField{Name: "skipped_sheets"})
		c.Fields.Add(&core.JSONField{Name: "sheets"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_extraction_runs_run_key", true, "run_key", "")
	})

	ensureCollection(app, ItemsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "run",
			Required:      true,
			CollectionId:  runs.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "position", Required: true, OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "sheet_name"})
		c.Fields.Add(&core.NumberField{Name: "row_index", Required: true, OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "item_code"})
		c.Fields.Add(&core.TextField{Name: "category"})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.TextField{Name: "full_description", Max: longTextMax})
		c.Fields.Add(&core.TextField{Name: "specifications", Max: longTextMax})
		c.Fields.Add(&core.TextField{Name: "full_specifications", Max: longTextMax})
		c.Fields.Add(&core.TextField{Name: "language"})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true})
		c.Fields.Add(&core.NumberField{Name: "unit_price"})
		c.Fields.Add(&core.NumberField{Name: "total"})
		c.Fields.Add(&core.TextField{Name: "work_type", Required: true})
		c.Fields.Add(&core.BoolField{Name: "estimated"})
		c.Fields.Add(&core.NumberField{Name: "productivity_rate"})
		c.Fields.Add(&core.NumberField{Name: "duration_days", OnlyInt: true})
		c.AddIndex("idx_boq_line_items_run", false, "run, position", "")
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
