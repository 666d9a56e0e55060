package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"boqengine/collections"
)

const (
	defaultRunListLimit = 50
	maxRunListLimit     = 500
)

// RunListEntry is one row of the run listing.
type RunListEntry struct {
	ID           string    `json:"id"`
	RunKey       string    `json:"runKey"`
	SourceName   string    `json:"sourceName"`
	Created      time.Time `json:"created"`
	CrewCount    int       `json:"crewCount"`
	Items        int       `json:"items"`
	TotalCost    float64   `json:"totalCost"`
	SerialDays   int       `json:"serialDurationDays"`
	ParallelDays int       `json:"parallelDurationDays"`
}

// HandleRunList lists stored runs, newest first.
// Route: GET /api/boq/runs?limit=N
func HandleRunList(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		limit := defaultRunListLimit
		if raw := e.Request.URL.Query().Get("limit"); raw != "" {
			n, err := cast.ToIntE(raw)
			if err != nil || n < 1 {
				return errorJSON(e, http.StatusBadRequest, "limit must be a positive whole number")
			}
			limit = min(n, maxRunListLimit)
		}

		records, err := collections.RecentRuns(app, limit)
		if err != nil {
			log.Printf("run_list: %v", err)
			return errorJSON(e, http.StatusInternalServerError, "Failed to list runs")
		}

		entries := make([]RunListEntry, 0, len(records))
		for _, r := range records {
			entries = append(entries, RunListEntry{
				ID:           r.Id,
				RunKey:       r.GetString("run_key"),
				SourceName:   r.GetString("source_name"),
				Created:      r.GetDateTime("created").Time(),
				CrewCount:    r.GetInt("crew_count"),
				Items:        r.GetInt("items_accepted"),
				TotalCost:    r.GetFloat("total_cost"),
				SerialDays:   r.GetInt("serial_days"),
				ParallelDays: r.GetInt("parallel_days"),
			})
		}
		return e.JSON(http.StatusOK, entries)
	}
}

// HandleRunView returns a stored run with its items and recomputed totals.
// Route: GET /api/boq/runs/{id}
func HandleRunView(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return errorJSON(e, http.StatusBadRequest, "Missing run ID")
		}

		stored, err := collections.LoadRun(app, id)
		if err != nil {
			log.Printf("run_view: %v", err)
			return errorJSON(e, http.StatusNotFound, "Run not found")
		}

		return e.JSON(http.StatusOK, RunResponse{
			RunID:            stored.ID,
			RunKey:           stored.Key,
			SourceName:       stored.SourceName,
			ExtractionResult: stored.Result,
		})
	}
}
