package services

import (
	"time"

	"boqengine/boq"
)

// ReportData holds everything the XLSX and PDF reports render for one run.
type ReportData struct {
	Title       string
	RunKey      string
	SourceName  string
	CreatedDate string
	Items       []boq.LineItem
	Totals      boq.Totals
	Skipped     []boq.SkippedSheet
}

// NewReportData prepares report data for an extraction result.
func NewReportData(title, runKey, sourceName string, created time.Time, res *boq.ExtractionResult) ReportData {
	if title == "" {
		title = "BOQ Extraction"
	}
	return ReportData{
		Title:       title,
		RunKey:      runKey,
		SourceName:  sourceName,
		CreatedDate: created.Format("02 Jan 2006"),
		Items:       res.Items,
		Totals:      res.Summary.Totals,
		Skipped:     res.Summary.SkippedSheets,
	}
}

func daysText(it boq.LineItem) string {
	if it.EstimatedDurationDays == nil {
		return "-"
	}
	return FormatDays(*it.EstimatedDurationDays)
}
