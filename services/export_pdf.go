package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"boqengine/boq"
)

var (
	pdfHeaderBg  = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfStripeBg  = &props.Color{Red: 245, Green: 245, Blue: 245}
	pdfSummaryBg = &props.Color{Red: 240, Green: 240, Blue: 240}
	pdfMuted     = &props.Color{Red: 80, Green: 80, Blue: 80}
)

// pdfColumn is one column of a maroto table; sizes add up to 12.
type pdfColumn struct {
	title string
	size  int
	align align.Type
}

var pdfItemColumns = []pdfColumn{
	{"#", 1, align.Center},
	{"Code", 1, align.Center},
	{"Description", 4, align.Left},
	{"Qty", 1, align.Right},
	{"Unit", 1, align.Center},
	{"Total", 2, align.Right},
	{"Work Type", 1, align.Center},
	{"Days", 1, align.Right},
}

var pdfBucketColumns = []pdfColumn{
	{"Work Type", 3, align.Left},
	{"Items", 1, align.Right},
	{"Cost", 3, align.Right},
	{"Share", 2, align.Right},
	{"Serial Days", 2, align.Right},
	{"Unest.", 1, align.Right},
}

// GeneratePDF renders a run as a landscape A4 report: the item table, the
// per-work-type breakdown and the schedule estimate.
func GeneratePDF(data ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data)

	addTableHeader(m, pdfItemColumns)
	for i, it := range data.Items {
		addTableRow(m, pdfItemColumns, itemCells(it), i%2 == 1)
	}

	m.AddRows(row.New(6))
	addTableHeader(m, pdfBucketColumns)
	for i, b := range data.Totals.Buckets {
		addTableRow(m, pdfBucketColumns, []string{
			string(b.WorkType),
			fmt.Sprintf("%d", b.Count),
			FormatAmount(b.CostTotal),
			FormatShare(b.CostShare),
			FormatDays(b.SerialDurationDays),
			fmt.Sprintf("%d", b.UnestimatedItems),
		}, i%2 == 1)
	}

	addSummary(m, data.Totals)
	addSkipped(m, data.Skipped)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func itemCells(it boq.LineItem) []string {
	return []string{
		fmt.Sprintf("%d", it.ID),
		it.ItemCode,
		it.Description,
		FormatQty(it.Quantity),
		it.Unit,
		FormatAmount(it.Total),
		string(it.WorkType),
		daysText(it),
	}
}

// addHeader adds the title, source file and date.
func addHeader(m core.Maroto, data ReportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Source: %s", data.SourceName), props.Text{
					Size:  9,
					Align: align.Left,
					Color: pdfMuted,
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", data.CreatedDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: pdfMuted,
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

func addTableHeader(m core.Maroto, cols []pdfColumn) {
	cell := &props.Cell{BackgroundColor: pdfHeaderBg}
	r := row.New(8)
	for _, c := range cols {
		r.Add(col.New(c.size).Add(
			text.New(c.title, props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Align: c.align,
				Color: &props.Color{Red: 255, Green: 255, Blue: 255},
			}),
		).WithStyle(cell))
	}
	m.AddRows(r)
}

func addTableRow(m core.Maroto, cols []pdfColumn, values []string, striped bool) {
	r := row.New(7)
	for i, c := range cols {
		column := col.New(c.size).Add(text.New(values[i], props.Text{Size: 7, Align: c.align}))
		if striped {
			column = column.WithStyle(&props.Cell{BackgroundColor: pdfStripeBg})
		}
		r.Add(column)
	}
	m.AddRows(r)
}

// addSummary adds cost and duration totals.
func addSummary(m core.Maroto, t boq.Totals) {
	m.AddRows(row.New(6))

	cell := &props.Cell{BackgroundColor: pdfSummaryBg}
	style := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	lines := []struct{ label, value string }{
		{"Total Cost", FormatAmount(t.TotalCost)},
		{"Line Items", fmt.Sprintf("%d", t.TotalItems)},
		{"Serial Duration", FormatDays(t.SerialDurationDays)},
		{fmt.Sprintf("Parallel Duration (%d crews)", t.CrewCount), FormatDays(t.ParallelDurationDays)},
	}
	if t.UnestimatedItems > 0 {
		lines = append(lines, struct{ label, value string }{"Items Without Estimate", fmt.Sprintf("%d", t.UnestimatedItems)})
	}
	for _, l := range lines {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(l.label, style)).WithStyle(cell),
				col.New(4).Add(text.New(l.value, style)).WithStyle(cell),
			),
		)
	}
}

func addSkipped(m core.Maroto, skipped []boq.SkippedSheet) {
	if len(skipped) == 0 {
		return
	}
	m.AddRows(row.New(6))
	note := props.Text{Size: 7, Align: align.Left, Color: pdfMuted}
	for _, s := range skipped {
		m.AddRows(
			row.New(5).Add(
				col.New(12).Add(text.New(fmt.Sprintf("Skipped sheet %q: %s", s.Sheet, s.Reason), note)),
			),
		)
	}
}
