package boq

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"
)

// Sheet is one decoded worksheet: its display name and raw rows.
type Sheet struct {
	Name string
	Rows [][]any
}

// DefaultHeaderWindow is the number of non-empty rows used to locate columns.
const DefaultHeaderWindow = 10

// Options configure an extraction run.
type Options struct {
	// CrewCount divides the serial duration into the parallel duration.
	CrewCount int
	// HeaderWindow is how many non-empty leading rows the column locator sees.
	HeaderWindow int
	// Workers bounds how many sheets are processed at once; 0 means one
	// goroutine per sheet.
	Workers int
	// Rules replaces the built-in classification table when non-nil.
	Rules RuleTable
	// ExtraRules are evaluated before Rules.
	ExtraRules RuleTable
	// Rates is merged over the built-in productivity table when non-nil.
	Rates *RateTable
	// Detector tags item descriptions with a language; nil disables it.
	Detector LanguageDetector
	Logger   *slog.Logger
}

// DefaultOptions returns options for a single-crew run with the built-in
// tables.
func DefaultOptions() Options {
	return Options{
		CrewCount:    1,
		HeaderWindow: DefaultHeaderWindow,
		Workers:      4,
	}
}

// Validate rejects option values with no sane interpretation.
func (o Options) Validate() error {
	if err := validateCrewCount(o.CrewCount); err != nil {
		return err
	}
	err := validation.ValidateStruct(&o,
		validation.Field(&o.HeaderWindow, validation.Required, validation.Min(1)),
		validation.Field(&o.Workers, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if o.Rates != nil {
		if err := o.Rates.Validate(); err != nil {
			return fmt.Errorf("invalid rate table: %w", err)
		}
	}
	return nil
}

// Extractor runs the extraction pipeline. Its rule and rate tables are
// read-only after construction, so one Extractor may serve concurrent runs.
type Extractor struct {
	opts       Options
	classifier *Classifier
	estimator  *Estimator
	logger     *slog.Logger
}

// NewExtractor validates opts and builds the lookup tables.
func NewExtractor(opts Options) (*Extractor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	all := make(RuleTable, 0, len(opts.ExtraRules)+len(rules))
	all = append(all, opts.ExtraRules...)
	all = append(all, rules...)

	rates := DefaultRates()
	if opts.Rates != nil {
		rates = rates.Merge(*opts.Rates)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Extractor{
		opts:       opts,
		classifier: NewClassifier(all),
		estimator:  NewEstimator(rates),
		logger:     logger,
	}, nil
}

// Classifier returns the classifier used by the extractor.
func (x *Extractor) Classifier() *Classifier { return x.classifier }

// Estimator returns the productivity estimator used by the extractor.
func (x *Extractor) Estimator() *Estimator { return x.estimator }

type sheetOutcome struct {
	report   SheetReport
	items    []LineItem
	rejected map[RejectReason]int
}

// Run extracts every sheet and aggregates the result. Unusable sheets and
// invalid rows are recorded, never fatal.
func (x *Extractor) Run(sheets []Sheet) (*ExtractionResult, error) {
	outcomes := make([]sheetOutcome, len(sheets))

	var g errgroup.Group
	if x.opts.Workers > 0 {
		g.SetLimit(x.opts.Workers)
	}
	for i := range sheets {
		g.Go(func() error {
			outcomes[i] = x.extractSheet(sheets[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := Summary{
		RejectedByReason: map[RejectReason]int{},
		SkippedSheets:    []SkippedSheet{},
		Sheets:           make([]SheetReport, 0, len(outcomes)),
	}
	items := []LineItem{}
	for _, o := range outcomes {
		for _, it := range o.items {
			it.ID = len(items) + 1
			items = append(items, it)
		}
		for reason, n := range o.rejected {
			summary.RejectedByReason[reason] += n
		}
		summary.RowsAboveData += o.report.RowsAboveData
		summary.RowsScanned += o.report.RowsScanned
		summary.RowsRejected += o.report.RowsRejected
		summary.ItemsAccepted += o.report.ItemsAccepted
		summary.Sheets = append(summary.Sheets, o.report)
		if o.report.Status == SheetSkipped {
			summary.SkippedSheets = append(summary.SkippedSheets, SkippedSheet{Sheet: o.report.Name, Reason: o.report.SkipReason})
		}
	}

	totals, err := Aggregate(items, x.opts.CrewCount)
	if err != nil {
		return nil, err
	}
	summary.Totals = totals

	x.logger.Info("boq extraction finished",
		"sheets", len(sheets),
		"skippedSheets", len(summary.SkippedSheets),
		"rowsScanned", summary.RowsScanned,
		"itemsAccepted", summary.ItemsAccepted,
		"totalCost", totals.TotalCost,
		"serialDays", totals.SerialDurationDays,
		"parallelDays", totals.ParallelDurationDays,
	)

	return &ExtractionResult{Items: items, Summary: summary}, nil
}

// extractSheet locates the columns of one sheet and extracts its rows.
// It touches no shared mutable state.
func (x *Extractor) extractSheet(sheet Sheet) sheetOutcome {
	out := sheetOutcome{
		report:   SheetReport{Name: sheet.Name},
		rejected: map[RejectReason]int{},
	}

	rows := make([][]Cell, len(sheet.Rows))
	var window [][]Cell
	var windowRows []int
	for i, raw := range sheet.Rows {
		rows[i] = NormalizeRow(raw)
		if len(window) < x.opts.HeaderWindow && !rowIsBlank(rows[i]) {
			window = append(window, rows[i])
			windowRows = append(windowRows, i)
		}
	}

	if len(window) == 0 {
		return x.skip(out, "sheet has no data")
	}

	loc, ok := LocateColumns(window)
	out.report.Confidence = loc.Confidence
	out.report.Columns = loc.Columns
	if !ok {
		return x.skip(out, missingFieldsReason(loc.Columns))
	}

	start := 0
	if loc.HeaderRow >= 0 {
		start = windowRows[loc.HeaderRow] + 1
		out.report.HeaderRow = start
		out.report.RowsAboveData = start
	}

	for i := start; i < len(rows); i++ {
		out.report.RowsScanned++
		item, reason, ok := ExtractRow(rows[i], loc.Columns, sheet.Name, i+1)
		if !ok {
			out.report.RowsRejected++
			out.rejected[reason]++
			continue
		}
		out.items = append(out.items, x.enrich(item))
	}
	out.report.ItemsAccepted = len(out.items)
	out.report.Status = SheetExtracted
	return out
}

func (x *Extractor) skip(out sheetOutcome, reason string) sheetOutcome {
	out.report.Status = SheetSkipped
	out.report.SkipReason = reason
	x.logger.Debug("boq sheet skipped", "sheet", out.report.Name, "reason", reason)
	return out
}

func missingFieldsReason(cm ColumnMap) string {
	var missing []string
	for _, f := range []Field{FieldDescription, FieldQuantity} {
		if !cm.has(f) {
			missing = append(missing, string(f))
		}
	}
	return "unusable sheet: no " + strings.Join(missing, " or ") + " column"
}

// enrich classifies the item and attaches its productivity estimate.
func (x *Extractor) enrich(it LineItem) LineItem {
	it.WorkType = x.classifier.Classify(it.FullDescription())
	if rate, ok := x.estimator.EstimateRate(it.WorkType, it.Unit); ok {
		days := DurationDays(it.Quantity, rate)
		it.ProductivityRate = &rate
		it.EstimatedDurationDays = &days
	}
	if x.opts.Detector != nil {
		it.Language = x.opts.Detector.DetectLanguage(it.FullDescription())
	}
	return it
}
