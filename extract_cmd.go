package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"boqengine/boq"
	"boqengine/collections"
	"boqengine/config"
	"boqengine/services"
)

// extractFlags are the command line settings of the extract command.
type extractFlags struct {
	crews          int
	format         string
	delimiter      string
	rulesFile      string
	save           bool
	detectLanguage bool
}

func newExtractCmd(app core.App, cfg config.Config) *cobra.Command {
	flags := extractFlags{
		crews:     cfg.CrewCount,
		format:    "summary",
		rulesFile: cfg.RulesFile,
	}

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract BOQ line items from a workbook or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg
			c.CrewCount = flags.crews
			c.RulesFile = flags.rulesFile
			opts, err := c.Options(app.Logger())
			if err != nil {
				return err
			}
			if flags.detectLanguage {
				opts.Detector = boq.NewLinguaDetector()
			}

			res, err := extractFile(args[0], opts)
			if err != nil {
				return err
			}

			if flags.save {
				if !app.IsBootstrapped() {
					if err := app.Bootstrap(); err != nil {
						return err
					}
				}
				collections.Setup(app)
				run, err := collections.SaveRun(app, res, filepath.Base(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved run %s (%s)\n", run.GetString("run_key"), run.Id)
			}

			return writeResult(cmd.OutOrStdout(), filepath.Base(args[0]), res, flags)
		},
	}

	cmd.Flags().IntVar(&flags.crews, "crews", flags.crews, "number of crews working in parallel")
	cmd.Flags().StringVar(&flags.format, "format", flags.format, "output format: json, csv or summary")
	cmd.Flags().StringVar(&flags.delimiter, "delimiter", "", `field delimiter for csv output ("tab" for tabs)`)
	cmd.Flags().StringVar(&flags.rulesFile, "rules", flags.rulesFile, "YAML file with classification rules and rates")
	cmd.Flags().BoolVar(&flags.save, "save", false, "store the run in the database")
	cmd.Flags().BoolVar(&flags.detectLanguage, "detect-language", false, "tag each item with its description language")

	return cmd
}

// extractFile reads path and runs the engine over its sheets.
func extractFile(path string, opts boq.Options) (*boq.ExtractionResult, error) {
	x, err := boq.NewExtractor(opts)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets, err := services.ReadUpload(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return x.Run(sheets)
}

func writeResult(w io.Writer, name string, res *boq.ExtractionResult, flags extractFlags) error {
	switch strings.ToLower(flags.format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "csv":
		d, err := boq.ParseDelimiter(flags.delimiter)
		if err != nil {
			return err
		}
		return boq.WriteDelimited(w, res.Items, d)
	case "summary", "":
		writeSummary(w, name, res)
		return nil
	default:
		return fmt.Errorf("unknown format %q: use json, csv or summary", flags.format)
	}
}

// writeSummary prints a human readable report of a run.
func writeSummary(w io.Writer, name string, res *boq.ExtractionResult) {
	title := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)
	good := color.New(color.FgGreen)

	s := res.Summary
	title.Fprintf(w, "BOQ extraction: %s\n", name)
	if s.RowsAboveData > 0 {
		fmt.Fprintf(w, "  header rows   %d\n", s.RowsAboveData)
	}
	fmt.Fprintf(w, "  rows scanned  %d\n", s.RowsScanned)
	good.Fprintf(w, "  items         %d\n", s.ItemsAccepted)
	if s.RowsRejected > 0 {
		warn.Fprintf(w, "  rejected      %d\n", s.RowsRejected)
		for _, r := range []boq.RejectReason{boq.RejectEmpty, boq.RejectMissingDescription, boq.RejectNumericDescription, boq.RejectNonPositiveQuantity} {
			if n := s.RejectedByReason[r]; n > 0 {
				fmt.Fprintf(w, "    %-22s %d\n", r, n)
			}
		}
	}
	for _, sk := range s.SkippedSheets {
		warn.Fprintf(w, "  skipped sheet %q: %s\n", sk.Sheet, sk.Reason)
	}

	if len(s.Buckets) > 0 {
		fmt.Fprintln(w)
		title.Fprintln(w, "Work types")
		for _, b := range s.Buckets {
			fmt.Fprintf(w, "  %-14s %4d items %16s %7s %10s\n",
				b.WorkType, b.Count, services.FormatAmount(b.CostTotal),
				services.FormatShare(b.CostShare), services.FormatDays(b.SerialDurationDays))
		}
	}

	fmt.Fprintln(w)
	title.Fprintln(w, "Totals")
	fmt.Fprintf(w, "  cost          %s\n", services.FormatAmount(s.TotalCost))
	fmt.Fprintf(w, "  serial        %s\n", services.FormatDays(s.SerialDurationDays))
	fmt.Fprintf(w, "  parallel      %s (%d crews)\n", services.FormatDays(s.ParallelDurationDays), s.CrewCount)
	if s.UnestimatedItems > 0 {
		warn.Fprintf(w, "  %d items have no duration estimate\n", s.UnestimatedItems)
	}
}
