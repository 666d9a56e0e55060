package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"boqengine/boq"
	"boqengine/collections"
	"boqengine/services"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

// exportFilename names a download after the source file and the run key.
func exportFilename(stored *collections.StoredRun, ext string) string {
	base := strings.TrimSuffix(filepath.Base(stored.SourceName), filepath.Ext(stored.SourceName))
	if base == "" || base == "." {
		base = "run"
	}
	key := stored.Key
	if len(key) > 8 {
		key = key[:8]
	}
	return fmt.Sprintf("BOQ_%s_%s.%s", sanitizeFilename(base), key, ext)
}

// HandleRunExport returns a handler that downloads a stored run as csv,
// excel or pdf. The csv export accepts a ?delimiter= query parameter.
// Route: GET /api/boq/runs/{id}/export/{format}
func HandleRunExport(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		format := strings.ToLower(e.Request.PathValue("format"))
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing run ID")
		}

		var delimiter rune
		switch format {
		case "csv":
			d, err := boq.ParseDelimiter(e.Request.URL.Query().Get("delimiter"))
			if err != nil {
				return e.String(http.StatusBadRequest, err.Error())
			}
			delimiter = d
		case "excel", "pdf":
		default:
			return e.String(http.StatusBadRequest, "Unknown export format: use csv, excel or pdf")
		}

		stored, err := collections.LoadRun(app, id)
		if err != nil {
			log.Printf("export_%s: %v", format, err)
			return e.String(http.StatusNotFound, "Run not found")
		}

		var (
			body        []byte
			contentType string
			ext         string
		)
		switch format {
		case "csv":
			var buf bytes.Buffer
			if err := boq.WriteDelimited(&buf, stored.Result.Items, delimiter); err != nil {
				log.Printf("export_csv: failed to write: %v", err)
				return e.String(http.StatusInternalServerError, "Failed to generate CSV file")
			}
			body, contentType, ext = buf.Bytes(), "text/csv; charset=utf-8", "csv"
		case "excel":
			data := services.NewReportData("", stored.Key, stored.SourceName, stored.Created, stored.Result)
			body, err = services.GenerateExcel(data)
			if err != nil {
				log.Printf("export_excel: failed to generate: %v", err)
				return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
			}
			contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
		case "pdf":
			data := services.NewReportData("", stored.Key, stored.SourceName, stored.Created, stored.Result)
			body, err = services.GeneratePDF(data)
			if err != nil {
				log.Printf("export_pdf: failed to generate: %v", err)
				return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
			}
			contentType, ext = "application/pdf", "pdf"
		}

		e.Response.Header().Set("Content-Type", contentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(stored, ext)))
		e.Response.Write(body)
		return nil
	}
}
