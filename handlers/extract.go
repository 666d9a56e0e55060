package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"boqengine/boq"
	"boqengine/collections"
	"boqengine/services"
)

// maxUploadSize bounds the multipart form held in memory.
const maxUploadSize = 32 << 20

// RunResponse is the JSON body returned for an extraction run.
type RunResponse struct {
	RunID      string `json:"runId,omitempty"`
	RunKey     string `json:"runKey,omitempty"`
	SourceName string `json:"sourceName"`
	*boq.ExtractionResult
}

// errorJSON writes {"error": msg} with the given status.
func errorJSON(e *core.RequestEvent, status int, msg string) error {
	return e.JSON(status, map[string]string{"error": msg})
}

// HandleExtract runs the extraction engine over an uploaded workbook.
// Form fields: file (required), crew_count (optional, overrides the
// configured crew count), persist (optional boolean).
// Route: POST /api/boq/extract
func HandleExtract(app core.App, base boq.Options) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(maxUploadSize); err != nil {
			return errorJSON(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return errorJSON(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		opts := base
		opts.Logger = app.Logger()
		if raw := strings.TrimSpace(e.Request.FormValue("crew_count")); raw != "" {
			crews, err := cast.ToIntE(raw)
			if err != nil {
				return errorJSON(e, http.StatusBadRequest, "crew_count must be a whole number")
			}
			opts.CrewCount = crews
		}
		persist, err := cast.ToBoolE(defaultString(e.Request.FormValue("persist"), "false"))
		if err != nil {
			return errorJSON(e, http.StatusBadRequest, "persist must be true or false")
		}

		x, err := boq.NewExtractor(opts)
		if err != nil {
			if errors.Is(err, boq.ErrInvalidCrewCount) {
				return errorJSON(e, http.StatusBadRequest, err.Error())
			}
			log.Printf("extract: bad engine options: %v", err)
			return errorJSON(e, http.StatusInternalServerError, "Extraction engine is misconfigured")
		}

		sheets, err := services.ReadUpload(file, header.Filename)
		if err != nil {
			if errors.Is(err, services.ErrUnsupportedFormat) {
				return errorJSON(e, http.StatusUnsupportedMediaType, err.Error())
			}
			log.Printf("extract: could not read %q: %v", header.Filename, err)
			return errorJSON(e, http.StatusBadRequest, "Could not read the uploaded file")
		}

		res, err := x.Run(sheets)
		if err != nil {
			log.Printf("extract: run failed for %q: %v", header.Filename, err)
			return errorJSON(e, http.StatusInternalServerError, "Extraction failed")
		}

		resp := RunResponse{SourceName: header.Filename, ExtractionResult: res}
		if persist {
			run, err := collections.SaveRun(app, res, header.Filename)
			if err != nil {
				return errorJSON(e, http.StatusInternalServerError, "Failed to save extraction run")
			}
			resp.RunID = run.Id
			resp.RunKey = run.GetString("run_key")
		}

		return e.JSON(http.StatusOK, resp)
	}
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
