package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"boqengine/boq"
	"boqengine/collections"
	"boqengine/config"
	"boqengine/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: cfg.DataDir,
	})

	app.RootCmd.AddCommand(newExtractCmd(app, cfg))

	// Create collections on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		opts, err := cfg.Options(app.Logger())
		if err != nil {
			return err
		}
		opts.Detector = boq.NewLinguaDetector()

		// ── Extraction ───────────────────────────────────────────
		se.Router.POST("/api/boq/extract", handlers.HandleExtract(app, opts))

		// ── Stored runs ──────────────────────────────────────────
		se.Router.GET("/api/boq/runs", handlers.HandleRunList(app))
		se.Router.GET("/api/boq/runs/{id}/export/{format}", handlers.HandleRunExport(app))
		se.Router.GET("/api/boq/runs/{id}", handlers.HandleRunView(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
