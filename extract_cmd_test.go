package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pocketbase/pocketbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqengine/boq"
	"boqengine/collections"
	"boqengine/config"
	"boqengine/testhelpers"
)

const sampleCSV = "Item,Description,Unit,Qty,Rate,Amount\n" +
	"1,Excavation for foundations,m3,250,30,7500\n" +
	"2,Emulsion paint to internal walls,m2,400,12,4800\n" +
	"3,Contingency,LS,0,0,0\n"

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func runCmd(t *testing.T, app *pocketbase.PocketBase, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	cmd := newExtractCmd(app, config.Default())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtractCmd_Summary(t *testing.T) {
	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: t.TempDir()})
	path := writeTemp(t, "site.csv", []byte(sampleCSV))

	out, err := runCmd(t, app, path, "--crews", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "BOQ extraction: site.csv")
	assert.Contains(t, out, "header rows   1")
	assert.Contains(t, out, "non-positive-quantity")
	assert.Contains(t, out, "earthworks")
	assert.Contains(t, out, "12,300.00")
	assert.Contains(t, out, "(2 crews)")
}

func TestExtractCmd_JSON(t *testing.T) {
	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: t.TempDir()})
	path := writeTemp(t, "site.csv", []byte(sampleCSV))

	out, err := runCmd(t, app, path, "--format", "json")
	require.NoError(t, err)

	var res boq.ExtractionResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 12300.0, res.Summary.TotalCost)
	assert.Equal(t, 1, res.Summary.RowsRejected)
}

func TestExtractCmd_CSVWorkbook(t *testing.T) {
	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: t.TempDir()})
	path := writeTemp(t, "tower.xlsx", testhelpers.BuildWorkbook(t, testhelpers.SampleSheets()))

	out, err := runCmd(t, app, path, "--format", "csv", "--delimiter", ";")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, strings.Join(boq.TabularHeader, ";"), lines[0])
}

func TestExtractCmd_Errors(t *testing.T) {
	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: t.TempDir()})
	csvPath := writeTemp(t, "site.csv", []byte(sampleCSV))

	tests := []struct {
		name string
		args []string
	}{
		{"no file", nil},
		{"missing file", []string{filepath.Join(t.TempDir(), "nope.csv")}},
		{"unsupported extension", []string{writeTemp(t, "bill.pdf", []byte("%PDF"))}},
		{"zero crews", []string{csvPath, "--crews", "0"}},
		{"unknown format", []string{csvPath, "--format", "xml"}},
		{"bad delimiter", []string{csvPath, "--format", "csv", "--delimiter", "ab"}},
		{"missing rules file", []string{csvPath, "--rules", filepath.Join(t.TempDir(), "rules.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, app, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestExtractCmd_Save(t *testing.T) {
	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: t.TempDir()})
	path := writeTemp(t, "site.csv", []byte(sampleCSV))

	_, err := runCmd(t, app, path, "--save", "--format", "json")
	require.NoError(t, err)

	runs, err := collections.RecentRuns(app, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "site.csv", runs[0].GetString("source_name"))
	assert.Equal(t, 2, runs[0].GetInt("items_accepted"))
}
