package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/pipeline"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestReadRequest_JSON(t *testing.T) {
	p := writeFile(t, "req.json", `{"datasets":[{"filename":"slope.tif","type":"numerical","chosen":true,"thresholds":[0,15]}],
		"target":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}`)

	req, err := readRequest(p)
	require.NoError(t, err)
	specs, err := req.ChosenSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "slope.tif", specs[0].ID)
	assert.Equal(t, model.Numerical{Low: 0, High: 15}, specs[0].Criterion)
}

func TestReadRequest_YAML(t *testing.T) {
	p := writeFile(t, "req.yaml", `
datasets:
  - identifier: landcover.tif
    type: categorical
    chosen: true
    classes: [1, 2, 5]
  - identifier: slope.tif
    type: numerical
    chosen: false
target:
  type: Polygon
  coordinates: [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]
`)

	req, err := readRequest(p)
	require.NoError(t, err)
	specs, err := req.ChosenSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, model.KindCategorical, specs[0].Criterion.Kind())
	assert.Equal(t, []int{1, 2, 5}, specs[0].Criterion.(model.Categorical).Classes())

	computeShapefile = ""
	area, err := computeTarget(req)
	require.NoError(t, err)
	assert.Equal(t, 1, area.NumPolygons())
}

func TestReadRequest_Errors(t *testing.T) {
	_, err := readRequest("")
	assert.Error(t, err)

	_, err = readRequest(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = readRequest(writeFile(t, "bad.yml", "datasets: [unclosed"))
	assert.True(t, eris.Is(err, model.ErrInvalidInput))

	_, err = readRequest(writeFile(t, "bad.json", "{"))
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}

func TestPrintOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	out := &pipeline.Output{
		URL:     "https://geoc-temp.s3.eu-central-1.amazonaws.com/a.tif",
		RunID:   "run-1",
		Summary: model.Summary{Height: 2, Width: 2, Suitable: 1, Unsuitable: 1, NoData: 2},
	}
	require.NoError(t, printOutput(cmd, out))

	var body map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &body))
	assert.Equal(t, out.URL, body["URL"])
	assert.Contains(t, stderr.String(), "2x2 grid: 1 suitable, 1 unsuitable, 2 no-data (50.0%")
}
