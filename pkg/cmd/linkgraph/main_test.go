package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/linkage-graph-service/pkg/models"
	"github.com/gilchrisn/linkage-graph-service/pkg/result"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunSampleText(t *testing.T) {
	out, _, err := runCLI(t, "-sample")
	require.NoError(t, err)

	assert.Contains(t, out, "Graph Summary")
	assert.Contains(t, out, "Connection Analysis")
	assert.Contains(t, out, "ab77777")
}

func TestRunSampleJSON(t *testing.T) {
	out, _, err := runCLI(t, "-sample", "-format", "json", "-layout", "circular", "-top-k", "2")
	require.NoError(t, err)

	var resp result.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 8, resp.Summary.NodeCount)
	assert.Equal(t, models.LayoutCircular, resp.Layout.Algorithm)
	assert.Len(t, resp.Summary.TopK, 2)
	assert.Equal(t, "ab77777", resp.Summary.TopK[0].ID)
}

func TestRunCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,x\n2,y\n1,x\n"), 0644))

	out, _, err := runCLI(t, "-csv", path, "-format", "json", "-layout", "mds")
	require.NoError(t, err)

	var resp result.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 4, resp.Summary.NodeCount)
	assert.Equal(t, 2, resp.Summary.EdgeCount)
	assert.Equal(t, 2, resp.Summary.ComponentCount)
	assert.InDelta(t, 1.0/3.0, resp.Summary.Density, 1e-12)
}

func TestRunRequestFileToOutput(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "request.yaml")
	require.NoError(t, os.WriteFile(reqPath, []byte(`
fields:
  - field_id: a
  - field_id: b
values:
  a: ["p", "q"]
  b: ["r", "r"]
visualization:
  layout: kamada_kawai
`), 0644))

	outPath := filepath.Join(dir, "nested", "report.json")
	out, _, err := runCLI(t, "-request", reqPath, "-format", "json", "-out", outPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var resp result.Response
	require.NoError(t, json.Unmarshal(data, &resp))
	r, ok := resp.Node("r")
	require.True(t, ok)
	assert.Equal(t, 2, r.Degree)
	assert.Equal(t, 1.0, r.DegreeCentrality)
	assert.Equal(t, models.LayoutKamadaKawai, resp.Layout.Algorithm)
}

func TestRunInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no source", nil},
		{"two sources", []string{"-sample", "-csv", "x.csv"}},
		{"bad format", []string{"-sample", "-format", "xml"}},
		{"unknown flag", []string{"-sample", "-colour", "red"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestRunValidationError(t *testing.T) {
	_, _, err := runCLI(t, "-sample", "-layout", "hierarchical", "-spacing", "-2")
	require.Error(t, err)

	var verrs models.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.ElementsMatch(t, []string{"visualization.layout", "visualization.spacing"}, verrs.Fields())
}

func TestRunFailedAnalysisLeavesNoOutputFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "report.txt")

	_, _, err := runCLI(t, "-sample", "-spacing", "-2", "-out", outPath)
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}
