package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodesYAML = `
nodes:
  - rail_name: gantry
    ordering: 0
    position: {x: 0, y: 0, z: 0}
    total_time: 10
  - rail_name: gantry
    ordering: 1
    position: {x: 10, y: 0, z: 0}
  - rail_name: crane
    ordering: 2
    position: {x: 0, y: 5, z: 0}
  - rail_name: crane
    ordering: 1
    position: {x: 0, y: 0, z: 0}
`

// bakeFixture writes the sample nodes and bakes them into a fresh rail root.
func bakeFixture(t *testing.T, ext string) string {
	t.Helper()
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.yaml")
	require.NoError(t, os.WriteFile(nodes, []byte(nodesYAML), 0o644))

	root := filepath.Join(dir, "rails")
	var stdout, stderr bytes.Buffer
	err := run([]string{"bake", "--root", root, "--ext", ext, nodes}, nil, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Equal(t, "crane"+ext+"\ngantry"+ext+"\n", stdout.String())
	return root
}

func TestBakeAndInspect(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{".rail", ".rail.zst", ".rail.lz4"} {
		ext := ext
		t.Run(ext, func(t *testing.T) {
			t.Parallel()
			root := bakeFixture(t, ext)

			var stdout, stderr bytes.Buffer
			err := run([]string{"inspect", "--root", root, "--all"}, nil, &stdout, &stderr)
			require.NoError(t, err, stderr.String())

			out := stdout.String()
			assert.Contains(t, out, "gantry"+ext)
			assert.Contains(t, out, "name       gantry (ordering 0)")
			assert.Contains(t, out, "duration   10.000 s")
			assert.Contains(t, out, "range y    [-1, 1]")
			assert.Contains(t, out, "name       crane (ordering 1)")
			assert.Contains(t, out, "duration   5.000 s")
			assert.Contains(t, stderr.String(), "rail loaded")
		})
	}
}

func TestInspect_Diag(t *testing.T) {
	t.Parallel()

	root := bakeFixture(t, ".rail.zst")
	var stdout, stderr bytes.Buffer
	err := run([]string{"inspect", "--root", root, "--diag", "gantry.rail.zst"}, nil, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "nodes      2")
	assert.Contains(t, out, "bounds     (-1, -1, -1) .. (11, 1, 1)")
	assert.Contains(t, out, `"gantry"`, "diagnostic notation carries the rail name")
}

func TestSample(t *testing.T) {
	t.Parallel()

	root := bakeFixture(t, ".rail")
	var stdout, stderr bytes.Buffer
	err := run([]string{"sample", "--root", root, "-n", "11", "gantry.rail"}, nil, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	rows, err := csv.NewReader(&stdout).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assert.Equal(t, []string{"t", "x", "y", "z", "vx", "vy", "vz"}, rows[0])
	assert.Equal(t, "5.000000", rows[6][0])
	assert.True(t, strings.HasPrefix(rows[6][1], "5.00") || strings.HasPrefix(rows[6][1], "4.99"), rows[6][1])
}

func TestPlot(t *testing.T) {
	t.Parallel()

	root := bakeFixture(t, ".rail")
	out := t.TempDir()
	var stdout, stderr bytes.Buffer
	err := run([]string{"plot", "--root", root, "--out", out, "-n", "20", "crane.rail"}, nil, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	for _, name := range []string{"crane-plan.png", "crane-elevation.png"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestSimulate_Stdin(t *testing.T) {
	t.Parallel()

	root := bakeFixture(t, ".rail")
	input := `{"simulation_meta":{"simulation_id":"cli","run_time":2,"time_step":1},
	           "followers":[{"entity_id":"cart","rail_id":"gantry.rail"}]}`
	var stdout, stderr bytes.Buffer
	err := run([]string{"simulate", "--root", root}, strings.NewReader(input), &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), `"simulation_id":"cli"`)
	assert.Contains(t, stdout.String(), `"entity_id":"cart"`)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var stdout, stderr bytes.Buffer

	assert.ErrorContains(t, run([]string{"frobnicate"}, nil, &stdout, &stderr), "unknown command")
	assert.ErrorContains(t, run([]string{"inspect", "--root", root}, nil, &stdout, &stderr), "no rail ids")
	assert.ErrorContains(t, run([]string{"inspect", "--root", root, "missing.rail"}, nil, &stdout, &stderr), "rail load failed")
	assert.ErrorContains(t, run([]string{"bake", "--root", root}, nil, &stdout, &stderr), "no node files")
	assert.ErrorContains(t, run([]string{"sample", "--root", root}, nil, &stdout, &stderr), "exactly one")
	assert.NoError(t, run(nil, nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Commands:")
}
