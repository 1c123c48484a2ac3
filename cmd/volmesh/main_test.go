package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/soypat/volmesh/render"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (*test.Hook, error) {
	t.Helper()
	log, hook := test.NewNullLogger()
	root := newRootCmd(log)
	root.SetArgs(args)
	return hook, root.Execute()
}

func TestMeshCommandSTL(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "sphere.stl")
	preview := filepath.Join(dir, "sphere.png")
	hook, err := execute(t, "mesh", "--verbose", "--shape", "sphere", "--voxel", "0.2",
		"--adaptivity", "0.05", "--out", out, "--preview", preview)
	require.NoError(t, err)

	fp, err := os.Open(out)
	require.NoError(t, err)
	defer fp.Close()
	tris, err := render.ReadSTL(fp)
	require.NoError(t, err)
	require.NotEmpty(t, tris)
	_, err = os.Stat(preview)
	require.NoError(t, err)

	var wrote *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "wrote "+out {
			wrote = e
		}
	}
	require.NotNil(t, wrote, "missing output log entry")
	vol := wrote.Data["volume"].(float64)
	// Clustered faces are chords of the sphere and cut into it.
	require.InDelta(t, 4*math.Pi/3, vol, 0.15*4*math.Pi/3)

	// Debug entries of the converter are kept at verbose level.
	var sawExtract, sawGrid bool
	for _, e := range hook.AllEntries() {
		if e.Level != logrus.DebugLevel {
			continue
		}
		if e.Data["quads"] != nil {
			sawExtract = true
		}
		if e.Message == "rasterized grid" {
			sawGrid = true
			require.Positive(t, e.Data["leaves"])
			require.NotZero(t, e.Data["dim"])
		}
	}
	require.True(t, sawExtract, "missing extraction debug entry")
	require.True(t, sawGrid, "missing grid debug entry")

	log, hook := test.NewNullLogger()
	root := newRootCmd(log)
	root.SetArgs([]string{"stat", out})
	require.NoError(t, root.Execute())
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, len(tris), entry.Data["triangles"])
}

func TestMeshCommandOBJConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "volmesh.toml")
	out := filepath.Join(dir, "torus.obj")
	err := os.WriteFile(cfgPath, []byte(`
shape = "torus"
size = 1.5
voxel = 0.5
resolution_mode = "size"
voxel_size = 0.25
out = "ignored.stl"
`), 0o644)
	require.NoError(t, err)

	_, err = execute(t, "mesh", "--config", cfgPath, "-o", out)
	require.NoError(t, err)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(b), "\nf ")
	_, err = os.Stat("ignored.stl")
	require.True(t, os.IsNotExist(err), "flag must override config output path")
}

func TestMeshCommandBolt(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bolt.stl")
	_, err := execute(t, "mesh", "--shape", "bolt", "--size", "20", "--voxel", "1", "--out", out)
	require.NoError(t, err)
	_, err = os.Stat(out)
	require.NoError(t, err)
}

func TestMeshCommandErrors(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"mesh", "--shape", "teapot"},
		{"mesh", "--out", filepath.Join(dir, "x.ply")},
		{"mesh", "--threshold", "5", "--out", filepath.Join(dir, "x.stl")},
		{"mesh", "--config", filepath.Join(dir, "missing.toml")},
		{"mesh", "extra-arg"},
		{"stat", filepath.Join(dir, "missing.stl")},
	} {
		_, err := execute(t, args...)
		require.Error(t, err, "%v", args)
	}
}
