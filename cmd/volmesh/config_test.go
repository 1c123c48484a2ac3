package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/volmesh/grid"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfig(t *testing.T) {
	c := DefaultConfig()
	err := DecodeConfig(strings.NewReader(`
shape = "torus"
size = 2.5
resolution_mode = "amount"
voxel_amount = 40
adaptivity = 0.25
out = "torus.obj"
`), &c)
	require.NoError(t, err)
	require.Equal(t, "torus", c.Shape)
	require.Equal(t, 2.5, c.Size)
	require.Equal(t, 0.25, c.Adaptivity)
	require.Equal(t, "torus.obj", c.Out)
	// Keys absent from the file keep their defaults.
	require.Equal(t, 0.1, c.Voxel)
	require.Equal(t, 3.0, c.HalfWidth)

	res, err := c.Resolution()
	require.NoError(t, err)
	require.Equal(t, grid.ResolutionVoxelAmount, res.Mode())
	require.Equal(t, 40.0, res.Value())
	require.NoError(t, c.Validate())
}

func TestDecodeConfigIntegers(t *testing.T) {
	c := DefaultConfig()
	err := DecodeConfig(strings.NewReader("size = 2\nvoxel_amount = 64\nthreshold = -1\nvoxel = 0.5\n"), &c)
	require.NoError(t, err)
	require.Equal(t, 2.0, c.Size)
	require.Equal(t, 64.0, c.VoxelAmount)
	require.Equal(t, -1.0, c.Threshold)
	require.Equal(t, 0.5, c.Voxel)
}

func TestDecodeConfigErrors(t *testing.T) {
	c := DefaultConfig()
	err := DecodeConfig(strings.NewReader("shape = \"sphere\"\nvoxels = 3\n"), &c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "voxels")

	err = DecodeConfig(strings.NewReader("size = \"big\""), &c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "size")

	err = DecodeConfig(strings.NewReader("shape = 3"), &c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "shape")
}

func TestConfigResolution(t *testing.T) {
	for _, test := range []struct {
		mode    string
		size    float64
		amount  float64
		want    grid.ResolutionMode
		wantErr bool
	}{
		{mode: "", want: grid.ResolutionGrid},
		{mode: "grid", want: grid.ResolutionGrid},
		{mode: "size", size: 0.2, want: grid.ResolutionVoxelSize},
		{mode: "amount", amount: 32, want: grid.ResolutionVoxelAmount},
		{mode: "size", wantErr: true},
		{mode: "amount", amount: -1, wantErr: true},
		{mode: "voxels", wantErr: true},
	} {
		c := DefaultConfig()
		c.ResolutionMode, c.VoxelSize, c.VoxelAmount = test.mode, test.size, test.amount
		res, err := c.Resolution()
		if test.wantErr {
			require.Error(t, err, "mode %q", test.mode)
			continue
		}
		require.NoError(t, err, "mode %q", test.mode)
		require.Equal(t, test.want, res.Mode())
	}
}

func TestConfigValidate(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(c *Config)
		msg    string
	}{
		{"shape", func(c *Config) { c.Shape = "teapot" }, "unknown shape"},
		{"size", func(c *Config) { c.Size = 0 }, "size"},
		{"voxel", func(c *Config) { c.Voxel = -0.1 }, "voxel"},
		{"half width", func(c *Config) { c.HalfWidth = 0 }, "half width"},
		{"format", func(c *Config) { c.Out = "mesh.ply" }, ".ply"},
		{"resolution", func(c *Config) { c.ResolutionMode = "size" }, "voxel size"},
	} {
		c := DefaultConfig()
		test.modify(&c)
		err := c.Validate()
		require.Error(t, err, test.name)
		require.Contains(t, err.Error(), test.msg, test.name)
	}
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volmesh.toml")
	err := os.WriteFile(path, []byte("shape = \"capsule\"\nsize = 2\nthreshold = 0.1\n"), 0o644)
	require.NoError(t, err)

	c := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVar(&c.Shape, "shape", c.Shape, "")
	fs.Float64Var(&c.Size, "size", c.Size, "")
	fs.Float64Var(&c.Threshold, "threshold", c.Threshold, "")
	require.NoError(t, fs.Parse([]string{"--size=3.5"}))

	require.NoError(t, loadConfig(fs, path, &c))
	require.Equal(t, "capsule", c.Shape)
	require.Equal(t, 3.5, c.Size, "flag must take precedence over file")
	require.Equal(t, 0.1, c.Threshold)

	require.Error(t, loadConfig(fs, filepath.Join(t.TempDir(), "missing.toml"), &c))
}

func TestShapesBuild(t *testing.T) {
	names := shapeNames()
	require.Contains(t, names, "sphere")
	require.Contains(t, names, "bolt")
	for _, name := range names {
		if name == "bolt" {
			continue // Needs a length fitting the thread, see TestMeshCommandBolt.
		}
		c := DefaultConfig()
		c.Shape, c.Voxel = name, 0.25
		g, err := c.Grid()
		require.NoError(t, err, name)
		require.Equal(t, name, g.Name())
		require.NotZero(t, g.ActiveVoxelCount(), name)
	}
}
