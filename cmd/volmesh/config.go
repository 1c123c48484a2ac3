package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/deadsy/sdfx/obj"
	"github.com/soypat/volmesh/form3"
	"github.com/soypat/volmesh/grid"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds the parameters of a meshing run. It can be read from a TOML
// file, flags given on the command line take precedence.
type Config struct {
	// Shape is one of the names returned by shapeNames.
	Shape string `toml:"shape"`
	// Size is the characteristic length of the shape (radius, edge or major radius).
	Size float64 `toml:"size"`
	// Voxel is the world voxel size of the rasterized grid.
	Voxel float64 `toml:"voxel"`
	// HalfWidth is the narrow band half width in voxels.
	HalfWidth float64 `toml:"half_width"`

	ResolutionMode string  `toml:"resolution_mode"` // grid, size or amount
	VoxelSize      float64 `toml:"voxel_size"`
	VoxelAmount    float64 `toml:"voxel_amount"`

	Threshold  float64 `toml:"threshold"`
	Adaptivity float64 `toml:"adaptivity"`

	Out     string `toml:"out"`
	Preview string `toml:"preview"`
}

// DefaultConfig meshes a unit sphere at its native resolution.
func DefaultConfig() Config {
	return Config{
		Shape:          "sphere",
		Size:           1,
		Voxel:          0.1,
		HalfWidth:      3,
		ResolutionMode: "grid",
		Out:            "out.stl",
	}
}

// DecodeConfig reads TOML from r into c. Keys not present in r keep their
// value. Unknown keys are an error. Numeric keys accept integers and floats.
func DecodeConfig(r io.Reader, c *Config) error {
	var raw map[string]interface{}
	if _, err := toml.DecodeReader(r, &raw); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	fields := configFields()
	rv := reflect.ValueOf(c).Elem()
	var unknown []string
	for key, val := range raw {
		i, ok := fields[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if err := setConfigField(rv.Field(i), val); err != nil {
			return fmt.Errorf("config key %s: %w", key, err)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown config keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// configFields maps TOML keys to Config field indices.
func configFields() map[string]int {
	t := reflect.TypeOf(Config{})
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if key := t.Field(i).Tag.Get("toml"); key != "" {
			fields[key] = i
		}
	}
	return fields
}

func setConfigField(f reflect.Value, val interface{}) error {
	switch f.Kind() {
	case reflect.Float64:
		switch v := val.(type) {
		case int64:
			f.SetFloat(float64(v))
		case float64:
			f.SetFloat(v)
		default:
			return fmt.Errorf("want a number, got %T", val)
		}
	case reflect.String:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("want a string, got %T", val)
		}
		f.SetString(s)
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind())
	}
	return nil
}

// loadConfig decodes the file at path into c and then reapplies the flags
// set on the command line, which are bound to c's fields.
func loadConfig(fs *pflag.FlagSet, path string, c *Config) error {
	type setFlag struct{ name, value string }
	var changed []setFlag
	fs.Visit(func(f *pflag.Flag) {
		changed = append(changed, setFlag{f.Name, f.Value.String()})
	})
	fp, err := os.Open(path)
	if err != nil {
		return err
	}
	err = DecodeConfig(fp, c)
	fp.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, f := range changed {
		if err := fs.Set(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the rasterization and output parameters.
func (c Config) Validate() error {
	if _, ok := shapes[c.Shape]; !ok {
		return fmt.Errorf("unknown shape %q, want one of %s", c.Shape, strings.Join(shapeNames(), ", "))
	}
	for _, v := range []struct {
		name string
		val  float64
	}{{"size", c.Size}, {"voxel", c.Voxel}, {"half width", c.HalfWidth}} {
		if !(v.val > 0) || math.IsInf(v.val, 0) {
			return fmt.Errorf("%s must be finite and positive, got %g", v.name, v.val)
		}
	}
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return errors.New("threshold must be finite")
	}
	if math.IsNaN(c.Adaptivity) {
		return errors.New("adaptivity is NaN")
	}
	if _, err := c.Resolution(); err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(c.Out)); ext {
	case ".stl", ".obj":
	default:
		return fmt.Errorf("unsupported output format %q, want .stl or .obj", ext)
	}
	return nil
}

// Resolution returns the resampling policy selected by ResolutionMode.
func (c Config) Resolution() (grid.Resolution, error) {
	var res grid.Resolution
	switch c.ResolutionMode {
	case "", "grid":
		res = grid.NativeResolution()
	case "size":
		res = grid.VoxelSize(c.VoxelSize)
	case "amount":
		res = grid.VoxelAmount(c.VoxelAmount)
	default:
		return res, fmt.Errorf("unknown resolution mode %q, want grid, size or amount", c.ResolutionMode)
	}
	return res, res.Validate()
}

// Grid rasterizes the configured shape into a level set grid.
func (c Config) Grid() (*grid.Grid[float32], error) {
	fn, ok := shapes[c.Shape]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q", c.Shape)
	}
	g, err := fn(c.Size, c.Voxel, c.HalfWidth*c.Voxel)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", c.Shape, err)
	}
	g.SetName(c.Shape)
	return g, nil
}

type shapeFunc func(size, voxel, halfWidth float64) (*grid.Grid[float32], error)

func formShape(fn func(size float64) (grid.SDF, error)) shapeFunc {
	return func(size, voxel, halfWidth float64) (*grid.Grid[float32], error) {
		s, err := fn(size)
		if err != nil {
			return nil, err
		}
		return grid.FromSDF(s, voxel, halfWidth), nil
	}
}

var shapes = map[string]shapeFunc{
	"sphere": formShape(form3.Sphere),
	"box": formShape(func(size float64) (grid.SDF, error) {
		return form3.Box(r3.Vec{X: size, Y: size, Z: size}, size/10)
	}),
	"cylinder": formShape(func(size float64) (grid.SDF, error) {
		return form3.Cylinder(2*size, size, 0)
	}),
	"capsule": formShape(func(size float64) (grid.SDF, error) {
		return form3.Capsule(3*size, size)
	}),
	"torus": formShape(func(size float64) (grid.SDF, error) {
		return form3.Torus(size, size/3)
	}),
	// Sphere with a cylindrical bore along z.
	"bead": formShape(func(size float64) (grid.SDF, error) {
		s, err := form3.Sphere(size)
		if err != nil {
			return nil, err
		}
		hole, err := form3.Cylinder(3*size, size/3, 0)
		if err != nil {
			return nil, err
		}
		return form3.Difference(s, hole)
	}),
	"bolt": func(size, voxel, halfWidth float64) (*grid.Grid[float32], error) {
		s, err := obj.Bolt(&obj.BoltParms{
			Thread:      "npt_1/2",
			Style:       "hex",
			Tolerance:   0.1,
			TotalLength: size,
			ShankLength: size / 2,
		})
		if err != nil {
			return nil, err
		}
		return grid.FromSDFX(s, voxel, halfWidth), nil
	},
}

func shapeNames() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
