package grid

import (
	"math"
	"testing"

	"github.com/soypat/volmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestResampleNative(t *testing.T) {
	g := FromSDF(sphere{radius: 1}, 0.1, 0.3)
	got := Resample(g, NativeResolution())
	if got != g {
		t.Fatal("native resolution must return the input grid")
	}
	if !got.Transform().Equal(g.Transform(), 0) || got.VoxelSize() != g.VoxelSize() {
		t.Error("native resolution changed the transform")
	}
	var zero Resolution
	if Resample(g, zero) != g {
		t.Error("zero value resolution must behave as native")
	}
}

func TestResampleVoxelSize(t *testing.T) {
	const tol = 1e-9
	g := FromSDF(sphere{radius: 1}, 0.1, 0.3)
	before := g.ActiveVoxelCount()
	for _, size := range []float64{0.05, 0.1, 0.2, 0.13} {
		r := Resample(g, VoxelSize(size))
		if r == g {
			t.Fatalf("voxel size %g: expected new grid", size)
		}
		if vs := r.VoxelSize(); !d3.EqualWithin(vs, d3.Elem(size), tol) {
			t.Errorf("voxel size %g: resampled voxel size %v", size, vs)
		}
		if r.Class() != g.Class() || r.Background() != g.Background() {
			t.Errorf("voxel size %g: metadata not carried over", size)
		}
		// Resampled values approximate the distance field near the surface.
		r.ForEachActive(func(c Coord, v float32) {
			p := r.Transform().IndexToWorld(c.Vec())
			want := r3.Norm(p) - 1
			if math.Abs(want) < 0.15 && math.Abs(float64(v)-want) > 0.02 {
				t.Errorf("voxel size %g: value at %v got %g. want %g", size, p, v, want)
			}
		})
	}
	if g.ActiveVoxelCount() != before {
		t.Error("resampling modified the input grid")
	}
}

func TestResampleVoxelAmount(t *testing.T) {
	g := FromSDF(sphere{radius: 1.5}, 0.1, 0.3)
	for _, amount := range []float64{10, 20, 45} {
		r := Resample(g, VoxelAmount(amount))
		wb := d3.Box(r.Transform().IndexToWorldBox(r.ActiveBounds()))
		got := d3.Max(wb.Size()) / d3.Max(r.VoxelSize())
		if math.Abs(got-amount) > 1.5 {
			t.Errorf("voxel amount %g: extent/voxel size got %g", amount, got)
		}
	}
}

func TestResampleDegenerate(t *testing.T) {
	empty := New[float32](1, LinearTransform(0.5))
	if Resample(empty, VoxelAmount(10)) != empty {
		t.Error("empty grid must not be resampled for voxel amount")
	}
	single := New[float32](1, LinearTransform(0.5))
	single.Set(Coord{2, 2, 2}, -1)
	if Resample(single, VoxelAmount(10)) != single {
		t.Error("zero extent grid must not be resampled for voxel amount")
	}
	if r := Resample(empty, VoxelSize(0.25)); r == empty || r.ActiveVoxelCount() != 0 {
		t.Error("empty grid with voxel size resolution should produce new empty grid")
	}
}

func TestResolutionFactorPanics(t *testing.T) {
	g := FromSDF(sphere{radius: 1}, 0.1, 0.3)
	for _, res := range []Resolution{VoxelSize(0), VoxelSize(-1), VoxelAmount(-2), VoxelSize(math.NaN())} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected panic", res)
				}
			}()
			ResolutionFactor(g, res)
		}()
	}
	if err := VoxelSize(-1).Validate(); err == nil {
		t.Error("expected validation error")
	}
	if err := VoxelAmount(32).Validate(); err != nil {
		t.Error(err)
	}
}

func TestResolutionFactor(t *testing.T) {
	xf, err := NewTransform(r3.Vec{X: 0.1, Y: 0.2, Z: 0.4}, r3.Vec{}, r3.Rotation{})
	if err != nil {
		t.Fatal(err)
	}
	g := New[float64](1, xf)
	g.Set(Coord{0, 0, 0}, 0)
	g.Set(Coord{10, 10, 10}, 0)
	// Largest voxel size component is compared against the desired size.
	f, ok := ResolutionFactor(g, VoxelSize(0.2))
	if !ok || math.Abs(f-2) > 1e-12 {
		t.Errorf("voxel size factor got (%g,%v). want (2,true)", f, ok)
	}
	// Largest world extent is 10*0.4 = 4.
	f, ok = ResolutionFactor(g, VoxelAmount(8))
	if !ok || math.Abs(f-0.8) > 1e-12 {
		t.Errorf("voxel amount factor got (%g,%v). want (0.8,true)", f, ok)
	}
	if _, ok := ResolutionFactor(g, NativeResolution()); ok {
		t.Error("native resolution has no factor")
	}
}

func TestScaleResolutionIntegerGrid(t *testing.T) {
	g := New[int32](0, LinearTransform(1))
	for i := 0; i < 4; i++ {
		g.Set(Coord{i, 0, 0}, int32(10*i))
	}
	r := ScaleResolution(g, 2)
	if vs := r.VoxelSize(); !d3.EqualWithin(vs, d3.Elem(0.5), 1e-12) {
		t.Fatalf("voxel size got %v. want 0.5", vs)
	}
	// Target voxel 3 samples source position 1.5.
	if v, on := r.Lookup(Coord{3, 0, 0}); !on || v != 15 {
		t.Errorf("interpolated value got (%d,%v). want (15,true)", v, on)
	}
	// Same world position in both grids.
	pw := r.Transform().IndexToWorld(Coord{4, 0, 0}.Vec())
	if !d3.EqualWithin(pw, g.Transform().IndexToWorld(Coord{2, 0, 0}.Vec()), 1e-12) {
		t.Errorf("world positions differ: %v", pw)
	}
}
