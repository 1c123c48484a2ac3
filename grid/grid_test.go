package grid

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	"github.com/soypat/volmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

type sphere struct {
	center r3.Vec
	radius float64
}

func (s sphere) Evaluate(p r3.Vec) float64 { return r3.Norm(r3.Sub(p, s.center)) - s.radius }

func (s sphere) Bounds() r3.Box {
	r := d3.Elem(s.radius)
	return r3.Box{Min: r3.Sub(s.center, r), Max: r3.Add(s.center, r)}
}

func TestGridSetGet(t *testing.T) {
	g := New[float32](3, LinearTransform(1))
	coords := []Coord{{0, 0, 0}, {-1, -1, -1}, {7, 8, -9}, {-8, 0, 15}}
	for i, c := range coords {
		g.Set(c, float32(i))
	}
	for i, c := range coords {
		v, on := g.Lookup(c)
		if !on || v != float32(i) {
			t.Errorf("voxel %v: got (%v,%v). want (%v,true)", c, v, on, i)
		}
	}
	if got := g.Get(Coord{100, 100, 100}); got != 3 {
		t.Errorf("background read got %v. want 3", got)
	}
	// Unset voxel in allocated leaf reads background and is inactive.
	if v, on := g.Lookup(Coord{1, 0, 0}); on || v != 3 {
		t.Errorf("unset voxel got (%v,%v). want (3,false)", v, on)
	}
	if n := g.ActiveVoxelCount(); n != len(coords) {
		t.Errorf("active voxel count got %d. want %d", n, len(coords))
	}
	bb := g.ActiveBounds()
	want := CoordBox{Min: Coord{-8, -1, -9}, Max: Coord{7, 8, 15}}
	if bb != want {
		t.Errorf("active bounds got %v. want %v", bb, want)
	}

	g.SetActiveState(Coord{7, 8, -9}, false)
	if g.IsActive(Coord{7, 8, -9}) || g.Get(Coord{7, 8, -9}) != 2 {
		t.Error("deactivating voxel must keep value and clear active state")
	}
	g.SetValueOff(Coord{0, 0, 0}, -5)
	if v, on := g.Lookup(Coord{0, 0, 0}); on || v != -5 {
		t.Errorf("SetValueOff got (%v,%v). want (-5,false)", v, on)
	}
}

func TestGridForEachActiveOrder(t *testing.T) {
	g := New[int32](0, LinearTransform(1))
	g.Set(Coord{9, 0, 0}, 1)
	g.Set(Coord{-9, 0, 0}, 2)
	g.Set(Coord{0, 0, 1}, 3)
	g.Set(Coord{0, 0, 0}, 4)
	var got []Coord
	g.ForEachActive(func(c Coord, v int32) { got = append(got, c) })
	want := []Coord{{-9, 0, 0}, {0, 0, 0}, {0, 0, 1}, {9, 0, 0}}
	if len(got) != len(want) {
		t.Fatalf("got %v. want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v. want %v", got, want)
		}
	}
}

func TestGridEmptyBounds(t *testing.T) {
	g := New[float64](0, LinearTransform(0.5))
	if !g.ActiveBounds().Empty() {
		t.Error("empty grid must have empty active bounds")
	}
	g.SetValueOff(Coord{1, 2, 3}, 1)
	if !g.ActiveBounds().Empty() {
		t.Error("inactive voxels must not contribute to active bounds")
	}
	if d := g.ActiveBounds().Dim(); d != (Coord{}) {
		t.Errorf("empty bounds dim got %v. want zero", d)
	}
	g.Set(Coord{leafDim + 1, 2, 3}, 1)
	g.Set(Coord{2, 3, 5}, 1)
	if d := g.ActiveBounds().Dim(); d != (Coord{leafDim, 2, 3}) {
		t.Errorf("active bounds dim got %v. want %v", d, Coord{leafDim, 2, 3})
	}
	if n := g.LeafCount(); n != 2 {
		t.Errorf("leaf count got %d. want 2", n)
	}
}

func TestValueTypeTags(t *testing.T) {
	xf := LinearTransform(1)
	for _, test := range []struct {
		g    Base
		want ValueType
	}{
		{New[float32](0, xf), TypeFloat},
		{New[float64](0, xf), TypeDouble},
		{New[int32](0, xf), TypeInt32},
		{New[int64](0, xf), TypeInt64},
		{New[bool](false, xf), TypeBool},
		{New[Vec3f](Vec3f{}, xf), TypeVec3f},
		{New[Vec3d](Vec3d{}, xf), TypeVec3d},
		{New[Vec3i](Vec3i{}, xf), TypeVec3i},
	} {
		if got := test.g.ValueType(); got != test.want {
			t.Errorf("got value type %s. want %s", got, test.want)
		}
	}
}

func TestTransform(t *testing.T) {
	const tol = 1e-12
	xf := LinearTransform(0.25)
	if vs := xf.VoxelSize(); !d3.EqualWithin(vs, d3.Elem(0.25), tol) {
		t.Errorf("voxel size got %v. want 0.25", vs)
	}
	rot := r3.NewRotation(math.Pi/3, r3.Vec{X: 1, Y: 1})
	xf, err := NewTransform(r3.Vec{X: 0.5, Y: 1, Z: 2}, r3.Vec{X: 3, Y: -1, Z: 10}, rot)
	if err != nil {
		t.Fatal(err)
	}
	if vs := xf.VoxelSize(); !d3.EqualWithin(vs, r3.Vec{X: 0.5, Y: 1, Z: 2}, 1e-9) {
		t.Errorf("rotated voxel size got %v", vs)
	}
	for _, p := range []r3.Vec{{}, {X: 1, Y: 2, Z: 3}, {X: -4.5, Y: 0.25, Z: 9}} {
		back := xf.WorldToIndex(xf.IndexToWorld(p))
		if !d3.EqualWithin(back, p, 1e-9) {
			t.Errorf("index->world->index got %v. want %v", back, p)
		}
	}
	if _, err := NewTransform(r3.Vec{X: 1, Y: 0, Z: 1}, r3.Vec{}, r3.Rotation{}); err == nil {
		t.Error("expected error for zero voxel size component")
	}
	if _, err := TransformFromMatrix(make([]float64, 16)); err == nil {
		t.Error("expected error for singular matrix")
	}
	pre := LinearTransform(2).PreScale(d3.Elem(0.5))
	if !pre.Equal(LinearTransform(1), tol) {
		t.Error("pre-scaled transform mismatch")
	}
}

func TestBoxSample(t *testing.T) {
	g := New[float64](0, LinearTransform(1))
	// Linear field is reproduced exactly by trilinear interpolation.
	f := func(c Coord) float64 { return 2*float64(c[0]) - float64(c[1]) + 0.5*float64(c[2]) }
	for i := -2; i <= 2; i++ {
		for j := -2; j <= 2; j++ {
			for k := -2; k <= 2; k++ {
				c := Coord{i, j, k}
				g.Set(c, f(c))
			}
		}
	}
	for _, p := range []r3.Vec{{X: 0.5, Y: 0.5, Z: 0.5}, {X: -1.25, Y: 0.75, Z: 1.9}, {X: 1, Y: -1, Z: 0}} {
		want := 2*p.X - p.Y + 0.5*p.Z
		if got := BoxSample(g, p); math.Abs(got-want) > 1e-12 {
			t.Errorf("sample at %v got %g. want %g", p, got, want)
		}
	}
}

func TestFromSDF(t *testing.T) {
	const (
		voxel = 0.1
		width = 0.3
	)
	g := FromSDF(sphere{radius: 1}, voxel, width)
	if g.Class() != ClassLevelSet {
		t.Error("rasterized grid must be a level set")
	}
	if g.Background() != width {
		t.Errorf("background got %v. want %v", g.Background(), width)
	}
	if v, on := g.Lookup(Coord{0, 0, 0}); on || v != -width {
		t.Errorf("sphere center got (%v,%v). want (%v,false)", v, on, -width)
	}
	if v, on := g.Lookup(Coord{10, 0, 0}); !on || math.Abs(float64(v)) > 1e-6 {
		t.Errorf("surface voxel got (%v,%v). want (0,true)", v, on)
	}
	bb := g.ActiveBounds()
	if bb.Min[0] > -10 || bb.Max[0] < 10 {
		t.Errorf("narrow band bounds %v do not enclose surface", bb)
	}
}

type sdfxSphere struct{ r float64 }

func (s sdfxSphere) Evaluate(p sdf.V3) float64 {
	return math.Sqrt(p.X*p.X+p.Y*p.Y+p.Z*p.Z) - s.r
}

func (s sdfxSphere) BoundingBox() sdf.Box3 {
	return sdf.Box3{Min: sdf.V3{X: -s.r, Y: -s.r, Z: -s.r}, Max: sdf.V3{X: s.r, Y: s.r, Z: s.r}}
}

func TestFromSDFX(t *testing.T) {
	a := FromSDFX(sdfxSphere{r: 1}, 0.2, 0.55)
	b := FromSDF(sphere{radius: 1}, 0.2, 0.55)
	if a.ActiveVoxelCount() != b.ActiveVoxelCount() {
		t.Fatalf("sdfx rasterization active voxels %d. want %d", a.ActiveVoxelCount(), b.ActiveVoxelCount())
	}
	b.ForEachActive(func(c Coord, v float32) {
		if got := a.Get(c); math.Abs(float64(got-v)) > 1e-6 {
			t.Errorf("voxel %v got %v. want %v", c, got, v)
		}
	})
}
