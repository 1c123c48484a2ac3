package grid

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	"github.com/soypat/volmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF is a 3D signed distance function. Distance is negative inside the shape.
type SDF interface {
	Evaluate(p r3.Vec) float64
	// Bounds returns a box that contains the whole shape.
	Bounds() r3.Box
}

// FromSDF rasterizes s into a level set grid with the given world voxel size.
// Voxels within halfWidth world units of the surface are active and store the
// signed distance. Remaining voxels of the bounding region store ±halfWidth
// and are inactive, so the inside of the shape keeps a negative value.
// halfWidth is also the grid background. FromSDF panics if voxelSize or
// halfWidth are not positive.
func FromSDF(s SDF, voxelSize, halfWidth float64) *Grid[float32] {
	if !(halfWidth > 0) {
		panic("level set half width must be positive")
	}
	g := New(float32(halfWidth), LinearTransform(voxelSize))
	g.SetClass(ClassLevelSet)

	bb := s.Bounds()
	bb.Min = r3.Sub(bb.Min, d3.Elem(halfWidth))
	bb.Max = r3.Add(bb.Max, d3.Elem(halfWidth))
	lo := d3.FloorElem(r3.Scale(1/voxelSize, bb.Min))
	hi := d3.CeilElem(r3.Scale(1/voxelSize, bb.Max))
	for i := int(lo.X); i <= int(hi.X); i++ {
		for j := int(lo.Y); j <= int(hi.Y); j++ {
			for k := int(lo.Z); k <= int(hi.Z); k++ {
				c := Coord{i, j, k}
				d := s.Evaluate(g.xform.IndexToWorld(c.Vec()))
				if math.Abs(d) < halfWidth {
					g.Set(c, float32(d))
				} else {
					g.SetValueOff(c, float32(math.Copysign(halfWidth, d)))
				}
			}
		}
	}
	return g
}

// FromSDFX rasterizes an sdfx shape, see FromSDF.
func FromSDFX(s sdf.SDF3, voxelSize, halfWidth float64) *Grid[float32] {
	return FromSDF(sdfxShape{s: s}, voxelSize, halfWidth)
}

type sdfxShape struct {
	s sdf.SDF3
}

func (s sdfxShape) Evaluate(p r3.Vec) float64 {
	return s.s.Evaluate(sdf.V3{X: p.X, Y: p.Y, Z: p.Z})
}

func (s sdfxShape) Bounds() r3.Box {
	bb := s.s.BoundingBox()
	return r3.Box{
		Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}
