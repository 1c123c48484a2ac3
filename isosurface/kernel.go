// Package isosurface extracts polygonal surfaces from sampled scalar fields.
//
// The package defines the contract between a volume and a surface
// extraction kernel (Field, Kernel, Surface) and ships SurfaceNets,
// a dual contouring kernel with adaptive vertex clustering.
package isosurface

import (
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Field is a scalar field sampled on an integer lattice.
type Field interface {
	// Bounds returns the inclusive index-space box holding the field's
	// active samples. ok is false if the field has no active samples.
	Bounds() (min, max [3]int, ok bool)
	// Value returns the sample at index (i,j,k). Any index may be queried,
	// samples outside Bounds return the field background.
	Value(i, j, k int) float64
	// IndexToWorld maps a fractional index-space position to world space.
	IndexToWorld(p r3.Vec) r3.Vec
}

// Surface is the raw output of a Kernel: world-space vertex positions and
// faces indexing into them.
type Surface struct {
	Verts []ms3.Vec
	Tris  [][3]uint32
	Quads [][4]uint32
}

// Kernel extracts the isosurface of a field at isovalue. Adaptivity
// controls polygon simplification, zero means none. Implementations
// return an error on numerical failure, in which case the Surface
// is discarded by callers.
type Kernel interface {
	VolumeToMesh(f Field, isovalue, adaptivity float64) (Surface, error)
}

// IsEmpty reports whether the surface has no vertices and no faces.
func (s Surface) IsEmpty() bool {
	return len(s.Verts) == 0 && len(s.Tris) == 0 && len(s.Quads) == 0
}

// NumFaces returns the total number of triangles and quads.
func (s Surface) NumFaces() int { return len(s.Tris) + len(s.Quads) }

// NumLoops returns the number of face corners.
func (s Surface) NumLoops() int { return 3*len(s.Tris) + 4*len(s.Quads) }

// Validate checks every face references an existing vertex.
func (s Surface) Validate() error {
	n := uint32(len(s.Verts))
	for i, t := range s.Tris {
		for _, v := range t {
			if v >= n {
				return &IndexError{Face: i, Vertex: v, NumVerts: len(s.Verts)}
			}
		}
	}
	for i, q := range s.Quads {
		for _, v := range q {
			if v >= n {
				return &IndexError{Face: len(s.Tris) + i, Vertex: v, NumVerts: len(s.Verts)}
			}
		}
	}
	return nil
}
