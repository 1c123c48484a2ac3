// Package mesh implements an indexed polygon mesh and assembles
// isosurface output into it.
package mesh

import (
	"errors"
	"fmt"

	"github.com/soypat/glgl/math/ms3"
)

// LooseEdges caches whether the mesh has edges not used by any face.
type LooseEdges uint8

const (
	LooseEdgesUnknown LooseEdges = iota
	LooseEdgesNone
)

// Mesh is an indexed polygon mesh. Face f uses corners
// CornerVerts[FaceOffsets[f]:FaceOffsets[f+1]], the last face ends at
// len(CornerVerts). Each corner stores a vertex index into Positions.
type Mesh struct {
	Positions   []ms3.Vec
	FaceOffsets []int
	CornerVerts []int
	// Edges and CornerEdges are derived from faces by CalcEdges.
	// CornerEdges[c] is the edge from corner c to the next corner of its face.
	Edges       [][2]int
	CornerEdges []int
	// SmoothFaces holds the shading flag of each face.
	SmoothFaces []bool
	LooseEdges  LooseEdges
}

// New allocates a mesh with buffers sized for verts vertices, faces faces
// and loops face corners.
func New(verts, faces, loops int) *Mesh {
	if verts < 0 || faces < 0 || loops < 0 {
		panic("negative mesh buffer size")
	}
	return &Mesh{
		Positions:   make([]ms3.Vec, verts),
		FaceOffsets: make([]int, faces),
		CornerVerts: make([]int, loops),
	}
}

func (m *Mesh) NumVerts() int { return len(m.Positions) }
func (m *Mesh) NumFaces() int { return len(m.FaceOffsets) }
func (m *Mesh) NumLoops() int { return len(m.CornerVerts) }

// Face returns the vertex indices of face f in winding order.
// The returned slice aliases CornerVerts.
func (m *Mesh) Face(f int) []int {
	end := len(m.CornerVerts)
	if f+1 < len(m.FaceOffsets) {
		end = m.FaceOffsets[f+1]
	}
	return m.CornerVerts[m.FaceOffsets[f]:end]
}

// IsEmpty reports whether the mesh has no vertices and no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0 && len(m.FaceOffsets) == 0
}

// Validate checks face offsets start at zero, increase by at least 3 and
// end within the corner buffer, and that corners reference existing vertices.
func (m *Mesh) Validate() error {
	if len(m.FaceOffsets) == 0 {
		if len(m.CornerVerts) != 0 {
			return errors.New("corners without faces")
		}
		return nil
	}
	if m.FaceOffsets[0] != 0 {
		return fmt.Errorf("first face offset is %d", m.FaceOffsets[0])
	}
	for f, start := range m.FaceOffsets {
		end := len(m.CornerVerts)
		if f+1 < len(m.FaceOffsets) {
			end = m.FaceOffsets[f+1]
		}
		if end-start < 3 || end > len(m.CornerVerts) {
			return fmt.Errorf("face %d spans corners [%d,%d) of %d", f, start, end, len(m.CornerVerts))
		}
	}
	for c, v := range m.CornerVerts {
		if v < 0 || v >= len(m.Positions) {
			return fmt.Errorf("corner %d references vertex %d out of %d", c, v, len(m.Positions))
		}
	}
	return nil
}

// Triangles returns the faces fan triangulated in winding order.
func (m *Mesh) Triangles() []ms3.Triangle {
	tris := make([]ms3.Triangle, 0, max(0, len(m.CornerVerts)-2*len(m.FaceOffsets)))
	for f := range m.FaceOffsets {
		face := m.Face(f)
		for i := 1; i+1 < len(face); i++ {
			tris = append(tris, ms3.Triangle{
				m.Positions[face[0]],
				m.Positions[face[i]],
				m.Positions[face[i+1]],
			})
		}
	}
	return tris
}

// Volume returns the signed volume enclosed by the mesh. It is positive
// for a closed mesh with faces wound counter-clockwise seen from outside.
func (m *Mesh) Volume() float64 {
	var vol float64
	for _, t := range m.Triangles() {
		vol += float64(ms3.Dot(t[0], ms3.Cross(t[1], t[2])))
	}
	return vol / 6
}

// Bounds returns the box containing all vertex positions.
func (m *Mesh) Bounds() ms3.Box {
	if len(m.Positions) == 0 {
		return ms3.Box{}
	}
	bb := ms3.Box{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		bb.Min = ms3.MinElem(bb.Min, p)
		bb.Max = ms3.MaxElem(bb.Max, p)
	}
	return bb
}
