package mesh

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/volmesh/isosurface"
)

// Fill writes s into pre-sized mesh buffers. Vertices are copied verbatim
// to positions[vertOffset:]. Triangles are written first and quads after
// them, in both face and corner space: triangle i starts at corner
// loopOffset+3*i and quad i at loopOffset+3*len(s.Tris)+4*i.
// Corners of every face are written in reverse order so faces extracted
// clockwise become counter-clockwise seen from outside.
//
// Fill never grows a buffer and panics if one is too short.
func Fill(s isosurface.Surface, vertOffset, faceOffset, loopOffset int, positions []ms3.Vec, faceOffsets, cornerVerts []int) {
	nt, nq := len(s.Tris), len(s.Quads)
	switch {
	case vertOffset < 0 || faceOffset < 0 || loopOffset < 0:
		panic("negative fill offset")
	case len(positions) < vertOffset+len(s.Verts):
		panic(fmt.Sprintf("position buffer too short: need %d, have %d", vertOffset+len(s.Verts), len(positions)))
	case len(faceOffsets) < faceOffset+nt+nq:
		panic(fmt.Sprintf("face offset buffer too short: need %d, have %d", faceOffset+nt+nq, len(faceOffsets)))
	case len(cornerVerts) < loopOffset+3*nt+4*nq:
		panic(fmt.Sprintf("corner buffer too short: need %d, have %d", loopOffset+3*nt+4*nq, len(cornerVerts)))
	}
	copy(positions[vertOffset:], s.Verts)

	for i, tri := range s.Tris {
		loop := loopOffset + 3*i
		faceOffsets[faceOffset+i] = loop
		for j := range tri {
			cornerVerts[loop+j] = vertOffset + int(tri[2-j])
		}
	}
	quadFaces := faceOffset + nt
	quadLoops := loopOffset + 3*nt
	for i, quad := range s.Quads {
		loop := quadLoops + 4*i
		faceOffsets[quadFaces+i] = loop
		for j := range quad {
			cornerVerts[loop+j] = vertOffset + int(quad[3-j])
		}
	}
}

// FromSurface allocates a mesh sized for s and fills it.
func FromSurface(s isosurface.Surface) *Mesh {
	m := New(len(s.Verts), s.NumFaces(), s.NumLoops())
	Fill(s, 0, 0, 0, m.Positions, m.FaceOffsets, m.CornerVerts)
	return m
}
