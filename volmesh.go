package volmesh

import (
	"github.com/sirupsen/logrus"
	"github.com/soypat/volmesh/grid"
	"github.com/soypat/volmesh/isosurface"
	"github.com/soypat/volmesh/mesh"
)

// Data is the result of extracting the isosurface of a grid. If Err is
// non-nil the extraction failed and Surface is empty.
type Data struct {
	isosurface.Surface
	Err error
}

// Converter turns scalar grids into meshes. The zero value is ready to use
// and meshes with isosurface.SurfaceNets and mesh.DefaultBuilder without logging.
type Converter struct {
	Kernel  isosurface.Kernel
	Builder mesh.Builder
	// Log receives extraction failures at warn level and successful
	// extractions at debug level. May be nil.
	Log logrus.FieldLogger
}

var defaultConverter Converter

func (c Converter) kernel() isosurface.Kernel {
	if c.Kernel == nil {
		return isosurface.SurfaceNets{}
	}
	return c.Kernel
}

func (c Converter) builder() mesh.Builder {
	if c.Builder == nil {
		return mesh.DefaultBuilder{}
	}
	return c.Builder
}

// VolumeToMeshData resamples g according to res and extracts its isosurface
// at threshold. ok is false if g does not hold scalar values, in which case
// nothing is done. Extraction failures are reported in Data.Err.
func (c Converter) VolumeToMeshData(g grid.Base, res grid.Resolution, threshold, adaptivity float64) (d Data, ok bool) {
	return dispatch(c, g, res, threshold, adaptivity)
}

// VolumeToMesh is like VolumeToMeshData but assembles the result into a
// mesh. If extraction fails an empty mesh is returned. If g does not hold
// scalar values the mesh is nil and ok is false.
func (c Converter) VolumeToMesh(g grid.Base, res grid.Resolution, threshold, adaptivity float64) (*mesh.Mesh, bool) {
	d, ok := c.VolumeToMeshData(g, res, threshold, adaptivity)
	if !ok {
		return nil, false
	}
	return c.BuildMesh(d.Surface), true
}

// VolumeGridToMesh meshes g at its own resolution.
func (c Converter) VolumeGridToMesh(g grid.Base, threshold, adaptivity float64) (*mesh.Mesh, bool) {
	return c.VolumeToMesh(g, grid.NativeResolution(), threshold, adaptivity)
}

// BuildMesh assembles s into a new mesh and runs the converter's builder on it.
func (c Converter) BuildMesh(s isosurface.Surface) *mesh.Mesh {
	m := mesh.New(len(s.Verts), s.NumFaces(), s.NumLoops())
	mesh.Fill(s, 0, 0, 0, m.Positions, m.FaceOffsets, m.CornerVerts)
	c.builder().Build(m)
	return m
}

// VolumeToMeshData calls Converter.VolumeToMeshData on the default converter.
func VolumeToMeshData(g grid.Base, res grid.Resolution, threshold, adaptivity float64) (Data, bool) {
	return defaultConverter.VolumeToMeshData(g, res, threshold, adaptivity)
}

// VolumeToMesh calls Converter.VolumeToMesh on the default converter.
func VolumeToMesh(g grid.Base, res grid.Resolution, threshold, adaptivity float64) (*mesh.Mesh, bool) {
	return defaultConverter.VolumeToMesh(g, res, threshold, adaptivity)
}

// VolumeGridToMesh calls Converter.VolumeGridToMesh on the default converter.
func VolumeGridToMesh(g grid.Base, threshold, adaptivity float64) (*mesh.Mesh, bool) {
	return defaultConverter.VolumeGridToMesh(g, threshold, adaptivity)
}
