/*
Package volmesh converts sparse scalar volumes into polygon meshes.

A grid is optionally resampled to a requested resolution, its isosurface is
extracted by a replaceable kernel and the resulting triangles and quads are
packed into an indexed mesh:

	g := grid.FromSDF(shape, 0.05, 0.15)
	m, ok := volmesh.VolumeToMesh(g, grid.VoxelAmount(64), 0, 0.1)
	if !ok {
		// grid does not hold scalar values.
	}

Extraction failures never panic. VolumeToMeshData reports them as an
*ExtractionError in Data.Err and VolumeToMesh returns an empty mesh.
*/
package volmesh
