package grid

import (
	"errors"
	"math"

	"github.com/soypat/volmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform maps index space voxel coordinates to world space.
// The zero value is the identity transform, a unit voxel size grid at the origin.
type Transform struct {
	m d3.Transform
}

// LinearTransform returns a transform for a uniform voxel size with
// voxel (0,0,0) centered at the world origin. It panics if voxelSize <= 0.
func LinearTransform(voxelSize float64) Transform {
	if !(voxelSize > 0) || math.IsInf(voxelSize, 0) {
		panic("voxel size must be finite and positive")
	}
	return Transform{m: d3.Transform{}.Scale(r3.Vec{}, d3.Elem(voxelSize))}
}

// NewTransform returns a transform which scales index coordinates by voxelSize,
// rotates them by q and then translates them by origin.
func NewTransform(voxelSize, origin r3.Vec, q r3.Rotation) (Transform, error) {
	if d3.LTEZero(voxelSize) {
		return Transform{}, errors.New("voxel size components must be positive")
	}
	if q == (r3.Rotation{}) {
		q = r3.Rotation{Real: 1}
	}
	t := Transform{m: d3.ComposeTransform(origin, voxelSize, q)}
	if !t.Invertible() {
		return Transform{}, errors.New("transform is not invertible")
	}
	return t, nil
}

// TransformFromMatrix returns a Transform from a row-major 4x4 matrix
// whose columns map index coordinates to world coordinates.
func TransformFromMatrix(rowMajor []float64) (Transform, error) {
	if len(rowMajor) != 16 {
		return Transform{}, errors.New("transform matrix needs 16 elements")
	}
	t := Transform{m: d3.NewTransform(rowMajor)}
	if !t.Invertible() {
		return Transform{}, errors.New("transform is not invertible")
	}
	return t, nil
}

// Invertible reports whether the transform has a non-singular matrix.
func (t Transform) Invertible() bool {
	det := t.m.Det()
	return math.Abs(det) > 1e-300 && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// IndexToWorld maps an index-space position to world space.
func (t Transform) IndexToWorld(p r3.Vec) r3.Vec {
	return t.m.Transform(p)
}

// WorldToIndex maps a world-space position to fractional index space.
func (t Transform) WorldToIndex(p r3.Vec) r3.Vec {
	return t.m.Inv().Transform(p)
}

// IndexToWorldBox returns the world-space axis aligned box containing the
// box spanned by the Min and Max voxel coordinates of b.
func (t Transform) IndexToWorldBox(b CoordBox) r3.Box {
	wb := t.m.TransformBox(d3.Box{Min: b.Min.Vec(), Max: b.Max.Vec()})
	return r3.Box(wb)
}

// VoxelSize returns the world-space size of a voxel along each index axis.
func (t Transform) VoxelSize() r3.Vec {
	return t.m.AxisLengths()
}

// PreScale returns the transform with index coordinates scaled by factor
// before t is applied. Voxel size is multiplied by factor.
func (t Transform) PreScale(factor r3.Vec) Transform {
	return Transform{m: t.m.PreScale(factor)}
}

// Equal reports whether two transforms are equal within tol.
func (t Transform) Equal(b Transform, tol float64) bool {
	return t.m.Equals(b.m, tol)
}
