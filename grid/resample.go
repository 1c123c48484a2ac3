package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/volmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ResolutionMode selects how the voxel size of a grid is chosen before meshing.
type ResolutionMode uint8

const (
	// ResolutionGrid uses the grid's own voxel size.
	ResolutionGrid ResolutionMode = iota
	// ResolutionVoxelAmount divides the longest active bounding box extent
	// into a number of voxels.
	ResolutionVoxelAmount
	// ResolutionVoxelSize uses an explicit world-space voxel size.
	ResolutionVoxelSize
)

func (m ResolutionMode) String() string {
	switch m {
	case ResolutionGrid:
		return "grid"
	case ResolutionVoxelAmount:
		return "voxel amount"
	case ResolutionVoxelSize:
		return "voxel size"
	}
	return fmt.Sprintf("ResolutionMode(%d)", uint8(m))
}

// Resolution is a resolution policy: exactly one mode and, for modes other
// than ResolutionGrid, its parameter. The zero value is ResolutionGrid.
type Resolution struct {
	mode  ResolutionMode
	value float64
}

// NativeResolution keeps the grid's voxel size.
func NativeResolution() Resolution { return Resolution{} }

// VoxelSize resamples to a world-space voxel size.
func VoxelSize(size float64) Resolution {
	return Resolution{mode: ResolutionVoxelSize, value: size}
}

// VoxelAmount resamples so the longest active bounding box extent
// spans amount voxels.
func VoxelAmount(amount float64) Resolution {
	return Resolution{mode: ResolutionVoxelAmount, value: amount}
}

func (r Resolution) Mode() ResolutionMode { return r.mode }

// Value returns the voxel size or voxel amount parameter. It is zero for ResolutionGrid.
func (r Resolution) Value() float64 { return r.value }

func (r Resolution) String() string {
	if r.mode == ResolutionGrid {
		return r.mode.String()
	}
	return fmt.Sprintf("%s %g", r.mode, r.value)
}

// Validate returns an error if the resolution parameter is not a finite positive number.
func (r Resolution) Validate() error {
	switch r.mode {
	case ResolutionGrid:
		return nil
	case ResolutionVoxelAmount, ResolutionVoxelSize:
		if !(r.value > 0) || math.IsInf(r.value, 0) {
			return fmt.Errorf("%s must be finite and positive, got %g", r.mode, r.value)
		}
		return nil
	}
	return errors.New("invalid resolution mode " + r.mode.String())
}

// DesiredVoxelSize returns the world-space voxel size requested by res for
// grid g. ok is false for ResolutionGrid and when res is ResolutionVoxelAmount
// and g has no active voxels or a zero-extent active region.
func DesiredVoxelSize(g Base, res Resolution) (size float64, ok bool) {
	switch res.mode {
	case ResolutionGrid:
		return 0, false
	case ResolutionVoxelSize:
		return res.value, true
	case ResolutionVoxelAmount:
		bb := g.ActiveBounds()
		if bb.Empty() {
			return 0, false
		}
		wb := d3.Box(g.Transform().IndexToWorldBox(bb))
		maxExtent := d3.Max(wb.Size())
		if maxExtent <= 0 {
			return 0, false
		}
		return maxExtent / res.value, true
	}
	panic("invalid resolution mode " + res.mode.String())
}

// ResolutionFactor returns the ratio of g's largest voxel size component to the
// voxel size requested by res. ok is false when no resampling applies, see
// DesiredVoxelSize. ResolutionFactor panics if the factor is not finite and
// positive, which can only happen for an invalid res.
func ResolutionFactor(g Base, res Resolution) (factor float64, ok bool) {
	desired, ok := DesiredVoxelSize(g, res)
	if !ok {
		return 0, false
	}
	current := d3.Max(g.VoxelSize())
	factor = current / desired
	if !(factor > 0) || math.IsInf(factor, 0) {
		panic(fmt.Sprintf("resolution factor must be finite and positive, got %g (resolution %s)", factor, res))
	}
	return factor, true
}

// Resample returns g resampled to the voxel size requested by res.
// For ResolutionGrid, or when DesiredVoxelSize reports no resampling,
// g itself is returned. Otherwise a new grid is allocated and g is not modified.
func Resample[T Scalar](g *Grid[T], res Resolution) *Grid[T] {
	factor, ok := ResolutionFactor(g, res)
	if !ok {
		return g
	}
	return ScaleResolution(g, factor)
}

// ScaleResolution returns a new grid whose index space is src's scaled by factor.
// Values are resampled with trilinear interpolation and a voxel takes the active
// state of the source voxel nearest to it. The new grid's transform is src's with
// a pre-scale of 1/factor so both grids occupy the same world space.
// ScaleResolution panics if factor is not finite and positive.
func ScaleResolution[T Scalar](src *Grid[T], factor float64) *Grid[T] {
	if !(factor > 0) || math.IsInf(factor, 0) {
		panic(fmt.Sprintf("resolution factor must be finite and positive, got %g", factor))
	}
	dst := New(src.background, src.xform.PreScale(d3.Elem(1/factor)))
	dst.name = src.name
	dst.class = src.class
	inv := 1 / factor
	// Every target voxel is visited from the source voxel nearest to it.
	src.ForEachValue(func(c Coord, _ T, active bool) {
		lo := d3.FloorElem(r3.Scale(factor, r3.Sub(c.Vec(), d3.Elem(0.5))))
		hi := d3.CeilElem(r3.Scale(factor, r3.Add(c.Vec(), d3.Elem(0.5))))
		for i := int(lo.X) - 1; i <= int(hi.X); i++ {
			for j := int(lo.Y) - 1; j <= int(hi.Y); j++ {
				for k := int(lo.Z) - 1; k <= int(hi.Z); k++ {
					t := Coord{i, j, k}
					p := r3.Scale(inv, t.Vec())
					if nearestCoord(p) != c {
						continue
					}
					v := fromFloat[T](BoxSample(src, p))
					if active {
						dst.Set(t, v)
					} else {
						dst.SetValueOff(t, v)
					}
				}
			}
		}
	})
	return dst
}

func nearestCoord(p r3.Vec) Coord {
	return Coord{
		int(math.Floor(p.X + 0.5)),
		int(math.Floor(p.Y + 0.5)),
		int(math.Floor(p.Z + 0.5)),
	}
}
