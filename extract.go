package volmesh

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/volmesh/grid"
	"github.com/soypat/volmesh/isosurface"
	"gonum.org/v1/gonum/spatial/r3"
)

// ExtractionError is returned when the isosurface kernel fails on a grid.
type ExtractionError struct {
	// Grid is the name of the meshed grid.
	Grid string
	Err  error
	// Stack is set when the kernel panicked.
	Stack string
}

func (e *ExtractionError) Error() string {
	return "volume to mesh: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type kernelPanic struct {
	v any
}

func (p *kernelPanic) Error() string { return fmt.Sprintf("kernel panic: %v", p.v) }

// extract runs the kernel on g and shifts every resulting vertex by half of
// g's voxel size. On failure the returned surface is empty.
func extract[T grid.Scalar](k isosurface.Kernel, log logrus.FieldLogger, g *grid.Grid[T], threshold, adaptivity float64) (s isosurface.Surface, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &ExtractionError{
				Grid:  g.Name(),
				Err:   &kernelPanic{v: a},
				Stack: string(debug.Stack()),
			}
		}
		if err != nil {
			s = isosurface.Surface{}
			if log != nil {
				log.WithFields(logrus.Fields{
					"grid":       g.Name(),
					"threshold":  threshold,
					"adaptivity": adaptivity,
				}).WithError(err).Warn("isosurface extraction failed")
			}
		}
	}()
	s, err = k.VolumeToMesh(scalarField[T]{g: g}, threshold, adaptivity)
	if err != nil {
		return s, &ExtractionError{Grid: g.Name(), Err: err}
	}
	if err = s.Validate(); err != nil {
		return s, &ExtractionError{Grid: g.Name(), Err: err}
	}
	half := r3.Scale(0.5, g.VoxelSize())
	offset := ms3.Vec{X: float32(half.X), Y: float32(half.Y), Z: float32(half.Z)}
	for i := range s.Verts {
		s.Verts[i] = ms3.Add(s.Verts[i], offset)
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"grid":  g.Name(),
			"verts": len(s.Verts),
			"tris":  len(s.Tris),
			"quads": len(s.Quads),
		}).Debug("isosurface extracted")
	}
	return s, nil
}

// scalarField exposes a scalar grid to an isosurface kernel.
type scalarField[T grid.Scalar] struct {
	g *grid.Grid[T]
}

func (f scalarField[T]) Bounds() (min, max [3]int, ok bool) {
	bb := f.g.ActiveBounds()
	if bb.Empty() {
		return min, max, false
	}
	return bb.Min, bb.Max, true
}

func (f scalarField[T]) Value(i, j, k int) float64 {
	return float64(f.g.Get(grid.Coord{i, j, k}))
}

func (f scalarField[T]) IndexToWorld(p r3.Vec) r3.Vec {
	return f.g.Transform().IndexToWorld(p)
}
