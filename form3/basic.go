// Package form3 provides analytic 3D shapes for rasterizing into grids.
// Constructors return an error instead of panicking on invalid arguments.
package form3

import (
	"fmt"
	"runtime/debug"

	"github.com/soypat/volmesh/form3/must3"
	"github.com/soypat/volmesh/grid"
	"gonum.org/v1/gonum/spatial/r3"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// Stack returns the stack trace at the point the shape constructor failed.
func (s *shapeErr) Stack() string { return s.stack }

// build runs fn, converting a panic into an error.
func build(fn func() grid.SDF) (s grid.SDF, err error) {
	defer func() {
		if a := recover(); a != nil {
			s = nil
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return fn(), nil
}

// Box returns a box of the given size centered at the origin (rounded edges with round > 0).
func Box(size r3.Vec, round float64) (grid.SDF, error) {
	return build(func() grid.SDF { return must3.Box(size, round) })
}

// Sphere returns a sphere centered at the origin.
func Sphere(radius float64) (grid.SDF, error) {
	return build(func() grid.SDF { return must3.Sphere(radius) })
}

// Cylinder returns a z aligned cylinder centered at the origin (rounded edges with round > 0).
func Cylinder(height, radius, round float64) (grid.SDF, error) {
	return build(func() grid.SDF { return must3.Cylinder(height, radius, round) })
}

// Capsule returns a z aligned capsule.
func Capsule(height, radius float64) (grid.SDF, error) {
	return Cylinder(height, radius, radius)
}

// Torus returns a torus in the xy plane.
func Torus(major, minor float64) (grid.SDF, error) {
	return build(func() grid.SDF { return must3.Torus(major, minor) })
}

// Union returns the union of two or more shapes.
func Union(sdfs ...grid.SDF) (grid.SDF, error) {
	return build(func() grid.SDF { return must3.Union(sdfs...) })
}

// Difference returns s0 with s1 removed.
func Difference(s0, s1 grid.SDF) (grid.SDF, error) {
	return build(func() grid.SDF { return must3.Difference(s0, s1) })
}

// Intersect returns the region common to s0 and s1.
func Intersect(s0, s1 grid.SDF) (grid.SDF, error) {
	return build(func() grid.SDF { return must3.Intersect(s0, s1) })
}

// Translate displaces s by v.
func Translate(s grid.SDF, v r3.Vec) (grid.SDF, error) {
	return build(func() grid.SDF { return must3.Translate(s, v) })
}

// Offset grows s by distance.
func Offset(s grid.SDF, distance float64) (grid.SDF, error) {
	return build(func() grid.SDF { return must3.Offset(s, distance) })
}
