// Package must3 provides shape constructors that panic on invalid arguments.
// See package form3 for variants returning errors.
package must3

import (
	"math"

	"github.com/soypat/volmesh/grid"
	"github.com/soypat/volmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// box is a 3d box with optionally rounded edges.
type box struct {
	half  r3.Vec
	round float64
	bb    r3.Box
}

// Box returns a box of the given size centered at the origin, with
// edges rounded by round.
func Box(size r3.Vec, round float64) grid.SDF {
	if d3.LTEZero(size) {
		panic("size <= 0")
	}
	if round < 0 {
		panic("round < 0")
	}
	half := r3.Scale(0.5, size)
	if round > d3.Min(half) {
		panic("round > half of smallest side")
	}
	return &box{
		half:  r3.Sub(half, d3.Elem(round)),
		round: round,
		bb:    r3.Box{Min: r3.Scale(-1, half), Max: half},
	}
}

func (s *box) Evaluate(p r3.Vec) float64 {
	d := r3.Sub(d3.AbsElem(p), s.half)
	outside := r3.Norm(d3.MaxElem(d, r3.Vec{}))
	inside := math.Min(d3.Max(d), 0)
	return outside + inside - s.round
}

func (s *box) Bounds() r3.Box { return s.bb }

type sphere struct {
	radius float64
}

// Sphere returns a sphere centered at the origin.
func Sphere(radius float64) grid.SDF {
	if radius <= 0 {
		panic("radius <= 0")
	}
	return &sphere{radius: radius}
}

func (s *sphere) Evaluate(p r3.Vec) float64 { return r3.Norm(p) - s.radius }

func (s *sphere) Bounds() r3.Box {
	d := d3.Elem(s.radius)
	return r3.Box{Min: r3.Scale(-1, d), Max: d}
}

// cylinder is a z aligned cylinder.
type cylinder struct {
	halfHeight float64
	radius     float64
	round      float64
	bb         r3.Box
}

// Cylinder returns a cylinder along the z axis centered at the origin,
// with edges rounded by round.
func Cylinder(height, radius, round float64) grid.SDF {
	if radius <= 0 {
		panic("radius <= 0")
	}
	if round < 0 {
		panic("round < 0")
	}
	if round > radius {
		panic("round > radius")
	}
	if height < 2*round {
		panic("height < 2 * round")
	}
	d := r3.Vec{X: radius, Y: radius, Z: height / 2}
	return &cylinder{
		halfHeight: height/2 - round,
		radius:     radius - round,
		round:      round,
		bb:         r3.Box{Min: r3.Scale(-1, d), Max: d},
	}
}

// Capsule returns a cylinder with hemispherical caps. height includes the caps.
func Capsule(height, radius float64) grid.SDF {
	return Cylinder(height, radius, radius)
}

func (s *cylinder) Evaluate(p r3.Vec) float64 {
	q := r2.Vec{X: math.Hypot(p.X, p.Y), Y: p.Z}
	return sdfBox2d(q, r2.Vec{X: s.radius, Y: s.halfHeight}) - s.round
}

func (s *cylinder) Bounds() r3.Box { return s.bb }

// torus lies in the xy plane.
type torus struct {
	major, minor float64
}

// Torus returns a torus in the xy plane centered at the origin. major is the
// distance from the center to the tube center and minor the tube radius.
func Torus(major, minor float64) grid.SDF {
	if minor <= 0 {
		panic("minor radius <= 0")
	}
	if major < minor {
		panic("major radius < minor radius")
	}
	return &torus{major: major, minor: minor}
}

func (s *torus) Evaluate(p r3.Vec) float64 {
	return math.Hypot(math.Hypot(p.X, p.Y)-s.major, p.Z) - s.minor
}

func (s *torus) Bounds() r3.Box {
	r := s.major + s.minor
	return r3.Box{Min: r3.Vec{X: -r, Y: -r, Z: -s.minor}, Max: r3.Vec{X: r, Y: r, Z: s.minor}}
}

// sdfBox2d is the exact distance to a 2d box of half size s.
func sdfBox2d(p, s r2.Vec) float64 {
	d := r2.Vec{X: math.Abs(p.X) - s.X, Y: math.Abs(p.Y) - s.Y}
	outside := math.Hypot(math.Max(d.X, 0), math.Max(d.Y, 0))
	return outside + math.Min(math.Max(d.X, d.Y), 0)
}
