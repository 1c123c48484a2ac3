package must3

import (
	"math"
	"strconv"

	"github.com/soypat/volmesh/grid"
	"github.com/soypat/volmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

type union struct {
	sdfs []grid.SDF
	bb   r3.Box
}

// Union returns the union of shapes. It panics if fewer than
// two shapes are given or if any is nil.
func Union(sdfs ...grid.SDF) grid.SDF {
	if len(sdfs) < 2 {
		panic("union requires at least 2 shapes")
	}
	for i, s := range sdfs {
		if s == nil {
			panic("nil shape argument (" + strconv.Itoa(i) + ") to Union")
		}
	}
	bb := d3.Box(sdfs[0].Bounds())
	for _, s := range sdfs[1:] {
		bb = bb.Extend(d3.Box(s.Bounds()))
	}
	return &union{sdfs: sdfs, bb: r3.Box(bb)}
}

func (u *union) Evaluate(p r3.Vec) float64 {
	d := u.sdfs[0].Evaluate(p)
	for _, s := range u.sdfs[1:] {
		d = math.Min(d, s.Evaluate(p))
	}
	return d
}

func (u *union) Bounds() r3.Box { return u.bb }

// diff is s0 - s1.
type diff struct {
	s0, s1 grid.SDF
}

// Difference returns s0 with s1 removed.
func Difference(s0, s1 grid.SDF) grid.SDF {
	if s0 == nil || s1 == nil {
		panic("nil argument to Difference")
	}
	return &diff{s0: s0, s1: s1}
}

func (s *diff) Evaluate(p r3.Vec) float64 {
	return math.Max(s.s0.Evaluate(p), -s.s1.Evaluate(p))
}

func (s *diff) Bounds() r3.Box { return s.s0.Bounds() }

type intersection struct {
	s0, s1 grid.SDF
	bb     r3.Box
}

// Intersect returns the region inside both s0 and s1. It panics if the
// shapes' bounding boxes do not overlap.
func Intersect(s0, s1 grid.SDF) grid.SDF {
	if s0 == nil || s1 == nil {
		panic("nil argument to Intersect")
	}
	b0, b1 := s0.Bounds(), s1.Bounds()
	bb := r3.Box{Min: d3.MaxElem(b0.Min, b1.Min), Max: d3.MinElem(b0.Max, b1.Max)}
	if bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y || bb.Min.Z > bb.Max.Z {
		panic("intersected shapes do not overlap")
	}
	return &intersection{s0: s0, s1: s1, bb: bb}
}

func (s *intersection) Evaluate(p r3.Vec) float64 {
	return math.Max(s.s0.Evaluate(p), s.s1.Evaluate(p))
}

func (s *intersection) Bounds() r3.Box { return s.bb }

type translate struct {
	s grid.SDF
	v r3.Vec
}

// Translate displaces s by v.
func Translate(s grid.SDF, v r3.Vec) grid.SDF {
	if s == nil {
		panic("nil argument to Translate")
	}
	return &translate{s: s, v: v}
}

func (t *translate) Evaluate(p r3.Vec) float64 { return t.s.Evaluate(r3.Sub(p, t.v)) }

func (t *translate) Bounds() r3.Box {
	return r3.Box(d3.Box(t.s.Bounds()).Translate(t.v))
}

type offset struct {
	s        grid.SDF
	distance float64
}

// Offset grows s outward by distance, or shrinks it for a negative distance.
func Offset(s grid.SDF, distance float64) grid.SDF {
	if s == nil {
		panic("nil argument to Offset")
	}
	return &offset{s: s, distance: distance}
}

func (o *offset) Evaluate(p r3.Vec) float64 { return o.s.Evaluate(p) - o.distance }

func (o *offset) Bounds() r3.Box {
	bb := d3.Box(o.s.Bounds())
	return r3.Box(d3.NewBox(bb.Center(), r3.Add(bb.Size(), d3.Elem(2*o.distance))))
}
