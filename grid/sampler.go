package grid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BoxSample returns the trilinear interpolation of the grid's stored values
// at the fractional index-space position p.
func BoxSample[T Scalar](g *Grid[T], p r3.Vec) float64 {
	fx, fy, fz := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	tx, ty, tz := p.X-fx, p.Y-fy, p.Z-fz
	c := Coord{int(fx), int(fy), int(fz)}

	v000 := float64(g.Get(c))
	v100 := float64(g.Get(c.Add(Coord{1, 0, 0})))
	v010 := float64(g.Get(c.Add(Coord{0, 1, 0})))
	v110 := float64(g.Get(c.Add(Coord{1, 1, 0})))
	v001 := float64(g.Get(c.Add(Coord{0, 0, 1})))
	v101 := float64(g.Get(c.Add(Coord{1, 0, 1})))
	v011 := float64(g.Get(c.Add(Coord{0, 1, 1})))
	v111 := float64(g.Get(c.Add(Coord{1, 1, 1})))

	v00 := lerp(v000, v100, tx)
	v10 := lerp(v010, v110, tx)
	v01 := lerp(v001, v101, tx)
	v11 := lerp(v011, v111, tx)
	return lerp(lerp(v00, v10, ty), lerp(v01, v11, ty), tz)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// fromFloat converts a sampled value back to the grid's value type,
// rounding to nearest for integer grids.
func fromFloat[T Scalar](f float64) T {
	var z T
	switch any(z).(type) {
	case int32, int64:
		return T(math.Round(f))
	}
	return T(f)
}
