package isosurface

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultMaxClusterLevel is the cluster level used when SurfaceNets.MaxClusterLevel is zero.
const DefaultMaxClusterLevel = 2

// SurfaceNets is a dual contouring kernel. A vertex is placed in every cell
// of eight samples crossed by the isosurface, at the mean of the linear
// crossings along the cell's edges. A quad joins the four cells around every
// lattice edge the isosurface crosses. Samples below the isovalue are inside.
// Faces are wound clockwise when seen from outside the surface.
//
// A positive adaptivity clusters vertices of neighboring cells whose surface
// normals deviate little from their mean. Clusters are aligned blocks of up to
// 2^MaxClusterLevel cells per side. A block merges only when all of its
// sub-blocks merged and every member normal n satisfies 1-dot(n,mean) <= adaptivity,
// so a larger adaptivity never yields more vertices. A merged vertex starts at
// the mean of its members and is moved along the mean normal onto the
// isosurface of the interpolated samples.
type SurfaceNets struct {
	MaxClusterLevel int
}

var _ Kernel = SurfaceNets{}

// VolumeToMesh implements Kernel. Adaptivity is clamped to [0,1].
func (sn SurfaceNets) VolumeToMesh(f Field, isovalue, adaptivity float64) (Surface, error) {
	if math.IsNaN(isovalue) || math.IsInf(isovalue, 0) {
		return Surface{}, fmt.Errorf("isovalue must be finite, got %g", isovalue)
	}
	if math.IsNaN(adaptivity) || math.IsInf(adaptivity, 0) {
		return Surface{}, fmt.Errorf("adaptivity must be finite, got %g", adaptivity)
	}
	lo, hi, ok := f.Bounds()
	if !ok {
		return Surface{}, nil
	}
	lat, err := sampleLattice(f, lo, hi, isovalue)
	if err != nil {
		return Surface{}, err
	}
	nt := lat.contour()
	if a := math.Min(adaptivity, 1); a > 0 {
		level := sn.MaxClusterLevel
		if level <= 0 {
			level = DefaultMaxClusterLevel
		}
		nt.cluster(a, level)
	}
	return nt.surface(f), nil
}

// lattice is a dense copy of field samples, offset by the isovalue,
// spanning the active bounds grown by one sample.
type lattice struct {
	origin [3]int
	dim    [3]int
	vals   []float64
}

func sampleLattice(f Field, lo, hi [3]int, isovalue float64) (*lattice, error) {
	l := &lattice{}
	size := 1
	for i := range l.origin {
		l.origin[i] = lo[i] - 1
		l.dim[i] = hi[i] - lo[i] + 3
		if l.dim[i] < 3 {
			return nil, fmt.Errorf("invalid field bounds %v %v", lo, hi)
		}
		size *= l.dim[i]
	}
	l.vals = make([]float64, size)
	idx := 0
	for k := 0; k < l.dim[2]; k++ {
		for j := 0; j < l.dim[1]; j++ {
			for i := 0; i < l.dim[0]; i++ {
				gi, gj, gk := i+l.origin[0], j+l.origin[1], k+l.origin[2]
				v := f.Value(gi, gj, gk)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, &ValueError{Index: [3]int{gi, gj, gk}, Value: v}
				}
				l.vals[idx] = v - isovalue
				idx++
			}
		}
	}
	return l, nil
}

func (l *lattice) at(i, j, k int) float64 {
	return l.vals[i+l.dim[0]*(j+l.dim[1]*k)]
}

func (l *lattice) inside(p [3]int) bool {
	return l.at(p[0], p[1], p[2]) < 0
}

// cubeEdges lists the 12 cell edges as corner pairs. Corner c sits at
// offset (c&1, c>>1&1, c>>2&1) from the cell origin.
var cubeEdges = func() (edges [12][2]int) {
	n := 0
	for c := 0; c < 8; c++ {
		for axis := 0; axis < 3; axis++ {
			if c&(1<<axis) == 0 {
				edges[n] = [2]int{c, c | 1<<axis}
				n++
			}
		}
	}
	return edges
}()

func cornerOffset(c int) r3.Vec {
	return r3.Vec{X: float64(c & 1), Y: float64(c >> 1 & 1), Z: float64(c >> 2 & 1)}
}

// net is the surface in lattice-local index space before clustering.
type net struct {
	lat    *lattice
	origin [3]int
	cell   [][3]int  // cell of each vertex.
	pos    []r3.Vec  // index space vertex positions.
	normal []ms3.Vec // unit field gradient in each vertex cell.
	tris   [][3]uint32
	quads  [][4]uint32
}

func (l *lattice) contour() *net {
	cd := [3]int{l.dim[0] - 1, l.dim[1] - 1, l.dim[2] - 1}
	cellVert := make([]int32, cd[0]*cd[1]*cd[2])
	nt := &net{lat: l, origin: l.origin}
	idx := 0
	for k := 0; k < cd[2]; k++ {
		for j := 0; j < cd[1]; j++ {
			for i := 0; i < cd[0]; i++ {
				cellVert[idx] = -1
				if v, ok := l.cellVertex(i, j, k); ok {
					cellVert[idx] = int32(len(nt.pos))
					nt.cell = append(nt.cell, [3]int{i, j, k})
					nt.pos = append(nt.pos, v)
					nt.normal = append(nt.normal, l.cellNormal(i, j, k))
				}
				idx++
			}
		}
	}
	vertAt := func(c [3]int) uint32 {
		return uint32(cellVert[c[0]+cd[0]*(c[1]+cd[1]*c[2])])
	}
	for k := 0; k < l.dim[2]; k++ {
		for j := 0; j < l.dim[1]; j++ {
			for i := 0; i < l.dim[0]; i++ {
				p := [3]int{i, j, k}
				for a := 0; a < 3; a++ {
					u, v := (a+1)%3, (a+2)%3
					if p[a]+1 >= l.dim[a] || p[u] < 1 || p[u] >= cd[u] || p[v] < 1 || p[v] >= cd[v] {
						continue
					}
					q := p
					q[a]++
					in := l.inside(p)
					if in == l.inside(q) {
						continue
					}
					// Cells around the edge, counter-clockwise about axis a.
					c := p
					c[u]--
					c[v]--
					A := vertAt(c)
					c[u]++
					B := vertAt(c)
					c[v]++
					C := vertAt(c)
					c[u]--
					D := vertAt(c)
					if in {
						nt.quads = append(nt.quads, [4]uint32{A, D, C, B})
					} else {
						nt.quads = append(nt.quads, [4]uint32{A, B, C, D})
					}
				}
			}
		}
	}
	return nt
}

// cellVertex returns the mean of the isovalue crossings on the edges of
// the cell with origin (i,j,k). ok is false if the cell is not crossed.
func (l *lattice) cellVertex(i, j, k int) (r3.Vec, bool) {
	var vals [8]float64
	var mask uint8
	for c := range vals {
		vals[c] = l.at(i+c&1, j+c>>1&1, k+c>>2&1)
		if vals[c] < 0 {
			mask |= 1 << c
		}
	}
	if mask == 0 || mask == 0xff {
		return r3.Vec{}, false
	}
	var sum r3.Vec
	n := 0
	for _, e := range cubeEdges {
		v0, v1 := vals[e[0]], vals[e[1]]
		if (v0 < 0) == (v1 < 0) {
			continue
		}
		t := v0 / (v0 - v1)
		p0, p1 := cornerOffset(e[0]), cornerOffset(e[1])
		sum = r3.Add(sum, r3.Add(p0, r3.Scale(t, r3.Sub(p1, p0))))
		n++
	}
	local := r3.Scale(1/float64(n), sum)
	return r3.Add(r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)}, local), true
}

// cellNormal returns the normalized mean gradient of the cell, or the zero
// vector if the gradient vanishes.
func (l *lattice) cellNormal(i, j, k int) ms3.Vec {
	var vals [8]float32
	for c := range vals {
		vals[c] = float32(l.at(i+c&1, j+c>>1&1, k+c>>2&1))
	}
	g := ms3.Vec{
		X: (vals[1] - vals[0]) + (vals[3] - vals[2]) + (vals[5] - vals[4]) + (vals[7] - vals[6]),
		Y: (vals[2] - vals[0]) + (vals[3] - vals[1]) + (vals[6] - vals[4]) + (vals[7] - vals[5]),
		Z: (vals[4] - vals[0]) + (vals[5] - vals[1]) + (vals[6] - vals[2]) + (vals[7] - vals[3]),
	}
	if ms3.Norm(g) == 0 {
		return ms3.Vec{}
	}
	return ms3.Unit(g)
}

// cluster merges vertices level by level, see SurfaceNets.
func (nt *net) cluster(tol float64, maxLevel int) {
	rep := make([]int, len(nt.pos))
	prev := make(map[[3]int]bool, len(nt.cell))
	for i, c := range nt.cell {
		rep[i] = i
		prev[c] = true
	}
	for level := 1; level <= maxLevel; level++ {
		groups := make(map[[3]int][]int)
		for i, c := range nt.cell {
			key := blockOf(c, level)
			groups[key] = append(groups[key], i)
		}
		next := make(map[[3]int]bool, len(groups))
		for key, members := range groups {
			merge := true
			for _, i := range members {
				if !prev[blockOf(nt.cell[i], level-1)] {
					merge = false
					break
				}
			}
			if !merge || nt.deviation(members) > tol {
				continue
			}
			next[key] = true
			for _, i := range members {
				rep[i] = members[0]
			}
		}
		prev = next
	}
	nt.collapse(rep, float64(int(1)<<maxLevel))
}

func blockOf(c [3]int, level int) [3]int {
	return [3]int{c[0] >> level, c[1] >> level, c[2] >> level}
}

// deviation returns the largest 1-cos angle between a member normal and the mean normal.
func (nt *net) deviation(members []int) float64 {
	if len(members) == 1 {
		return 0
	}
	var mean ms3.Vec
	for _, i := range members {
		mean = ms3.Add(mean, nt.normal[i])
	}
	if ms3.Norm(mean) == 0 {
		return math.Inf(1)
	}
	mean = ms3.Unit(mean)
	var dev float32
	for _, i := range members {
		dev = math32.Max(dev, 1-ms3.Dot(nt.normal[i], mean))
	}
	return float64(dev)
}

// collapse replaces every vertex with its cluster representative placed on
// the isosurface no further than maxShift from the members' mean. Quads left
// with three distinct corners become triangles, other degenerate faces are
// dropped along with the vertices no face references.
func (nt *net) collapse(rep []int, maxShift float64) {
	sum := make([]r3.Vec, len(nt.pos))
	nsum := make([]ms3.Vec, len(nt.pos))
	count := make([]int, len(nt.pos))
	for i, r := range rep {
		sum[r] = r3.Add(sum[r], nt.pos[i])
		nsum[r] = ms3.Add(nsum[r], nt.normal[i])
		count[r]++
	}
	var tris [][3]uint32
	var quads [][4]uint32
	used := make([]bool, len(nt.pos))
	for _, q := range nt.quads {
		var poly [4]uint32
		n := 0
		for _, v := range q {
			r := uint32(rep[v])
			if n > 0 && poly[n-1] == r {
				continue
			}
			poly[n] = r
			n++
		}
		if n > 1 && poly[n-1] == poly[0] {
			n--
		}
		switch {
		case n == 4 && poly[0] != poly[2] && poly[1] != poly[3]:
			quads = append(quads, poly)
		case n == 3:
			tris = append(tris, [3]uint32{poly[0], poly[1], poly[2]})
		default:
			continue
		}
		for _, v := range poly[:n] {
			used[v] = true
		}
	}
	newIdx := make([]uint32, len(nt.pos))
	var pos []r3.Vec
	var cells [][3]int
	var normals []ms3.Vec
	for i, u := range used {
		if !u {
			continue
		}
		newIdx[i] = uint32(len(pos))
		p, n := nt.pos[i], nt.normal[i]
		if count[i] > 1 {
			p = r3.Scale(1/float64(count[i]), sum[i])
			if ms3.Norm(nsum[i]) > 0 {
				n = ms3.Unit(nsum[i])
				p = nt.lat.project(p, r3.Vec{X: float64(n.X), Y: float64(n.Y), Z: float64(n.Z)}, maxShift)
			}
		}
		pos = append(pos, p)
		cells = append(cells, nt.cell[i])
		normals = append(normals, n)
	}
	for i := range tris {
		for j, v := range tris[i] {
			tris[i][j] = newIdx[v]
		}
	}
	for i := range quads {
		for j, v := range quads[i] {
			quads[i][j] = newIdx[v]
		}
	}
	nt.pos, nt.cell, nt.normal = pos, cells, normals
	nt.tris, nt.quads = tris, quads
}

// sample returns the trilinear interpolation of the lattice and its gradient
// at the lattice-local position p, clamped to the lattice.
func (l *lattice) sample(p r3.Vec) (float64, r3.Vec) {
	var base [3]int
	var t [3]float64
	for a, x := range [3]float64{p.X, p.Y, p.Z} {
		x = math.Max(0, math.Min(x, float64(l.dim[a]-1)))
		b := math.Min(math.Floor(x), float64(l.dim[a]-2))
		base[a], t[a] = int(b), x-b
	}
	var vals [8]float64
	for c := range vals {
		vals[c] = l.at(base[0]+c&1, base[1]+c>>1&1, base[2]+c>>2&1)
	}
	lerp := func(a, b, t float64) float64 { return a + t*(b-a) }
	// Interpolate along x, then y, then z.
	x00, x10 := lerp(vals[0], vals[1], t[0]), lerp(vals[2], vals[3], t[0])
	x01, x11 := lerp(vals[4], vals[5], t[0]), lerp(vals[6], vals[7], t[0])
	y0, y1 := lerp(x00, x10, t[1]), lerp(x01, x11, t[1])
	v := lerp(y0, y1, t[2])

	dx0 := lerp(vals[1]-vals[0], vals[3]-vals[2], t[1])
	dx1 := lerp(vals[5]-vals[4], vals[7]-vals[6], t[1])
	grad := r3.Vec{
		X: lerp(dx0, dx1, t[2]),
		Y: lerp(x10-x00, x11-x01, t[2]),
		Z: y1 - y0,
	}
	return v, grad
}

// project moves p along the unit direction n towards the zero crossing of
// the interpolated samples with Newton steps. The result is at most maxShift
// away from p. p is returned unchanged if no closer point is found.
func (l *lattice) project(p, n r3.Vec, maxShift float64) r3.Vec {
	v0, _ := l.sample(p)
	best, bestV := p, math.Abs(v0)
	var s float64 // Signed displacement along n.
	for iter := 0; iter < 8 && bestV > 1e-9; iter++ {
		v, grad := l.sample(r3.Add(p, r3.Scale(s, n)))
		dv := r3.Dot(grad, n)
		if math.Abs(dv) < 1e-12 {
			break
		}
		s = math.Max(-maxShift, math.Min(s-v/dv, maxShift))
		q := r3.Add(p, r3.Scale(s, n))
		if vq, _ := l.sample(q); math.Abs(vq) < bestV {
			best, bestV = q, math.Abs(vq)
		}
	}
	return best
}

func (nt *net) surface(f Field) Surface {
	s := Surface{
		Verts: make([]ms3.Vec, len(nt.pos)),
		Tris:  nt.tris,
		Quads: nt.quads,
	}
	off := r3.Vec{X: float64(nt.origin[0]), Y: float64(nt.origin[1]), Z: float64(nt.origin[2])}
	for i, p := range nt.pos {
		w := f.IndexToWorld(r3.Add(off, p))
		s.Verts[i] = ms3.Vec{X: float32(w.X), Y: float32(w.Y), Z: float32(w.Z)}
	}
	return s
}
