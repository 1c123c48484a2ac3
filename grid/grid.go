// Package grid implements a sparse voxel grid with an index to world
// transform, trilinear sampling and voxel size resampling.
//
// Voxels are stored in 8x8x8 leaf blocks keyed by the block origin. Each leaf
// stores a value and an active state per voxel. Voxels in unallocated leaves
// read as the grid background and are inactive. Inactive voxels of allocated
// leaves keep their stored value, which lets level sets hold interior values
// beyond their narrow band.
package grid

import (
	"math/bits"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	leafLog2Dim = 3
	leafDim     = 1 << leafLog2Dim
	leafMask    = leafDim - 1
	leafVoxels  = leafDim * leafDim * leafDim
)

// Base is the value-type erased view of a Grid.
type Base interface {
	Name() string
	Class() Class
	// ValueType returns the runtime tag of the voxel value type.
	ValueType() ValueType
	Transform() Transform
	// VoxelSize returns the world-space voxel size along each axis.
	VoxelSize() r3.Vec
	// ActiveBounds returns the inclusive index-space bounding box of
	// all active voxels. The box is empty if there are no active voxels.
	ActiveBounds() CoordBox
	ActiveVoxelCount() int
}

var (
	_ Base = (*Grid[float32])(nil)
	_ Base = (*Grid[Vec3f])(nil)
)

type leaf[T Value] struct {
	values [leafVoxels]T
	active [leafVoxels / 64]uint64
}

func (l *leaf[T]) isOn(i int) bool { return l.active[i>>6]&(1<<(i&63)) != 0 }
func (l *leaf[T]) setOn(i int)     { l.active[i>>6] |= 1 << (i & 63) }
func (l *leaf[T]) setOff(i int)    { l.active[i>>6] &^= 1 << (i & 63) }

func (l *leaf[T]) onCount() (n int) {
	for _, w := range l.active {
		n += bits.OnesCount64(w)
	}
	return n
}

func leafOrigin(c Coord) Coord {
	return Coord{c[0] &^ leafMask, c[1] &^ leafMask, c[2] &^ leafMask}
}

func leafOffset(c Coord) int {
	return (c[0]&leafMask)<<(2*leafLog2Dim) | (c[1]&leafMask)<<leafLog2Dim | c[2]&leafMask
}

func offsetCoord(origin Coord, i int) Coord {
	return Coord{
		origin[0] + i>>(2*leafLog2Dim),
		origin[1] + (i>>leafLog2Dim)&leafMask,
		origin[2] + i&leafMask,
	}
}

// Grid is a sparse 3D grid of voxel values of type T. The zero value is not
// usable, create grids with New.
type Grid[T Value] struct {
	name       string
	class      Class
	background T
	xform      Transform
	leaves     map[Coord]*leaf[T]
}

// New returns an empty grid with the given background value and transform.
// New panics if the transform is not invertible.
func New[T Value](background T, xform Transform) *Grid[T] {
	if !xform.Invertible() {
		panic("grid transform must be invertible")
	}
	return &Grid[T]{
		background: background,
		xform:      xform,
		leaves:     make(map[Coord]*leaf[T]),
	}
}

func (g *Grid[T]) Name() string         { return g.name }
func (g *Grid[T]) SetName(name string)  { g.name = name }
func (g *Grid[T]) Class() Class         { return g.class }
func (g *Grid[T]) SetClass(class Class) { g.class = class }

// Background returns the value of voxels outside allocated leaves.
func (g *Grid[T]) Background() T { return g.background }

func (g *Grid[T]) Transform() Transform { return g.xform }

// SetTransform replaces the grid's index to world transform.
// It panics if the transform is not invertible.
func (g *Grid[T]) SetTransform(xform Transform) {
	if !xform.Invertible() {
		panic("grid transform must be invertible")
	}
	g.xform = xform
}

func (g *Grid[T]) VoxelSize() r3.Vec { return g.xform.VoxelSize() }

func (g *Grid[T]) ValueType() ValueType { return valueTypeOf[T]() }

func valueTypeOf[T Value]() ValueType {
	var z T
	switch any(z).(type) {
	case float32:
		return TypeFloat
	case float64:
		return TypeDouble
	case int32:
		return TypeInt32
	case int64:
		return TypeInt64
	case bool:
		return TypeBool
	case Vec3f:
		return TypeVec3f
	case Vec3d:
		return TypeVec3d
	case Vec3i:
		return TypeVec3i
	}
	return TypeUnknown
}

// Get returns the value stored at c, active or not.
func (g *Grid[T]) Get(c Coord) T {
	l := g.leaves[leafOrigin(c)]
	if l == nil {
		return g.background
	}
	return l.values[leafOffset(c)]
}

// Lookup returns the value at c and whether the voxel is active.
func (g *Grid[T]) Lookup(c Coord) (T, bool) {
	l := g.leaves[leafOrigin(c)]
	if l == nil {
		return g.background, false
	}
	i := leafOffset(c)
	return l.values[i], l.isOn(i)
}

// IsActive reports whether the voxel at c is active.
func (g *Grid[T]) IsActive(c Coord) bool {
	_, on := g.Lookup(c)
	return on
}

// Set stores v at c and marks the voxel active.
func (g *Grid[T]) Set(c Coord, v T) {
	l := g.touchLeaf(c)
	i := leafOffset(c)
	l.values[i] = v
	l.setOn(i)
}

// SetValueOff stores v at c and marks the voxel inactive.
func (g *Grid[T]) SetValueOff(c Coord, v T) {
	l := g.touchLeaf(c)
	i := leafOffset(c)
	l.values[i] = v
	l.setOff(i)
}

// SetActiveState changes the active state of c without changing its value.
func (g *Grid[T]) SetActiveState(c Coord, on bool) {
	l := g.leaves[leafOrigin(c)]
	if l == nil {
		if !on {
			return
		}
		l = g.touchLeaf(c)
	}
	if on {
		l.setOn(leafOffset(c))
	} else {
		l.setOff(leafOffset(c))
	}
}

func (g *Grid[T]) touchLeaf(c Coord) *leaf[T] {
	o := leafOrigin(c)
	l := g.leaves[o]
	if l == nil {
		l = new(leaf[T])
		for i := range l.values {
			l.values[i] = g.background
		}
		g.leaves[o] = l
	}
	return l
}

// LeafCount returns the number of allocated leaf blocks.
func (g *Grid[T]) LeafCount() int { return len(g.leaves) }

func (g *Grid[T]) ActiveVoxelCount() (n int) {
	for _, l := range g.leaves {
		n += l.onCount()
	}
	return n
}

func (g *Grid[T]) ActiveBounds() CoordBox {
	bb := EmptyCoordBox()
	for o, l := range g.leaves {
		if l.onCount() == 0 {
			continue
		}
		for i := 0; i < leafVoxels; i++ {
			if l.isOn(i) {
				bb = bb.Include(offsetCoord(o, i))
			}
		}
	}
	return bb
}

// ForEachActive calls fn for every active voxel. Voxels are visited in
// ascending leaf origin order and ascending x, y, z order within a leaf.
func (g *Grid[T]) ForEachActive(fn func(c Coord, v T)) {
	for _, o := range g.sortedOrigins() {
		l := g.leaves[o]
		for i := 0; i < leafVoxels; i++ {
			if l.isOn(i) {
				fn(offsetCoord(o, i), l.values[i])
			}
		}
	}
}

// ForEachValue calls fn for every voxel of every allocated leaf, active or not,
// in the same order as ForEachActive.
func (g *Grid[T]) ForEachValue(fn func(c Coord, v T, active bool)) {
	for _, o := range g.sortedOrigins() {
		l := g.leaves[o]
		for i := 0; i < leafVoxels; i++ {
			fn(offsetCoord(o, i), l.values[i], l.isOn(i))
		}
	}
}

func (g *Grid[T]) sortedOrigins() []Coord {
	origins := make([]Coord, 0, len(g.leaves))
	for o := range g.leaves {
		origins = append(origins, o)
	}
	sort.Slice(origins, func(i, j int) bool { return origins[i].less(origins[j]) })
	return origins
}

// Clone returns a deep copy of the grid.
func (g *Grid[T]) Clone() *Grid[T] {
	c := &Grid[T]{
		name:       g.name,
		class:      g.class,
		background: g.background,
		xform:      g.xform,
		leaves:     make(map[Coord]*leaf[T], len(g.leaves)),
	}
	for o, l := range g.leaves {
		cp := *l
		c.leaves[o] = &cp
	}
	return c
}
