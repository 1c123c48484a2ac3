package grid

import (
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3f is a single precision vector voxel value.
type Vec3f [3]float32

// Vec3d is a double precision vector voxel value.
type Vec3d [3]float64

// Vec3i is an integer vector voxel value.
type Vec3i [3]int32

// Value is the set of voxel value types a Grid may hold.
type Value interface {
	bool | float32 | float64 | int32 | int64 | Vec3f | Vec3d | Vec3i
}

// Scalar is the set of single component numeric voxel value types.
// Only grids of Scalar values can be resampled and meshed.
type Scalar interface {
	float32 | float64 | int32 | int64
}

// ValueType is the runtime tag of a grid's voxel value type.
type ValueType uint8

const (
	TypeUnknown ValueType = iota
	TypeFloat
	TypeDouble
	TypeInt32
	TypeInt64
	TypeBool
	TypeVec3f
	TypeVec3d
	TypeVec3i
	// TypeMask grids store only topology.
	TypeMask
	// TypePoints grids store point attribute data.
	TypePoints
)

func (vt ValueType) String() string {
	switch vt {
	case TypeUnknown:
		return "unknown"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeBool:
		return "bool"
	case TypeVec3f:
		return "vec3f"
	case TypeVec3d:
		return "vec3d"
	case TypeVec3i:
		return "vec3i"
	case TypeMask:
		return "mask"
	case TypePoints:
		return "points"
	}
	return "ValueType(" + strconv.Itoa(int(vt)) + ")"
}

// Class describes how the values of a grid are to be interpreted.
type Class uint8

const (
	ClassUnknown Class = iota
	// ClassLevelSet grids store signed distances, negative inside.
	ClassLevelSet
	// ClassFogVolume grids store densities in [0,1].
	ClassFogVolume
)

func (c Class) String() string {
	switch c {
	case ClassUnknown:
		return "unknown"
	case ClassLevelSet:
		return "level set"
	case ClassFogVolume:
		return "fog volume"
	}
	return "Class(" + strconv.Itoa(int(c)) + ")"
}

// Coord is an integer index-space voxel coordinate.
type Coord [3]int

// Add adds two coordinates. Return v = a + b.
func (a Coord) Add(b Coord) Coord {
	return Coord{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub subtracts two coordinates. Return v = a - b.
func (a Coord) Sub(b Coord) Coord {
	return Coord{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// AddScalar adds a scalar to each component of the coordinate.
func (a Coord) AddScalar(b int) Coord {
	return Coord{a[0] + b, a[1] + b, a[2] + b}
}

// Vec converts the coordinate to a floating point index-space position.
func (a Coord) Vec() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

func (a Coord) less(b Coord) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

// CoordBox is an inclusive integer bounding box. A box with any
// Min component greater than the Max component is empty.
type CoordBox struct {
	Min, Max Coord
}

// EmptyCoordBox returns a box which contains no coordinates
// and is grown by Include.
func EmptyCoordBox() CoordBox {
	const maxInt = int(^uint(0) >> 1)
	const minInt = -maxInt - 1
	return CoordBox{
		Min: Coord{maxInt, maxInt, maxInt},
		Max: Coord{minInt, minInt, minInt},
	}
}

// Empty reports whether the box contains no coordinates.
func (b CoordBox) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Include returns the box enlarged to contain c.
func (b CoordBox) Include(c Coord) CoordBox {
	for i := range c {
		b.Min[i] = min(b.Min[i], c[i])
		b.Max[i] = max(b.Max[i], c[i])
	}
	return b
}

// Contains reports whether c lies within the box, bounds included.
func (b CoordBox) Contains(c Coord) bool {
	return b.Min[0] <= c[0] && c[0] <= b.Max[0] &&
		b.Min[1] <= c[1] && c[1] <= b.Max[1] &&
		b.Min[2] <= c[2] && c[2] <= b.Max[2]
}

// Dim returns the number of voxels spanned along each axis.
func (b CoordBox) Dim() Coord {
	if b.Empty() {
		return Coord{}
	}
	return b.Max.Sub(b.Min).AddScalar(1)
}
