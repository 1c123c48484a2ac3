package volmesh

import (
	"fmt"

	"github.com/soypat/volmesh/grid"
)

// dispatch selects the typed extraction path for g's value type.
// Non-scalar grids return ok == false.
func dispatch(c Converter, g grid.Base, res grid.Resolution, threshold, adaptivity float64) (Data, bool) {
	switch vt := g.ValueType(); vt {
	case grid.TypeFloat:
		return scalarData[float32](c, g, res, threshold, adaptivity)
	case grid.TypeDouble:
		return scalarData[float64](c, g, res, threshold, adaptivity)
	case grid.TypeInt32:
		return scalarData[int32](c, g, res, threshold, adaptivity)
	case grid.TypeInt64:
		return scalarData[int64](c, g, res, threshold, adaptivity)
	case grid.TypeBool, grid.TypeVec3f, grid.TypeVec3d, grid.TypeVec3i,
		grid.TypeMask, grid.TypePoints, grid.TypeUnknown:
		return Data{}, false
	default:
		panic(fmt.Sprintf("unhandled grid value type %s", vt))
	}
}

func scalarData[T grid.Scalar](c Converter, g grid.Base, res grid.Resolution, threshold, adaptivity float64) (Data, bool) {
	typed, ok := g.(*grid.Grid[T])
	if !ok {
		return Data{}, false
	}
	resampled := grid.Resample(typed, res)
	s, err := extract(c.kernel(), c.Log, resampled, threshold, adaptivity)
	return Data{Surface: s, Err: err}, true
}
