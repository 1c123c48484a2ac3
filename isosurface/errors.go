package isosurface

import "fmt"

// IndexError is returned when a face references a vertex that does not exist.
type IndexError struct {
	Face     int
	Vertex   uint32
	NumVerts int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("face %d references vertex %d out of %d", e.Face, e.Vertex, e.NumVerts)
}

// ValueError is returned when a field sample is NaN or infinite.
type ValueError struct {
	Index [3]int
	Value float64
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("non-finite field value %g at %v", e.Value, e.Index)
}
