package mesh

// Builder finishes a mesh after its vertex and face buffers are filled.
type Builder interface {
	Build(m *Mesh)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(m *Mesh)

func (f BuilderFunc) Build(m *Mesh) { f(m) }

// DefaultBuilder derives edges, marks all faces flat shaded and records
// that the mesh has no loose edges.
type DefaultBuilder struct{}

var _ Builder = DefaultBuilder{}

func (DefaultBuilder) Build(m *Mesh) {
	m.CalcEdges()
	m.SetSmooth(false)
	m.LooseEdges = LooseEdgesNone
}

// CalcEdges derives the unique edges of the mesh from its faces, in order
// of first use, and the edge of every face corner.
func (m *Mesh) CalcEdges() {
	index := make(map[[2]int]int, len(m.CornerVerts)/2)
	m.Edges = m.Edges[:0]
	m.CornerEdges = make([]int, len(m.CornerVerts))
	for f := range m.FaceOffsets {
		face := m.Face(f)
		start := m.FaceOffsets[f]
		for i, v := range face {
			key := edgeKey(v, face[(i+1)%len(face)])
			e, ok := index[key]
			if !ok {
				e = len(m.Edges)
				index[key] = e
				m.Edges = append(m.Edges, key)
			}
			m.CornerEdges[start+i] = e
		}
	}
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// SetSmooth sets the shading flag of every face.
func (m *Mesh) SetSmooth(smooth bool) {
	if cap(m.SmoothFaces) >= len(m.FaceOffsets) {
		m.SmoothFaces = m.SmoothFaces[:len(m.FaceOffsets)]
	} else {
		m.SmoothFaces = make([]bool, len(m.FaceOffsets))
	}
	for i := range m.SmoothFaces {
		m.SmoothFaces[i] = smooth
	}
}

// CountLooseEdges returns the number of edges no face corner uses.
func (m *Mesh) CountLooseEdges() int {
	used := make([]bool, len(m.Edges))
	for _, e := range m.CornerEdges {
		used[e] = true
	}
	n := 0
	for _, u := range used {
		if !u {
			n++
		}
	}
	return n
}
