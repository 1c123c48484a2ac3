package render

import (
	"bufio"
	"io"
	"strconv"

	"github.com/soypat/volmesh/mesh"
)

// WriteOBJ writes the mesh to w in Wavefront OBJ format. Faces keep their
// corner count and winding.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("# volmesh\n")
	var buf []byte
	for _, p := range m.Positions {
		buf = append(buf[:0], 'v')
		for _, f := range [3]float32{p.X, p.Y, p.Z} {
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, float64(f), 'g', -1, 32)
		}
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	for f := 0; f < m.NumFaces(); f++ {
		buf = append(buf[:0], 'f')
		for _, v := range m.Face(f) {
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(v)+1, 10) // OBJ indices start at 1.
		}
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	return bw.Flush()
}
