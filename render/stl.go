package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/volmesh/mesh"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
)

// CreateSTL writes the mesh to a binary STL file at path.
func CreateSTL(path string, m *mesh.Mesh) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(fp)
	_, err = WriteSTL(bw, m)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteSTL writes the mesh faces to w in binary STL format. Faces with more
// than three corners are fan triangulated. Returns the number of bytes written.
func WriteSTL(w io.Writer, m *mesh.Mesh) (int, error) {
	tris := m.Triangles()
	if len(tris) == 0 {
		return 0, errors.New("mesh has no faces")
	}
	if int64(len(tris)) > math.MaxUint32 {
		return 0, errors.New("amount of triangles in mesh exceeds STL design limits")
	}
	var buf [stlHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[80:], uint32(len(tris)))
	n, err := w.Write(buf[:])
	if err != nil {
		return n, err
	}
	var d stlTriangle
	for _, t := range tris {
		d.Normal = arrayFromVec(unitNormal(t))
		d.Vertex1 = arrayFromVec(t[0])
		d.Vertex2 = arrayFromVec(t[1])
		d.Vertex3 = arrayFromVec(t[2])
		d.put(buf[:stlTriangleSize])
		ngot, err := w.Write(buf[:stlTriangleSize])
		n += ngot
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadSTL reads the triangles of a binary STL file.
func ReadSTL(r io.Reader) (output []ms3.Triangle, readErr error) {
	var header [stlHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	count := binary.LittleEndian.Uint32(header[80:])
	if count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf [stlTriangleSize]byte
		d   stlTriangle
		i   int
	)
	defer func() {
		if readErr != nil {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i, count, readErr)
		}
	}()
	output = make([]ms3.Triangle, 0, min(int(count), 1<<20))
	for i = 0; i < int(count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if bad3F32(d.Normal) || bad3F32(d.Vertex1) || bad3F32(d.Vertex2) || bad3F32(d.Vertex3) {
			return nil, errors.New("inf/NaN STL triangle value")
		}
		output = append(output, ms3.Triangle{vecFromArray(d.Vertex1), vecFromArray(d.Vertex2), vecFromArray(d.Vertex3)})
	}
	return output, nil
}

// unitNormal returns the triangle's unit normal or the zero vector
// for a degenerate triangle.
func unitNormal(t ms3.Triangle) ms3.Vec {
	n := t.Normal()
	if ms3.Norm(n) == 0 {
		return ms3.Vec{}
	}
	return ms3.Unit(n)
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
}

func (t stlTriangle) put(b []byte) {
	_ = b[49] // early bounds check
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0) // No attributes.
}

func (t *stlTriangle) get(b []byte) {
	_ = b[49]
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func vecFromArray(f [3]float32) ms3.Vec { return ms3.Vec{X: f[0], Y: f[1], Z: f[2]} }

func arrayFromVec(v ms3.Vec) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }
