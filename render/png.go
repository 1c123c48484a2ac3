package render

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/volmesh/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera of a preview render. The mesh is first fit
// into a bi-unit cube centered at the origin so Eye and Center should be
// chosen with that in mind.
type View struct {
	Eye    r3.Vec // camera position
	Center r3.Vec // point looked at
	Up     r3.Vec
	Near   float64
	Far    float64
	// Output size in pixels.
	Width, Height int
	// Supersampling factor used for antialiasing. Values below 1 mean 1.
	Scale int
}

// DefaultView looks at the origin from the (3,3,3) octant.
func DefaultView() View {
	return View{
		Eye:    r3.Vec{X: 3, Y: 3, Z: 3},
		Up:     r3.Vec{Z: 1},
		Near:   1,
		Far:    10,
		Width:  800,
		Height: 600,
		Scale:  2,
	}
}

// Image renders the mesh with a phong shader.
func Image(m *mesh.Mesh, view View) (image.Image, error) {
	tris := m.Triangles()
	if len(tris) == 0 {
		return nil, errors.New("mesh has no faces")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("invalid image size")
	}
	scale := max(view.Scale, 1)
	const fovy = 30 // vertical field of view in degrees.
	var (
		eye    = fauxV(view.Eye)
		center = fauxV(view.Center)
		up     = fauxV(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	ftris := make([]*fauxgl.Triangle, len(tris))
	for i, t := range tris {
		ftris[i] = fauxgl.NewTriangleForPoints(fauxMs3(t[0]), fauxMs3(t[1]), fauxMs3(t[2]))
	}
	fmesh := fauxgl.NewTriangleMesh(ftris)
	fmesh.BiUnitCube()

	ctx := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	ctx.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	ctx.Shader = shader
	ctx.DrawMesh(fmesh)

	img := ctx.Image()
	if scale > 1 {
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// CreatePNG renders the mesh and saves the image as a PNG file at path.
func CreatePNG(path string, m *mesh.Mesh, view View) error {
	img, err := Image(m, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

func fauxV(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }

func fauxMs3(v ms3.Vec) fauxgl.Vector {
	return fauxgl.V(float64(v.X), float64(v.Y), float64(v.Z))
}
