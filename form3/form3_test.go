package form3

import (
	"math"
	"strings"
	"testing"

	"github.com/soypat/volmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestShapeDistances(t *testing.T) {
	box, _ := Box(r3.Vec{X: 2, Y: 4, Z: 6}, 0)
	cyl, _ := Cylinder(4, 1, 0)
	tor, _ := Torus(3, 1)
	sph, _ := Sphere(2)
	moved, _ := Translate(sph, r3.Vec{X: 10})
	grown, _ := Offset(sph, 0.5)
	for _, test := range []struct {
		name string
		d    float64
		want float64
	}{
		{"box face", box.Evaluate(r3.Vec{X: 3}), 2},
		{"box inside", box.Evaluate(r3.Vec{}), -1},
		{"box corner", box.Evaluate(r3.Vec{X: 2, Y: 3, Z: 3}), math.Sqrt(2)},
		{"cylinder side", cyl.Evaluate(r3.Vec{Y: 3}), 2},
		{"cylinder cap", cyl.Evaluate(r3.Vec{Z: 2.5}), 0.5},
		{"torus tube", tor.Evaluate(r3.Vec{X: 3}), -1},
		{"torus hole", tor.Evaluate(r3.Vec{}), 2},
		{"translated sphere", moved.Evaluate(r3.Vec{X: 10}), -2},
		{"offset sphere", grown.Evaluate(r3.Vec{X: 3}), 0.5},
	} {
		if math.Abs(test.d-test.want) > 1e-12 {
			t.Errorf("%s: got %g. want %g", test.name, test.d, test.want)
		}
	}
	if bb := moved.Bounds(); !d3.EqualWithin(bb.Min, r3.Vec{X: 8, Y: -2, Z: -2}, 1e-12) {
		t.Errorf("translated bounds got %v", bb)
	}
}

func TestBooleans(t *testing.T) {
	a, _ := Sphere(1)
	b, err := Translate(a, r3.Vec{X: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	u, err := Union(a, b)
	if err != nil {
		t.Fatal(err)
	}
	d, _ := Difference(a, b)
	i, err := Intersect(a, b)
	if err != nil {
		t.Fatal(err)
	}
	p := r3.Vec{X: 0.75}
	if u.Evaluate(p) >= 0 || d.Evaluate(p) <= 0 || i.Evaluate(p) >= 0 {
		t.Error("boolean operations misclassified overlap point")
	}
	q := r3.Vec{X: -0.5}
	if u.Evaluate(q) >= 0 || d.Evaluate(q) >= 0 || i.Evaluate(q) <= 0 {
		t.Error("boolean operations misclassified point only in first shape")
	}
	if bb := u.Bounds(); bb.Max.X != 2.5 || bb.Min.X != -1 {
		t.Errorf("union bounds got %v", bb)
	}
	if bb := i.Bounds(); bb.Min.X != 0.5 || bb.Max.X != 1 {
		t.Errorf("intersection bounds got %v", bb)
	}
}

func TestShapeErrors(t *testing.T) {
	sph, _ := Sphere(1)
	far, _ := Translate(sph, r3.Vec{Z: 10})
	for _, test := range []struct {
		name string
		fn   func() error
		msg  string
	}{
		{"sphere", func() error { _, err := Sphere(-1); return err }, "radius"},
		{"box", func() error { _, err := Box(r3.Vec{X: 1, Y: 0, Z: 1}, 0); return err }, "size"},
		{"cylinder", func() error { _, err := Cylinder(1, 1, 0.6); return err }, "round"},
		{"torus", func() error { _, err := Torus(1, 2); return err }, "major"},
		{"union", func() error { _, err := Union(sph); return err }, "at least 2"},
		{"union nil", func() error { _, err := Union(sph, nil); return err }, "nil"},
		{"difference", func() error { _, err := Difference(nil, sph); return err }, "nil"},
		{"intersect", func() error { _, err := Intersect(sph, far); return err }, "overlap"},
	} {
		err := test.fn()
		if err == nil {
			t.Errorf("%s: expected error", test.name)
			continue
		}
		if !strings.Contains(err.Error(), test.msg) {
			t.Errorf("%s: error %q does not mention %q", test.name, err, test.msg)
		}
		if se, ok := err.(*shapeErr); !ok || se.Stack() == "" {
			t.Errorf("%s: error missing stack trace", test.name)
		}
	}
}
