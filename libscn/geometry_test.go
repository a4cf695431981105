package libscn_test

import (
	"testing"

	"refraction-gl/libscn"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestIcosahedronDetailZero(t *testing.T) {
	geom := libscn.Icosahedron(5, 0)

	if len(geom.Vertices) != 60 || len(geom.Indices) != 60 {
		t.Fatalf("icosahedron should have 60 vertices and indices but has %d and %d", len(geom.Vertices), len(geom.Indices))
	}

	for i, v := range geom.Vertices {
		if r := v.Position.Len(); math32.Abs(r-5) > 1e-4 {
			t.Errorf("vertex %d should lie on radius 5 but is at %.5f", i, r)
		}
		if l := v.Normal.Len(); math32.Abs(l-1) > 1e-4 {
			t.Errorf("normal %d should be unit length but is %.5f", i, l)
		}
	}
}

func TestIcosahedronFacesPointOutwards(t *testing.T) {
	geom := libscn.Icosahedron(1, 1)
	if len(geom.Indices) != 20*4*3 {
		t.Fatalf("detail 1 should have 80 faces but has %d", len(geom.Indices)/3)
	}
	for i := 0; i < len(geom.Indices); i += 3 {
		a := geom.Vertices[geom.Indices[i]].Position
		b := geom.Vertices[geom.Indices[i+1]].Position
		c := geom.Vertices[geom.Indices[i+2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Dot(a.Add(b).Add(c)) <= 0 {
			t.Errorf("face %d is wound clockwise", i/3)
		}
	}
}

func TestSphere(t *testing.T) {
	geom := libscn.Sphere(2, 16, 8)

	if len(geom.Vertices) != 17*9 {
		t.Errorf("sphere should have %d vertices but has %d", 17*9, len(geom.Vertices))
	}
	// two pole rows contribute one triangle per segment, the rest two
	if want := (16*2*(8-2) + 16*2) * 3; len(geom.Indices) != want {
		t.Errorf("sphere should have %d indices but has %d", want, len(geom.Indices))
	}
	for i, v := range geom.Vertices {
		if d := v.Position.Sub(v.Normal.Mul(2)).Len(); d > 1e-4 {
			t.Errorf("vertex %d normal does not point along its position", i)
		}
	}
	for i := 0; i < len(geom.Indices); i += 3 {
		a := geom.Vertices[geom.Indices[i]].Position
		b := geom.Vertices[geom.Indices[i+1]].Position
		c := geom.Vertices[geom.Indices[i+2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Dot(a.Add(b).Add(c)) < 0 {
			t.Errorf("face %d is wound clockwise", i/3)
		}
	}
}

func TestPlane(t *testing.T) {
	geom := libscn.Plane(4, 2)
	min, max := geom.Vertices[0].Position, geom.Vertices[3].Position
	if min != (mgl32.Vec3{-2, -1, 0}) || max != (mgl32.Vec3{2, 1, 0}) {
		t.Errorf("plane corners should be (-2,-1) and (2,1) but are %v and %v", min, max)
	}
	a := geom.Vertices[geom.Indices[0]].Position
	b := geom.Vertices[geom.Indices[1]].Position
	c := geom.Vertices[geom.Indices[2]].Position
	if n := b.Sub(a).Cross(c.Sub(a)); n.Z() <= 0 {
		t.Errorf("plane should face +z but faces %v", n)
	}
}
